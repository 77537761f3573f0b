package service

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"stackscrape/internal/postprocess"
	"stackscrape/internal/scrapers/stackoverflow"

	"github.com/antzucaro/matchr"
)

type Filter string

const (
	FilterDefault  Filter = "default"
	FilterWithBody Filter = "withbody"
	FilterNone     Filter = "none"
	FilterTotal    Filter = "total"
)

const (
	siteStackoverflow = "stackoverflow"
	tagSeparator      = ";"
	idSeparator       = ";"
	maxPageSize       = 100
	// suggestionMin is the lowest Jaro-Winkler similarity a "did you mean" suggestion needs.
	suggestionMin = 0.7
)

var (
	filters       = []Filter{FilterDefault, FilterWithBody, FilterNone, FilterTotal}
	orders        = []postprocess.Order{postprocess.OrderDesc, postprocess.OrderAsc}
	recordSorts   = []postprocess.Sort{postprocess.SortActivity, postprocess.SortCreation, postprocess.SortVotes}
	listingSorts  = append(recordSorts[:len(recordSorts):len(recordSorts)], postprocess.SortHot, postprocess.SortWeek, postprocess.SortMonth)
)

// suggest returns the option closest to value, or an empty string if none is close enough.
func suggest[T ~string](value string, options []T) string {
	best := ""
	bestScore := suggestionMin
	for _, option := range options {
		score := matchr.JaroWinkler(strings.ToLower(value), string(option), false)
		if score >= bestScore {
			best = string(option)
			bestScore = score
		}
	}
	return best
}

func join[T ~string](options []T) string {
	out := make([]string, len(options))
	for i, option := range options {
		out[i] = string(option)
	}
	return strings.Join(out, ", ")
}

func parseEnum[T ~string](query url.Values, name string, fallback T, options []T) (T, error) {
	raw := query.Get(name)
	if raw == "" {
		return fallback, nil
	}
	for _, option := range options {
		if raw == string(option) {
			return option, nil
		}
	}

	message := fmt.Sprintf("invalid %s parameter %q, valid options are: %s", name, raw, join(options))
	if suggestion := suggest(raw, options); suggestion != "" {
		message += fmt.Sprintf(" (did you mean %q?)", suggestion)
	}
	return fallback, &ValidationError{Param: name, Message: message}
}

func parseSite(query url.Values) error {
	site := query.Get("site")
	if site == "" {
		return invalidParam("site", "the 'site' parameter is required and must be '%s'", siteStackoverflow)
	}
	if !strings.EqualFold(site, siteStackoverflow) {
		message := fmt.Sprintf("unsupported site %q, the 'site' parameter must be '%s'", site, siteStackoverflow)
		if suggest(site, []string{siteStackoverflow}) != "" {
			message += fmt.Sprintf(" (did you mean %q?)", siteStackoverflow)
		}
		return &ValidationError{Param: "site", Message: message}
	}
	return nil
}

func parseOptionalInt(query url.Values, name string) (*int64, error) {
	raw := query.Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, invalidParam(name, "the '%s' parameter must be an integer, got %q", name, raw)
	}
	return &value, nil
}

func parseBoundedInt(query url.Values, name string, fallback, min, max int) (int, error) {
	value, err := parseOptionalInt(query, name)
	if err != nil {
		return 0, err
	}
	if value == nil {
		return fallback, nil
	}
	if *value < int64(min) || *value > int64(max) {
		return 0, invalidParam(name, "the '%s' parameter must be between %d and %d", name, min, max)
	}
	return int(*value), nil
}

// parseIds parses a semicolon separated list of post ids.
func parseIds(raw string) ([]int64, error) {
	var ids []int64
	for _, segment := range strings.Split(raw, idSeparator) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		id, err := strconv.ParseInt(segment, 10, 64)
		if err != nil || id <= 0 {
			return nil, invalidParam("ids", "invalid id %q, ids must be positive integers separated by '%s'", segment, idSeparator)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, invalidParam("ids", "at least one id is required")
	}
	return ids, nil
}

func parseTags(query url.Values) ([]string, error) {
	var tags []string
	for _, tag := range strings.Split(query.Get("tagged"), tagSeparator) {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	if len(tags) > stackoverflow.MaxListingTags {
		return nil, invalidParam("tagged", "you can specify up to %d tags only", stackoverflow.MaxListingTags)
	}
	return tags, nil
}

// recordParams are the parameters shared by every endpoint returning records.
type recordParams struct {
	filter  Filter
	process postprocess.Config
}

func (p recordParams) queryOptions() stackoverflow.QueryOptions {
	return stackoverflow.QueryOptions{WithBody: p.filter == FilterWithBody}
}

// parseRecordParams validates site, then filter, then the rest. When the filter is none the
// remaining parameters are not validated at all.
func parseRecordParams(query url.Values, sorts []postprocess.Sort) (recordParams, error) {
	var params recordParams

	err := parseSite(query)
	if err != nil {
		return params, err
	}

	params.filter, err = parseEnum(query, "filter", FilterDefault, filters)
	if err != nil || params.filter == FilterNone {
		return params, err
	}

	params.process.Sort, err = parseEnum(query, "sort", postprocess.SortActivity, sorts)
	if err != nil {
		return params, err
	}
	params.process.Order, err = parseEnum(query, "order", postprocess.OrderDesc, orders)
	if err != nil {
		return params, err
	}
	params.process.Min, err = parseOptionalInt(query, "min")
	if err != nil {
		return params, err
	}
	params.process.Max, err = parseOptionalInt(query, "max")
	if err != nil {
		return params, err
	}
	return params, nil
}

type listingParams struct {
	recordParams
	listing stackoverflow.ListingQuery
}

func parseListingParams(query url.Values) (listingParams, error) {
	record, err := parseRecordParams(query, listingSorts)
	params := listingParams{recordParams: record}
	if err != nil || params.filter == FilterNone {
		return params, err
	}

	params.listing.Sort = params.process.Sort
	params.listing.Tags, err = parseTags(query)
	if err != nil {
		return params, err
	}
	params.listing.Page, err = parseBoundedInt(query, "page", 1, 1, 1<<31-1)
	if err != nil {
		return params, err
	}
	params.listing.PageSize, err = parseBoundedInt(query, "pagesize", stackoverflow.DefaultPageSize, 1, maxPageSize)
	if err != nil {
		return params, err
	}
	return params, nil
}
