package stackoverflow

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// TimestampLayout is the format of every `title` attribute carrying an absolute time,
// stackoverflow always renders these in UTC.
const TimestampLayout = "2006-01-02 15:04:05Z"

// ParseTimestamp parses a `YYYY-MM-DD HH:MM:SSZ` string into unix epoch seconds.
func ParseTimestamp(text string) (int64, bool) {
	t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(text), time.UTC)
	if err != nil {
		return 0, false
	}
	return t.Unix(), true
}

// timestampFromTitle reads the timestamp in the `title` attribute of the first node of sel.
func timestampFromTitle(sel *goquery.Selection) *int64 {
	title, exists := sel.First().Attr("title")
	if !exists {
		return nil
	}
	ts, ok := ParseTimestamp(title)
	if !ok {
		return nil
	}
	return &ts
}

// ParseInt parses an integer that may contain thousands separators and surrounding whitespace.
func ParseInt(text string) (int64, bool) {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ParseReputation parses reputation as it is displayed on a profile, "4,321", "12.3k" or "1.5m".
func ParseReputation(text string) (int64, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.ReplaceAll(text, ",", "")

	multiplier := 1.0
	switch {
	case strings.HasSuffix(text, "k"):
		multiplier = 1_000
		text = strings.TrimSuffix(text, "k")
	case strings.HasSuffix(text, "m"):
		multiplier = 1_000_000
		text = strings.TrimSuffix(text, "m")
	default:
		return ParseInt(text)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, false
	}
	return int64(math.Round(value * multiplier)), true
}

// ParseViewCount reads the view count out of a title like "Viewed 12,345 times".
func ParseViewCount(title string) (int64, bool) {
	fields := strings.Fields(title)
	if len(fields) < 2 {
		return 0, false
	}
	return ParseInt(fields[1])
}

func intAttr(sel *goquery.Selection, attr string) *int64 {
	value, exists := sel.First().Attr(attr)
	if !exists {
		return nil
	}
	n, ok := ParseInt(value)
	if !ok {
		return nil
	}
	return &n
}

func ptr[T any](v T) *T {
	return &v
}
