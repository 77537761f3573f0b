package service

import (
	"encoding/json"
	"net/http"

	"stackscrape/internal/postprocess"
	"stackscrape/internal/scrapers/stackoverflow"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type itemsResponse[T any] struct {
	Items []T `json:"items"`
}

type totalResponse struct {
	Total int64 `json:"total"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s Service) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	err := encoder.Encode(body)
	if err != nil {
		s.tel.ReportBroken(report_response_encode, err)
	}
}

func (s Service) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := errorStatus(err)
	if status == http.StatusBadRequest {
		s.tel.ReportDebug(report_request_invalid, r.URL.String(), message)
	} else {
		s.tel.ReportBroken(report_request_failed, r.URL.String(), err)
	}
	s.writeJSON(w, status, errorResponse{Error: message})
}

// writeItems answers with `{"total": N}` in total mode, or with the processed items.
func writeItems[T postprocess.Sortable](s Service, w http.ResponseWriter, params recordParams, items []T) {
	if params.filter == FilterTotal {
		s.writeJSON(w, http.StatusOK, totalResponse{Total: int64(len(items))})
		return
	}
	items = postprocess.Apply(items, params.process)
	if items == nil {
		items = []T{}
	}
	s.writeJSON(w, http.StatusOK, itemsResponse[T]{Items: items})
}

func (s Service) writeEmpty(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusOK, struct{}{})
}

func (s Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s Service) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "ListQuestions")
	defer span.End()

	params, err := parseListingParams(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if params.filter == FilterNone {
		s.writeEmpty(w)
		return
	}
	span.SetAttributes(attribute.String("path", params.listing.Path()))

	if params.filter == FilterTotal {
		total, err := s.scraper.ListingTotal(ctx, params.listing)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.writeError(w, r, err)
			return
		}
		s.writeJSON(w, http.StatusOK, totalResponse{Total: total})
		return
	}

	questions, err := s.scraper.ListQuestions(ctx, params.listing, params.queryOptions())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.writeError(w, r, err)
		return
	}
	writeItems(s, w, params.recordParams, questions)
}

// parseBatch parses the parameters of an endpoint taking a list of ids in its path, ok is
// false when the response has already been written.
func (s Service) parseBatch(w http.ResponseWriter, r *http.Request) (params recordParams, ids []int64, ok bool) {
	params, err := parseRecordParams(r.URL.Query(), recordSorts)
	if err != nil {
		s.writeError(w, r, err)
		return params, nil, false
	}
	if params.filter == FilterNone {
		s.writeEmpty(w)
		return params, nil, false
	}
	ids, err = parseIds(chi.URLParam(r, "ids"))
	if err != nil {
		s.writeError(w, r, err)
		return params, nil, false
	}
	return params, ids, true
}

func (s Service) handleQuestions(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "Questions")
	defer span.End()

	params, ids, ok := s.parseBatch(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64Slice("ids", ids))

	questions, err := s.scraper.Questions(ctx, ids, params.queryOptions())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.writeError(w, r, err)
		return
	}
	writeItems(s, w, params, questions)
}

func (s Service) handleAnswers(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "Answers")
	defer span.End()

	params, ids, ok := s.parseBatch(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64Slice("ids", ids))

	answers, err := s.scraper.Answers(ctx, ids, params.queryOptions())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.writeError(w, r, err)
		return
	}
	writeItems(s, w, params, answers)
}

func (s Service) handleQuestionAnswers(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "QuestionAnswers")
	defer span.End()

	params, ids, ok := s.parseBatch(w, r)
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int64Slice("ids", ids))

	answers, err := s.scraper.QuestionAnswers(ctx, ids, params.queryOptions())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.writeError(w, r, err)
		return
	}
	writeItems(s, w, params, answers)
}

func (s Service) handleCollectives(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "Collectives")
	defer span.End()

	query := r.URL.Query()
	err := parseSite(query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	order, err := parseEnum(query, "order", postprocess.OrderDesc, orders)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	collectives, err := s.scraper.Collectives(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.writeError(w, r, err)
		return
	}

	collectives = postprocess.SortByKey(collectives, func(c stackoverflow.Collective) string {
		return c.Name
	}, order)
	if collectives == nil {
		collectives = []stackoverflow.Collective{}
	}
	s.writeJSON(w, http.StatusOK, collectives)
}
