// Package service is the REST facade over the stackoverflow scraper.
package service

import (
	"context"
	"net/http"

	"stackscrape/internal/components/assert"
	"stackscrape/internal/components/telemetry"
	"stackscrape/internal/scrapers/stackoverflow"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("stackscrape/internal/service")

const (
	report_request_failed  = "request.failed"
	report_request_invalid = "request.invalid"
	report_response_encode = "response.encode"
)

// ScraperAPI is implemented by *stackoverflow.Client.
//
// note: fault injection point
type ScraperAPI interface {
	Questions(ctx context.Context, ids []int64, opts stackoverflow.QueryOptions) ([]stackoverflow.Question, error)
	Answers(ctx context.Context, ids []int64, opts stackoverflow.QueryOptions) ([]stackoverflow.Answer, error)
	QuestionAnswers(ctx context.Context, questionIds []int64, opts stackoverflow.QueryOptions) ([]stackoverflow.Answer, error)
	ListQuestions(ctx context.Context, query stackoverflow.ListingQuery, opts stackoverflow.QueryOptions) ([]stackoverflow.Question, error)
	ListingTotal(ctx context.Context, query stackoverflow.ListingQuery) (int64, error)
	Collectives(ctx context.Context) ([]stackoverflow.Collective, error)
}

type Service struct {
	scraper ScraperAPI
	tel     telemetry.API
}

type serviceConfig struct {
	tel telemetry.API
}

type Option func(cfg *serviceConfig)

func WithCustomTelemetryAPI(tel telemetry.API) Option {
	return func(cfg *serviceConfig) {
		cfg.tel = tel
	}
}

func NewService(scraper ScraperAPI, options ...Option) Service {
	assert.NotNil(scraper, "scraper")

	cfg := serviceConfig{}
	for _, opt := range options {
		opt(&cfg)
	}

	var tel telemetry.API = telemetry.SlogAPI{}
	if cfg.tel != nil {
		tel = cfg.tel
	}

	return Service{
		scraper: scraper,
		tel:     telemetry.NewScopedAPI("service", tel),
	}
}

// Handler returns the http handler serving every endpoint.
func (s Service) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/questions", s.handleListQuestions)
	r.Get("/questions/{ids}", s.handleQuestions)
	r.Get("/questions/{ids}/answers", s.handleQuestionAnswers)
	r.Get("/answers/{ids}", s.handleAnswers)
	r.Get("/collectives", s.handleCollectives)

	return otelhttp.NewHandler(r, "stackscrape")
}
