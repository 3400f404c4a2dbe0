package imagejob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"persona-agent/shared/models"
)

// Config holds the injected values for the image-job protocol.
// Empty APIKey or BasePrompt is reported by Submit, not by NewService.
type Config struct {
	Endpoint   string
	APIKey     string
	BasePrompt string
}

// HTTPDoer is the subset of *http.Client the service needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option customizes a Service.
type Option func(*Service)

// WithClock replaces time.Now as the source of job ids and deadlines.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// Service submits image jobs and fetches generated images.
// It is safe for concurrent use and performs no retries.
type Service struct {
	cfg    Config
	client HTTPDoer
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a Service. A nil client falls back to http.DefaultClient;
// request lifetimes are bounded only by the caller's context.
func NewService(cfg Config, client HTTPDoer, logger *zap.Logger, opts ...Option) *Service {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		cfg:    cfg,
		client: client,
		logger: logger.Named("imagejob"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildJob validates the configuration and assembles a job for the given instant.
func (s *Service) BuildJob(now time.Time) (Job, error) {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return Job{}, fmt.Errorf("%w: image API key is not configured", models.ErrConfig)
	}
	if strings.TrimSpace(s.cfg.BasePrompt) == "" {
		return Job{}, fmt.Errorf("%w: image base prompt is not configured", models.ErrConfig)
	}
	return NewJob(s.cfg.BasePrompt, now)
}

// Submit posts a new job and returns the image URL reported by the service.
func (s *Service) Submit(ctx context.Context) (string, error) {
	job, err := s.BuildJob(s.now())
	if err != nil {
		jobsSubmitted.WithLabelValues(outcomeLabel(err)).Inc()
		s.logger.Error("Cannot build image job", zap.Error(err))
		return "", err
	}
	log := s.logger.With(zap.String("job_id", job.JobID), zap.String("endpoint", s.cfg.Endpoint))

	body, err := json.Marshal(job)
	if err != nil {
		jobsSubmitted.WithLabelValues("error_http").Inc()
		return "", fmt.Errorf("%w: marshal job: %w", models.ErrHTTP, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		jobsSubmitted.WithLabelValues("error_http").Inc()
		return "", fmt.Errorf("%w: create request: %w", models.ErrHTTP, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	log.Debug("Submitting image job", zap.Int64("deadline", job.Deadline))
	respBody, err := s.do(req)
	if err != nil {
		jobsSubmitted.WithLabelValues("error_http").Inc()
		log.Error("Image job submission failed", zap.Error(err))
		return "", err
	}

	url := parseJobResult(respBody)
	if url == "" {
		jobsSubmitted.WithLabelValues("error_http").Inc()
		log.Error("Image job service returned an empty result")
		return "", fmt.Errorf("%w: empty job result", models.ErrHTTP)
	}
	jobsSubmitted.WithLabelValues("success").Inc()
	log.Info("Image job submitted", zap.String("url", url))
	return url, nil
}

// FetchImage downloads the bytes at url with a single GET.
func (s *Service) FetchImage(ctx context.Context, url string) ([]byte, error) {
	log := s.logger.With(zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		imageFetches.WithLabelValues("error_http").Inc()
		return nil, fmt.Errorf("%w: create request: %w", models.ErrHTTP, err)
	}
	data, err := s.do(req)
	if err != nil {
		imageFetches.WithLabelValues("error_http").Inc()
		log.Error("Image download failed", zap.Error(err))
		return nil, err
	}
	if len(data) == 0 {
		imageFetches.WithLabelValues("error_http").Inc()
		log.Error("Image download returned an empty body")
		return nil, fmt.Errorf("%w: empty image body", models.ErrHTTP)
	}
	imageFetches.WithLabelValues("success").Inc()
	imageBytes.Observe(float64(len(data)))
	log.Info("Image downloaded", zap.Int("size_bytes", len(data)))
	return data, nil
}

// do executes req and returns the body of a 2xx response.
func (s *Service) do(req *http.Request) ([]byte, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", models.ErrHTTP, req.Method, req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s: status %d: %s", models.ErrHTTP, req.Method, req.URL.Redacted(), resp.StatusCode, truncate(body, 256))
	}
	if readErr != nil {
		return nil, fmt.Errorf("%w: read response body: %w", models.ErrHTTP, readErr)
	}
	return body, nil
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, models.ErrConfig):
		return "error_config"
	case errors.Is(err, models.ErrClock):
		return "error_clock"
	default:
		return "error_http"
	}
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}
