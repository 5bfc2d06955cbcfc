package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
	"golang.org/x/time/rate"

	"github.com/joeblew999/plat-mailfix/pkg/check"
	"github.com/joeblew999/plat-mailfix/pkg/cta"
	"github.com/joeblew999/plat-mailfix/pkg/tags"
)

var (
	// ErrEmpty is returned for a blank template.
	ErrEmpty = errors.New("template is empty")
	// ErrTooLarge is returned for a template over the configured limit.
	ErrTooLarge = errors.New("template too large")
	// ErrRateLimited is returned when a run cannot be admitted in time.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ServiceConfig holds the limits of a shared Service.
type ServiceConfig struct {
	Defaults  Options
	MaxBytes  int
	RateLimit int // runs per minute, 0 for unlimited
}

// Service runs the pipeline on behalf of remote callers, applying
// configured defaults and limits.
type Service struct {
	config      ServiceConfig
	scorer      Scorer
	rateLimiter *rate.Limiter
}

// NewService creates a service that grades runs with DefaultScorer.
func NewService(cfg ServiceConfig) *Service {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimit)), cfg.RateLimit)
	}
	return &Service{
		config:      cfg,
		scorer:      DefaultScorer{},
		rateLimiter: limiter,
	}
}

// WithScorer replaces the scorer.
func (s *Service) WithScorer(scorer Scorer) *Service {
	s.scorer = scorer
	return s
}

func (s *Service) admit(ctx context.Context, html string) error {
	if len(html) == 0 {
		return ErrEmpty
	}
	if s.config.MaxBytes > 0 && len(html) > s.config.MaxBytes {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrTooLarge, len(html), s.config.MaxBytes)
	}
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRateLimited, err)
	}
	return nil
}

// Repair runs the pipeline with opts layered over the service defaults.
func (s *Service) Repair(ctx context.Context, html string, opts Options) (*Result, error) {
	if err := s.admit(ctx, html); err != nil {
		return nil, err
	}
	res, err := ProcessWith(s.scorer, html, opts.Merge(s.config.Defaults))
	if err != nil {
		logx.WithContext(ctx).Errorf("repair failed: %v", err)
		return nil, err
	}
	return res, nil
}

// Buttons extracts the call-to-action buttons of html.
func (s *Service) Buttons(ctx context.Context, html string) ([]cta.Button, error) {
	if err := s.admit(ctx, html); err != nil {
		return nil, err
	}
	return Buttons(html), nil
}

// Download runs the final residue pass over html.
func (s *Service) Download(ctx context.Context, html string) (string, int, error) {
	if err := s.admit(ctx, html); err != nil {
		return "", 0, err
	}
	out, n := PrepareDownload(html)
	return out, n, nil
}

// ApplyFix splices a proposed closer into html.
func (s *Service) ApplyFix(ctx context.Context, html string, fix check.AutoFix) (string, check.AutoFix, error) {
	if err := s.admit(ctx, html); err != nil {
		return "", fix, err
	}
	return tags.ApplyFix(html, fix)
}

// RemoveExcessCloser deletes the orphan closing tag problem points at.
func (s *Service) RemoveExcessCloser(ctx context.Context, html string, problem check.TagProblem) (string, error) {
	if err := s.admit(ctx, html); err != nil {
		return "", err
	}
	return tags.RemoveExcessCloser(html, problem)
}

// RevertFix removes a previously applied closer from html.
func (s *Service) RevertFix(ctx context.Context, html string, fix check.AutoFix) (string, check.AutoFix, error) {
	if err := s.admit(ctx, html); err != nil {
		return "", fix, err
	}
	return tags.RevertFix(html, fix)
}
