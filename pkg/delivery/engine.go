// Package delivery dispatches test sends of repaired templates with retry support.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/rescue"
	"github.com/zeromicro/go-zero/core/threading"
	"golang.org/x/time/rate"

	"github.com/joeblew999/plat-mailfix/pkg/mail"
)

// ErrPanic marks a job whose send panicked.
var ErrPanic = errors.New("panic during delivery")

// Config holds delivery engine configuration.
type Config struct {
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	MaxBackoff   time.Duration
	RateLimit    int // emails per minute, 0 for unlimited
}

// DefaultConfig returns defaults suited to a handful of test inboxes.
func DefaultConfig() Config {
	return Config{
		Workers:      2,
		MaxRetries:   2,
		RetryBackoff: 2 * time.Second,
		MaxBackoff:   30 * time.Second,
		RateLimit:    30,
	}
}

// Job is one template sent to its recipients.
type Job struct {
	ID       string
	Template string
	Message  mail.Message
}

// Outcome is the final state of a Job.
type Outcome struct {
	JobID    string        `json:"jobId"`
	Template string        `json:"template"`
	Attempts int           `json:"attempts"`
	Elapsed  time.Duration `json:"elapsed"`
	Err      error         `json:"-"`
}

// Engine sends jobs through a Sender.
type Engine struct {
	config      Config
	sender      mail.Sender
	rateLimiter *rate.Limiter
}

// NewEngine creates a new delivery engine.
func NewEngine(sender mail.Sender, cfg Config) *Engine {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimit)), 1)
	}

	return &Engine{
		config:      cfg,
		sender:      sender,
		rateLimiter: limiter,
	}
}

// NewJob wraps a message for template, assigning an ID.
func NewJob(template string, m mail.Message) Job {
	return Job{ID: uuid.NewString(), Template: template, Message: m}
}

// Deliver sends every job on the configured number of workers and waits
// for all of them. Outcomes are in job order.
func (e *Engine) Deliver(ctx context.Context, jobs []Job) []Outcome {
	outcomes := make([]Outcome, len(jobs))
	queue := make(chan int)
	group := threading.NewRoutineGroup()

	workers := min(e.config.Workers, len(jobs))
	logx.WithContext(ctx).Infow("Delivery started", logx.Field("jobs", len(jobs)), logx.Field("workers", workers))
	for i := 0; i < workers; i++ {
		group.RunSafe(func() {
			for idx := range queue {
				outcomes[idx] = e.processJob(ctx, jobs[idx])
			}
		})
	}
	for i := range jobs {
		queue <- i
	}
	close(queue)
	group.Wait()

	return outcomes
}

func (e *Engine) processJob(ctx context.Context, job Job) (out Outcome) {
	ctx = logx.ContextWithFields(ctx,
		logx.Field("job_id", job.ID),
		logx.Field("template", job.Template),
		logx.Field("recipients", len(job.Message.To)),
	)
	out = Outcome{JobID: job.ID, Template: job.Template}
	start := time.Now()

	defer rescue.RecoverCtx(ctx, func() {
		emailsFailed.Inc(job.Template, "panic")
		out.Err = ErrPanic
		out.Elapsed = time.Since(start)
	})

	for {
		out.Attempts++
		err := e.send(ctx, job)
		out.Elapsed = time.Since(start)
		if err == nil {
			emailsSent.Inc(job.Template)
			deliveryDuration.ObserveFloat(out.Elapsed.Seconds(), job.Template)
			logx.WithContext(ctx).Info("Email sent")
			return out
		}

		if !e.handleError(ctx, job, out.Attempts, err) {
			out.Err = err
			return out
		}
	}
}

// handleError records a failed attempt, waits out the backoff and
// reports whether another attempt should follow.
func (e *Engine) handleError(ctx context.Context, job Job, attempts int, err error) bool {
	reason := "transient"
	if isPermanentFailure(err) {
		reason = "permanent"
	}
	if ctx.Err() != nil {
		reason = "canceled"
	}

	if reason != "transient" || attempts > e.config.MaxRetries {
		emailsFailed.Inc(job.Template, reason)
		logx.WithContext(ctx).Errorf("Email delivery failed permanently: %v", err)
		return false
	}

	backoff := e.calculateBackoff(attempts)
	emailsRetried.Inc(job.Template)
	logx.WithContext(ctx).Infof("Email delivery retrying in %s: %v", backoff, err)

	timer := time.NewTimer(backoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		emailsFailed.Inc(job.Template, "canceled")
		return false
	case <-timer.C:
		return true
	}
}

func (e *Engine) send(ctx context.Context, job Job) error {
	if err := e.rateLimiter.Wait(ctx); err != nil {
		return err
	}
	return e.sender.Send(ctx, job.Message)
}

func (e *Engine) calculateBackoff(attempts int) time.Duration {
	backoff := e.config.RetryBackoff * time.Duration(math.Pow(2, float64(attempts-1)))
	if e.config.MaxBackoff > 0 && backoff > e.config.MaxBackoff {
		return e.config.MaxBackoff
	}
	return backoff
}

// isPermanentFailure checks if the error indicates a permanent failure.
func isPermanentFailure(err error) bool {
	if errors.Is(err, mail.ErrNoRecipients) {
		return true
	}
	msg := err.Error()
	// SMTP 5xx codes are permanent failures
	permanentCodes := []string{"550", "551", "552", "553", "554"}
	for _, code := range permanentCodes {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return strings.Contains(msg, "smtp not configured")
}

// SendNow sends one message immediately without retries.
func (e *Engine) SendNow(ctx context.Context, template string, m mail.Message) error {
	if err := e.rateLimiter.Wait(ctx); err != nil {
		return err
	}
	if err := e.sender.Send(ctx, m); err != nil {
		emailsFailed.Inc(template, "send_now")
		return fmt.Errorf("send %s: %w", template, err)
	}
	emailsSent.Inc(template)
	return nil
}
