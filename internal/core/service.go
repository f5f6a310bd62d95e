package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JonMunkholm/scidesk/internal/logging"
	"github.com/JonMunkholm/scidesk/internal/mail"
	"github.com/google/uuid"
)

// DefaultBatchTimeout bounds one import, export, notification or document
// batch when Options.BatchTimeout is zero.
const DefaultBatchTimeout = 10 * time.Minute

// Options holds the collaborators of a Service. Store and Sender are required.
type Options struct {
	Store     Store
	Sender    mail.Sender
	Limiter   *UploadLimiter
	Artifacts ArtifactStore // nil disables archiving
	Metrics   Metrics
	Now       func() time.Time

	// BatchTimeout bounds one bulk operation (default DefaultBatchTimeout)
	BatchTimeout time.Duration
}

// Service provides the core business logic: owner-scoped form CRUD,
// accounts, spreadsheet import/export, notifications and documents.
type Service struct {
	store      Store
	dispatcher *Dispatcher
	limiter    *UploadLimiter
	artifacts  ArtifactStore
	metrics    Metrics
	now        func() time.Time
	timeout    time.Duration
}

// NewService creates a new Service instance.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("core: store is required")
	}
	if opts.Sender == nil {
		return nil, errors.New("core: mail sender is required")
	}
	if opts.Limiter == nil {
		opts.Limiter = NewUploadLimiter(DefaultMaxConcurrentUploads, DefaultMaxWaitTime)
	}
	if opts.Metrics == nil {
		opts.Metrics = nopMetrics{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BatchTimeout <= 0 {
		opts.BatchTimeout = DefaultBatchTimeout
	}

	return &Service{
		store:      opts.Store,
		dispatcher: NewDispatcher(opts.Sender, opts.Metrics),
		limiter:    opts.Limiter,
		artifacts:  opts.Artifacts,
		metrics:    opts.Metrics,
		now:        opts.Now,
		timeout:    opts.BatchTimeout,
	}, nil
}

// Limiter returns the bulk operation limiter, for shutdown draining.
func (s *Service) Limiter() *UploadLimiter {
	return s.limiter
}

// Ping checks the store.
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// BatchTimeout returns the bound applied to one bulk operation.
func (s *Service) BatchTimeout() time.Duration {
	return s.timeout
}

// runBatch runs fn under the limiter and the batch timeout.
func (s *Service) runBatch(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.limiter.Run(ctx, func() error { return fn(ctx) })
}

// today returns the current date as YYYY-MM-DD, used in generated file names.
func (s *Service) today() string {
	return s.now().Format("2006-01-02")
}

// archive keeps a copy of a generated file. Failures are logged, not returned.
func (s *Service) archive(ctx context.Context, prefix string, f File) {
	if s.artifacts == nil {
		return
	}
	key := fmt.Sprintf("%s/%s/%s-%s", prefix, s.today(), uuid.NewString(), f.Name)
	if err := s.artifacts.Put(ctx, key, f.Data, f.ContentType); err != nil {
		logging.FromContext(ctx).Warn("artifact archive failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return
	}
	logging.FromContext(ctx).Debug("artifact archived", slog.String("key", key), slog.Int("bytes", len(f.Data)))
}
