package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/trickreich/SuluSyliusProducerPlugin/internal/domain"
	"github.com/trickreich/SuluSyliusProducerPlugin/internal/repository"
	"github.com/trickreich/SuluSyliusProducerPlugin/internal/serializer"
	apperrors "github.com/trickreich/SuluSyliusProducerPlugin/pkg/errors"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/kafka"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/logger"
	"github.com/trickreich/SuluSyliusProducerPlugin/pkg/pagination"
)

const (
	// DefaultBatchSize is the page size of SynchronizeAll when none is given.
	DefaultBatchSize = 100
	// MaxBatchSize bounds the page size of SynchronizeAll.
	MaxBatchSize = 1000
	// DefaultConcurrency is how many products of a batch are published at once.
	DefaultConcurrency = 4
)

// Mapper turns a product graph into its published record.
type Mapper interface {
	Serialize(product domain.Product) (*serializer.ProductPayload, error)
}

// MessagePublisher publishes synchronize and remove messages.
type MessagePublisher interface {
	Synchronize(ctx context.Context, payload *serializer.ProductPayload) error
	Remove(ctx context.Context, code string) error
}

// SyncFailure is one product SynchronizeAll could not publish.
type SyncFailure struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// SyncReport summarizes a SynchronizeAll run.
type SyncReport struct {
	Total        int           `json:"total"`
	Synchronized int           `json:"synchronized"`
	Failed       int           `json:"failed"`
	Failures     []SyncFailure `json:"failures"`
	DurationMS   int64         `json:"duration_ms"`
}

// Option customises a SyncService.
type Option func(*SyncService)

// WithConcurrency sets how many products of a batch are published at once.
func WithConcurrency(n int) Option {
	return func(s *SyncService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithDefaultBatchSize sets the page size used when SynchronizeAll is called
// with a non-positive batch size.
func WithDefaultBatchSize(n int) Option {
	return func(s *SyncService) {
		if n > 0 && n <= MaxBatchSize {
			s.batchSize = n
		}
	}
}

// SyncService loads products, maps them and publishes the result.
type SyncService struct {
	repo        repository.ProductRepository
	mapper      Mapper
	publisher   MessagePublisher
	logger      *slog.Logger
	batchSize   int
	concurrency int
}

// NewSyncService creates a SyncService.
func NewSyncService(repo repository.ProductRepository, mapper Mapper, publisher MessagePublisher, logger *slog.Logger, opts ...Option) *SyncService {
	s := &SyncService{
		repo:        repo,
		mapper:      mapper,
		publisher:   publisher,
		logger:      logger,
		batchSize:   DefaultBatchSize,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PreviewProduct loads and maps a product without publishing it.
func (s *SyncService) PreviewProduct(ctx context.Context, code string) (*serializer.ProductPayload, error) {
	if code == "" {
		return nil, apperrors.InvalidInput("product code is required")
	}
	product, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("load product %s: %w", code, err)
	}
	return s.serialize(product)
}

// SynchronizeProduct maps the product and publishes a synchronize message.
func (s *SyncService) SynchronizeProduct(ctx context.Context, code string) error {
	if code == "" {
		return apperrors.InvalidInput("product code is required")
	}
	product, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		s.recordLoadFailure(err)
		return fmt.Errorf("load product %s: %w", code, err)
	}
	return s.synchronize(ctx, product)
}

// SynchronizeProductByID is SynchronizeProduct for events that only carry
// the primary key.
func (s *SyncService) SynchronizeProductByID(ctx context.Context, id int64) error {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.recordLoadFailure(err)
		return fmt.Errorf("load product %s: %w", strconv.FormatInt(id, 10), err)
	}
	return s.synchronize(ctx, product)
}

// RemoveProduct publishes a remove message. The product need not exist.
func (s *SyncService) RemoveProduct(ctx context.Context, code string) error {
	if code == "" {
		return apperrors.InvalidInput("product code is required")
	}
	if err := s.publisher.Remove(ctx, code); err != nil {
		ProductsSynchronized.WithLabelValues(resultPublish).Inc()
		return publishError(code, err)
	}

	ProductsSynchronized.WithLabelValues(resultRemoved).Inc()
	s.logger.InfoContext(ctx, "product removal published", slog.String("product_code", code))
	return nil
}

// SynchronizeAll pages through the catalogue and synchronizes every product.
// A failing product is recorded in the report and does not stop the run; only
// a failing page query or a canceled context does.
func (s *SyncService) SynchronizeAll(ctx context.Context, batchSize int) (SyncReport, error) {
	start := time.Now()
	defer func() { SyncAllDuration.Observe(time.Since(start).Seconds()) }()

	if batchSize <= 0 {
		batchSize = s.batchSize
	}
	if batchSize > MaxBatchSize {
		return SyncReport{}, apperrors.InvalidInput(fmt.Sprintf("batch size must not exceed %d", MaxBatchSize))
	}

	var (
		mu     sync.Mutex
		report = SyncReport{Failures: []SyncFailure{}}
	)
	finish := func() SyncReport {
		sort.Slice(report.Failures, func(i, j int) bool { return report.Failures[i].Code < report.Failures[j].Code })
		report.Failed = len(report.Failures)
		report.DurationMS = time.Since(start).Milliseconds()
		return report
	}

	for offset := 0; ; offset += batchSize {
		if err := ctx.Err(); err != nil {
			return finish(), err
		}

		codes, total, err := s.repo.ListCodes(ctx, batchSize, offset)
		if err != nil {
			return finish(), fmt.Errorf("list product codes at offset %d: %w", offset, err)
		}
		report.Total = total

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.concurrency)
		for _, code := range codes {
			g.Go(func() error {
				err := s.SynchronizeProduct(logger.WithProductCode(gctx, code), code)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					report.Failures = append(report.Failures, SyncFailure{Code: code, Error: err.Error()})
					return nil
				}
				report.Synchronized++
				return nil
			})
		}
		_ = g.Wait()

		if len(codes) < batchSize || offset+len(codes) >= total {
			break
		}
	}

	r := finish()
	s.logger.InfoContext(ctx, "catalogue synchronization finished",
		slog.Int("total", r.Total),
		slog.Int("synchronized", r.Synchronized),
		slog.Int("failed", r.Failed),
		slog.Int64("duration_ms", r.DurationMS),
	)
	return r, nil
}

// ListProducts returns one page of product codes.
func (s *SyncService) ListProducts(ctx context.Context, page, perPage int) (pagination.Result[string], error) {
	params := pagination.NewParams(page, perPage)
	codes, total, err := s.repo.ListCodes(ctx, params.PerPage, params.Offset)
	if err != nil {
		return pagination.Result[string]{}, fmt.Errorf("list products: %w", err)
	}
	return pagination.NewResult(codes, total, params), nil
}

func (s *SyncService) synchronize(ctx context.Context, product domain.Product) error {
	code := product.GetCode()
	payload, err := s.serialize(product)
	if err != nil {
		ProductsSynchronized.WithLabelValues(resultSerialize).Inc()
		s.logger.ErrorContext(ctx, "product serialization failed",
			slog.String("product_code", code),
			slog.String("error", err.Error()),
		)
		return err
	}

	if err := s.publisher.Synchronize(ctx, payload); err != nil {
		ProductsSynchronized.WithLabelValues(resultPublish).Inc()
		s.logger.ErrorContext(ctx, "product synchronization publish failed",
			slog.String("product_code", code),
			slog.String("error", err.Error()),
		)
		return publishError(code, err)
	}

	ProductsSynchronized.WithLabelValues(resultSynchronized).Inc()
	s.logger.InfoContext(ctx, "product synchronized",
		slog.String("product_code", code),
		slog.Int("variants", len(payload.Variants)),
	)
	return nil
}

func (s *SyncService) serialize(product domain.Product) (*serializer.ProductPayload, error) {
	payload, err := s.mapper.Serialize(product)
	if err != nil {
		return nil, apperrors.SerializationFailed(product.GetCode(), err)
	}
	return payload, nil
}

func (s *SyncService) recordLoadFailure(err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		ProductsSynchronized.WithLabelValues(resultNotFound).Inc()
	}
}

// publishError reports an open circuit breaker as a temporarily unavailable
// broker.
func publishError(code string, err error) error {
	if errors.Is(err, kafka.ErrCircuitOpen) {
		return apperrors.Unavailable("message broker", err)
	}
	return fmt.Errorf("publish product %s: %w", code, err)
}
