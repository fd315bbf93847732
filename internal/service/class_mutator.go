package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/classhub/classroom-api/internal/models"
	appErrors "github.com/classhub/classroom-api/pkg/errors"
)

// errSkipReplace tells the mutator the operation turned out to be a no-op;
// the current record is returned without writing.
var errSkipReplace = errors.New("skip replace")

// ClassMutator owns the read-modify-write cycle for class records. All
// mutating operations on one class id funnel through a single mutator
// instance, which serializes them with a per-id lock and retries the whole
// operation when the store reports a stale write from an external writer.
// Operations on different class ids proceed in parallel.
type ClassMutator struct {
	store   ClassStore
	cache   classCache
	metrics *MetricsService
	retries int
	locks   *keyedMutex
	logger  *zap.Logger
}

func NewClassMutator(store ClassStore, cache classCache, metrics *MetricsService, retries int, logger *zap.Logger) *ClassMutator {
	if retries < 1 {
		retries = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassMutator{
		store:   store,
		cache:   cache,
		metrics: metrics,
		retries: retries,
		locks:   newKeyedMutex(),
		logger:  logger,
	}
}

// mutate fetches the current record, applies the closure against the
// in-memory copy and replaces the whole document. The record is always
// re-fetched fresh, including on each retry; apply never sees a stale
// snapshot it could have written before. An aborted context fails the replace
// and leaves the stored record untouched, so no partially-applied transition
// is ever persisted.
func (m *ClassMutator) mutate(ctx context.Context, classID string, apply func(*models.ClassRecord) error) (*models.ClassRecord, error) {
	unlock := m.locks.Lock(classID)
	defer unlock()

	for attempt := 1; ; attempt++ {
		record, err := m.store.Get(ctx, classID)
		if err != nil {
			if errors.Is(err, appErrors.ErrNotFound) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
		}

		applyErr := apply(record)
		if errors.Is(applyErr, errSkipReplace) {
			return record, nil
		}
		if applyErr != nil {
			return nil, applyErr
		}

		record.UpdatedAt = time.Now().UTC()
		if err := m.store.Replace(ctx, record); err != nil {
			if errors.Is(err, appErrors.ErrVersionConflict) {
				if m.metrics != nil {
					m.metrics.ObserveReplaceConflict()
				}
				if attempt < m.retries {
					m.logger.Debug("stale class replace, retrying",
						zap.String("class_id", classID),
						zap.Int("attempt", attempt),
					)
					continue
				}
				return nil, appErrors.Clone(appErrors.ErrVersionConflict, "class record changed concurrently, retry the request")
			}
			if errors.Is(err, appErrors.ErrNotFound) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store class")
		}

		m.invalidate(ctx, classID)
		return record, nil
	}
}

func (m *ClassMutator) invalidate(ctx context.Context, classID string) {
	if m.cache == nil {
		return
	}
	if err := m.cache.DeleteByPattern(ctx, "class:"+classID+":*"); err != nil {
		m.logger.Warn("failed to invalidate class cache", zap.String("class_id", classID), zap.Error(err))
	}
}
