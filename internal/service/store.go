package service

import (
	"context"
	"time"

	"github.com/classhub/classroom-api/internal/models"
)

// ClassStore is the collaborator contract for class document persistence.
// Replace performs a compare-and-swap on the record's Version and reports
// a typed version conflict on stale writes.
type ClassStore interface {
	Get(ctx context.Context, id string) (*models.ClassRecord, error)
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassRecord, error)
	Create(ctx context.Context, record *models.ClassRecord) error
	Replace(ctx context.Context, record *models.ClassRecord) error
}

// classCache is the read-side cache used for derived class payloads.
type classCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}
