package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/classhub/classroom-api/internal/models"
	appErrors "github.com/classhub/classroom-api/pkg/errors"
)

// ClassRepository persists class documents in PostgreSQL. The record is stored
// wholesale as JSONB next to a version column used for compare-and-swap
// replaces; owner_id and active are denormalised for listing filters.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

type classRow struct {
	Doc     []byte `db:"doc"`
	Version int64  `db:"version"`
}

func (r *ClassRepository) Get(ctx context.Context, id string) (*models.ClassRecord, error) {
	const query = `SELECT doc, version FROM classes WHERE id = $1`
	var row classRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, fmt.Errorf("get class %s: %w", id, err)
	}
	return decodeClass(row)
}

func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassRecord, error) {
	query := "SELECT doc, version FROM classes WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.OwnerID != "" {
		conditions = append(conditions, fmt.Sprintf("owner_id = $%d", len(args)+1))
		args = append(args, filter.OwnerID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	var rows []classRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}

	records := make([]models.ClassRecord, 0, len(rows))
	for _, row := range rows {
		record, err := decodeClass(row)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

func (r *ClassRepository) Create(ctx context.Context, record *models.ClassRecord) error {
	record.Version = 1
	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode class %s: %w", record.ID, err)
	}

	const query = `INSERT INTO classes (id, owner_id, active, version, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query, record.ID, record.OwnerID, record.Active, record.Version, doc, record.CreatedAt, record.UpdatedAt); err != nil {
		return fmt.Errorf("insert class %s: %w", record.ID, err)
	}
	return nil
}

// Replace writes the whole document back, guarded by the version the caller
// read. A concurrent writer bumps the version and the update matches zero
// rows; the caller is expected to re-fetch and retry the whole operation.
func (r *ClassRepository) Replace(ctx context.Context, record *models.ClassRecord) error {
	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode class %s: %w", record.ID, err)
	}

	const query = `UPDATE classes
		SET doc = $1, owner_id = $2, active = $3, version = version + 1, updated_at = $4
		WHERE id = $5 AND version = $6`
	res, err := r.db.ExecContext(ctx, query, doc, record.OwnerID, record.Active, record.UpdatedAt, record.ID, record.Version)
	if err != nil {
		return fmt.Errorf("replace class %s: %w", record.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("replace class %s: %w", record.ID, err)
	}
	if affected == 0 {
		var exists bool
		if err := r.db.GetContext(ctx, &exists, "SELECT EXISTS(SELECT 1 FROM classes WHERE id = $1)", record.ID); err != nil {
			return fmt.Errorf("replace class %s: %w", record.ID, err)
		}
		if !exists {
			return appErrors.ErrNotFound
		}
		return appErrors.ErrVersionConflict
	}

	record.Version++
	return nil
}

func decodeClass(row classRow) (*models.ClassRecord, error) {
	var record models.ClassRecord
	if err := json.Unmarshal(row.Doc, &record); err != nil {
		return nil, fmt.Errorf("decode class document: %w", err)
	}
	// The version column is authoritative; the copy inside the document may
	// lag behind by one write.
	record.Version = row.Version
	return &record, nil
}
