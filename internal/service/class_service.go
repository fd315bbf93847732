package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classhub/classroom-api/internal/models"
	appErrors "github.com/classhub/classroom-api/pkg/errors"
)

const defaultMaxCapacity = 30

// CreateClassRequest describes class creation payload.
type CreateClassRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	MaxCapacity *int       `json:"max_capacity"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// UpdateClassRequest describes a partial class update; nil fields are left
// untouched.
type UpdateClassRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	MaxCapacity *int       `json:"max_capacity"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Active      *bool      `json:"active"`
}

// ListClassesQuery captures the listing filters exposed to callers.
type ListClassesQuery struct {
	OwnerID string
	Mine    bool
	Active  *bool
}

// ClassService handles the class lifecycle: creation, role-aware listing,
// updates and soft deletion. Mutations share the class mutator with the
// enrollment engine so all writes to one class stay serialized.
type ClassService struct {
	mutator *ClassMutator
	store   ClassStore
	logger  *zap.Logger
}

// NewClassService constructs ClassService.
func NewClassService(mutator *ClassMutator, store ClassStore, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{mutator: mutator, store: store, logger: logger}
}

// Create validates and persists a new class owned by the creator.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest, creator *models.JWTClaims) (*models.ClassRecord, error) {
	capacity := defaultMaxCapacity
	if req.MaxCapacity != nil {
		capacity = *req.MaxCapacity
	}

	if violations := validateClassRules(req.Name, req.Description, capacity, req.StartDate, req.EndDate); len(violations) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, strings.Join(violations, "; "))
	}

	now := time.Now().UTC()
	record := &models.ClassRecord{
		ID:          uuid.NewString(),
		OwnerID:     creator.UserID,
		OwnerName:   creator.FullName,
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		MaxCapacity: capacity,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Active:      true,
		Enrollments: []models.EnrollmentRecord{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}

	s.logger.Info("class created",
		zap.String("class_id", record.ID),
		zap.String("owner_id", record.OwnerID),
	)
	return record, nil
}

// List returns classes visible to the caller. Students see only active
// classes where they hold an approved seat; teachers can restrict to their
// own classes; the inactive filter is reserved for admins.
func (s *ClassService) List(ctx context.Context, query ListClassesQuery, caller *models.JWTClaims) ([]models.ClassRecord, error) {
	filter := models.ClassFilter{OwnerID: query.OwnerID}

	if query.Active != nil && IsAdmin(caller) {
		filter.Active = query.Active
	} else {
		active := true
		filter.Active = &active
	}

	if query.Mine && caller != nil && caller.Role == models.RoleTeacher {
		filter.OwnerID = caller.UserID
	}

	records, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}

	if caller != nil && caller.Role == models.RoleStudent {
		enrolled := make([]models.ClassRecord, 0)
		for i := range records {
			if e := records[i].Enrollment(caller.UserID); e != nil && e.Status == models.EnrollmentApproved {
				enrolled = append(enrolled, records[i])
			}
		}
		return enrolled, nil
	}

	return records, nil
}

// Get returns a single class with its occupancy stats.
func (s *ClassService) Get(ctx context.Context, id string) (*models.ClassRecord, *models.ClassStats, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	stats := record.Stats()
	return record, &stats, nil
}

// Update applies a partial update after re-validating every changed field.
// Only the owner or an admin may update; flipping Active is admin-only.
func (s *ClassService) Update(ctx context.Context, id string, req UpdateClassRequest, caller *models.JWTClaims) (*models.ClassRecord, error) {
	record, err := s.mutator.mutate(ctx, id, func(record *models.ClassRecord) error {
		if !CanMutate(record, caller) {
			return appErrors.Clone(appErrors.ErrForbidden, "only the class owner or an admin may update the class")
		}
		if req.Active != nil && !IsAdmin(caller) {
			return appErrors.Clone(appErrors.ErrForbidden, "only an admin may change the class active state")
		}

		name := record.Name
		if req.Name != nil {
			name = *req.Name
		}
		description := record.Description
		if req.Description != nil {
			description = *req.Description
		}
		capacity := record.MaxCapacity
		if req.MaxCapacity != nil {
			capacity = *req.MaxCapacity
		}
		startDate := record.StartDate
		if req.StartDate != nil {
			startDate = req.StartDate
		}
		endDate := record.EndDate
		if req.EndDate != nil {
			endDate = req.EndDate
		}

		if violations := validateClassRules(name, description, capacity, startDate, endDate); len(violations) > 0 {
			return appErrors.Clone(appErrors.ErrValidation, strings.Join(violations, "; "))
		}

		record.Name = strings.TrimSpace(name)
		record.Description = strings.TrimSpace(description)
		record.MaxCapacity = capacity
		record.StartDate = startDate
		record.EndDate = endDate
		if req.Active != nil {
			record.Active = *req.Active
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("class updated", zap.String("class_id", id))
	return record, nil
}

// SoftDelete marks the class inactive. The record and its enrollments are
// retained; no operation reactivates a class through this path.
func (s *ClassService) SoftDelete(ctx context.Context, id string, caller *models.JWTClaims) error {
	_, err := s.mutator.mutate(ctx, id, func(record *models.ClassRecord) error {
		if !CanMutate(record, caller) {
			return appErrors.Clone(appErrors.ErrForbidden, "only the class owner or an admin may delete the class")
		}
		if !record.Active {
			return errSkipReplace
		}
		record.Active = false
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("class soft-deleted", zap.String("class_id", id))
	return nil
}

// validateClassRules checks every lifecycle rule and reports all violations,
// not just the first.
func validateClassRules(name, description string, capacity int, start, end *time.Time) []string {
	var violations []string

	if len(strings.TrimSpace(name)) < 3 {
		violations = append(violations, "name must be at least 3 characters")
	}
	if len(strings.TrimSpace(description)) < 10 {
		violations = append(violations, "description must be at least 10 characters")
	}
	if capacity < 1 || capacity > 100 {
		violations = append(violations, fmt.Sprintf("max capacity must be between 1 and 100, got %d", capacity))
	}
	if start != nil && end != nil && !end.After(*start) {
		violations = append(violations, "end date must be after start date")
	}

	return violations
}
