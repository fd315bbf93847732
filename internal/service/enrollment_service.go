package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classhub/classroom-api/internal/models"
	appErrors "github.com/classhub/classroom-api/pkg/errors"
)

// EnrollmentRequest carries the snapshot of the requesting student captured
// on the enrollment record.
type EnrollmentRequest struct {
	StudentID    string `json:"student_id" validate:"required"`
	StudentName  string `json:"student_name" validate:"required"`
	StudentEmail string `json:"student_email" validate:"required,email"`
}

// EnrollmentService is the enrollment state machine for a class: request,
// approve, reject, remove, plus the pending listing and occupancy stats.
// Every mutation runs through the shared class mutator, so the capacity
// invariant holds under concurrent requests.
type EnrollmentService struct {
	mutator   *ClassMutator
	store     ClassStore
	cache     classCache
	metrics   *MetricsService
	statsTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(mutator *ClassMutator, store ClassStore, cache classCache, metrics *MetricsService, statsTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		mutator:   mutator,
		store:     store,
		cache:     cache,
		metrics:   metrics,
		statsTTL:  statsTTL,
		validator: validate,
		logger:    logger,
	}
}

// Request files a pending enrollment for the student, or re-files one after a
// rejection. Capacity is not checked here: pending requests may accumulate
// beyond capacity, approval is the gating step.
func (s *EnrollmentService) Request(ctx context.Context, classID string, student EnrollmentRequest) (*models.ClassRecord, error) {
	if err := s.validator.Struct(student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	record, err := s.mutator.mutate(ctx, classID, func(record *models.ClassRecord) error {
		if !record.Active {
			return appErrors.ErrClassInactive
		}

		existing := record.Enrollment(student.StudentID)
		current := models.EnrollmentNone
		if existing != nil {
			current = existing.Status
		}

		next, err := models.Transition(current, models.EventRequest)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if existing == nil {
			record.Enrollments = append(record.Enrollments, models.EnrollmentRecord{
				StudentID:    student.StudentID,
				StudentName:  student.StudentName,
				StudentEmail: student.StudentEmail,
				Status:       next,
				RequestedAt:  now,
			})
			return nil
		}

		// Re-request after rejection: the record is mutated in place. The
		// student snapshot is refreshed to the latest identity; the prior
		// rejection fields stay as an audit trail.
		existing.Status = next
		existing.RequestedAt = now
		existing.StudentName = student.StudentName
		existing.StudentEmail = student.StudentEmail
		return nil
	})

	s.observe(models.EventRequest, err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("enrollment requested",
		zap.String("class_id", classID),
		zap.String("student_id", student.StudentID),
	)
	return record, nil
}

// Approve grants the pending (or previously rejected) request a seat, as long
// as the approved count stays within capacity.
func (s *EnrollmentService) Approve(ctx context.Context, classID, studentID string, caller *models.JWTClaims) (*models.ClassRecord, error) {
	record, err := s.mutator.mutate(ctx, classID, func(record *models.ClassRecord) error {
		if !CanMutate(record, caller) {
			return appErrors.Clone(appErrors.ErrForbidden, "only the class owner or an admin may approve enrollments")
		}

		enrollment := record.Enrollment(studentID)
		current := models.EnrollmentNone
		if enrollment != nil {
			current = enrollment.Status
		}

		next, err := models.Transition(current, models.EventApprove)
		if err != nil {
			return err
		}
		if !record.HasCapacity() {
			return appErrors.ErrCapacityExceeded
		}

		now := time.Now().UTC()
		enrollment.Status = next
		enrollment.ApprovedAt = &now
		return nil
	})

	s.observe(models.EventApprove, err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("enrollment approved",
		zap.String("class_id", classID),
		zap.String("student_id", studentID),
	)
	return record, nil
}

// Reject turns the request down with an optional reason. Rejecting an already
// rejected record only re-stamps the timestamp; rejecting an approved record
// revokes the seat.
func (s *EnrollmentService) Reject(ctx context.Context, classID, studentID, reason string, caller *models.JWTClaims) (*models.ClassRecord, error) {
	record, err := s.mutator.mutate(ctx, classID, func(record *models.ClassRecord) error {
		if !CanMutate(record, caller) {
			return appErrors.Clone(appErrors.ErrForbidden, "only the class owner or an admin may reject enrollments")
		}

		enrollment := record.Enrollment(studentID)
		current := models.EnrollmentNone
		if enrollment != nil {
			current = enrollment.Status
		}

		next, err := models.Transition(current, models.EventReject)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		enrollment.Status = next
		enrollment.RejectedAt = &now
		enrollment.RejectionReason = reason
		return nil
	})

	s.observe(models.EventReject, err)
	if err != nil {
		return nil, err
	}

	s.logger.Info("enrollment rejected",
		zap.String("class_id", classID),
		zap.String("student_id", studentID),
	)
	return record, nil
}

// Remove deletes the student's enrollment record entirely. Removing an absent
// record is a no-op, not an error.
func (s *EnrollmentService) Remove(ctx context.Context, classID, studentID string, caller *models.JWTClaims) (*models.ClassRecord, error) {
	record, err := s.mutator.mutate(ctx, classID, func(record *models.ClassRecord) error {
		if !CanMutate(record, caller) {
			return appErrors.Clone(appErrors.ErrForbidden, "only the class owner or an admin may remove students")
		}
		if !record.RemoveEnrollment(studentID) {
			return errSkipReplace
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("student removed from class",
		zap.String("class_id", classID),
		zap.String("student_id", studentID),
	)
	return record, nil
}

// ListPending returns pending requests in insertion order.
func (s *EnrollmentService) ListPending(ctx context.Context, classID string, caller *models.JWTClaims) ([]models.EnrollmentRecord, error) {
	record, err := s.load(ctx, classID)
	if err != nil {
		return nil, err
	}
	if !CanMutate(record, caller) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the class owner or an admin may view enrollment requests")
	}
	return record.PendingEnrollments(), nil
}

// Stats returns the occupancy summary for a class, served from cache when
// fresh.
func (s *EnrollmentService) Stats(ctx context.Context, classID string) (*models.ClassStats, error) {
	cacheKey := "class:" + classID + ":stats"
	if s.cache != nil {
		var cached models.ClassStats
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("stats cache read failed", zap.String("class_id", classID), zap.Error(err))
		}
	}

	record, err := s.load(ctx, classID)
	if err != nil {
		return nil, err
	}
	stats := record.Stats()

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, stats, s.statsTTL); err != nil {
			s.logger.Warn("stats cache write failed", zap.String("class_id", classID), zap.Error(err))
		}
	}
	return &stats, nil
}

func (s *EnrollmentService) load(ctx context.Context, classID string) (*models.ClassRecord, error) {
	record, err := s.store.Get(ctx, classID)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return record, nil
}

func (s *EnrollmentService) observe(event models.EnrollmentEvent, err error) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(string(event), err)
	}
}
