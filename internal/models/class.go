package models

import "time"

// ClassRecord is the unit of truth for a class. The whole document, including
// its embedded enrollments, is fetched and replaced wholesale against the
// store; Version carries the optimistic concurrency token.
type ClassRecord struct {
	ID          string             `json:"id"`
	OwnerID     string             `json:"owner_id"`
	OwnerName   string             `json:"owner_name"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	MaxCapacity int                `json:"max_capacity"`
	StartDate   *time.Time         `json:"start_date,omitempty"`
	EndDate     *time.Time         `json:"end_date,omitempty"`
	Active      bool               `json:"active"`
	Enrollments []EnrollmentRecord `json:"enrollments"`
	Version     int64              `json:"version"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// EnrollmentRecord is one student's request/relationship with a class. At most
// one record exists per student; it is keyed logically by StudentID.
type EnrollmentRecord struct {
	StudentID       string           `json:"student_id"`
	StudentName     string           `json:"student_name"`
	StudentEmail    string           `json:"student_email"`
	Status          EnrollmentStatus `json:"status"`
	RequestedAt     time.Time        `json:"requested_at"`
	ApprovedAt      *time.Time       `json:"approved_at,omitempty"`
	RejectedAt      *time.Time       `json:"rejected_at,omitempty"`
	RejectionReason string           `json:"rejection_reason,omitempty"`
}

// ClassFilter defines filter criteria for listing classes.
type ClassFilter struct {
	OwnerID string
	Active  *bool
}

// ClassStats summarises enrollment occupancy for a class.
type ClassStats struct {
	Total          int  `json:"total"`
	Approved       int  `json:"approved"`
	Pending        int  `json:"pending"`
	Rejected       int  `json:"rejected"`
	AvailableSlots int  `json:"available_slots"`
	IsFull         bool `json:"is_full"`
}

// Enrollment returns the record for the given student, or nil.
func (c *ClassRecord) Enrollment(studentID string) *EnrollmentRecord {
	for i := range c.Enrollments {
		if c.Enrollments[i].StudentID == studentID {
			return &c.Enrollments[i]
		}
	}
	return nil
}

// ApprovedCount counts enrollments currently holding a seat.
func (c *ClassRecord) ApprovedCount() int {
	count := 0
	for i := range c.Enrollments {
		if c.Enrollments[i].Status == EnrollmentApproved {
			count++
		}
	}
	return count
}

// HasCapacity reports whether one more approval would stay within MaxCapacity.
func (c *ClassRecord) HasCapacity() bool {
	return c.ApprovedCount() < c.MaxCapacity
}

// Stats computes the occupancy summary from the embedded enrollments.
func (c *ClassRecord) Stats() ClassStats {
	stats := ClassStats{Total: len(c.Enrollments)}
	for i := range c.Enrollments {
		switch c.Enrollments[i].Status {
		case EnrollmentApproved:
			stats.Approved++
		case EnrollmentPending:
			stats.Pending++
		case EnrollmentRejected:
			stats.Rejected++
		}
	}
	stats.AvailableSlots = c.MaxCapacity - stats.Approved
	stats.IsFull = stats.Approved >= c.MaxCapacity
	return stats
}

// PendingEnrollments returns pending requests in insertion order.
func (c *ClassRecord) PendingEnrollments() []EnrollmentRecord {
	pending := make([]EnrollmentRecord, 0)
	for i := range c.Enrollments {
		if c.Enrollments[i].Status == EnrollmentPending {
			pending = append(pending, c.Enrollments[i])
		}
	}
	return pending
}

// RemoveEnrollment deletes the record for the given student. It reports
// whether a record was actually removed, so callers can skip a write when the
// operation was a no-op.
func (c *ClassRecord) RemoveEnrollment(studentID string) bool {
	for i := range c.Enrollments {
		if c.Enrollments[i].StudentID == studentID {
			c.Enrollments = append(c.Enrollments[:i], c.Enrollments[i+1:]...)
			return true
		}
	}
	return false
}
