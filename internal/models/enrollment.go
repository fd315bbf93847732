package models

import appErrors "github.com/classhub/classroom-api/pkg/errors"

// EnrollmentStatus represents the lifecycle of an enrollment request.
type EnrollmentStatus string

// Possible enrollment statuses. The zero value stands for "no record".
const (
	EnrollmentNone     EnrollmentStatus = ""
	EnrollmentPending  EnrollmentStatus = "PENDING"
	EnrollmentApproved EnrollmentStatus = "APPROVED"
	EnrollmentRejected EnrollmentStatus = "REJECTED"
)

// EnrollmentEvent names the operations that move an enrollment between
// statuses.
type EnrollmentEvent string

const (
	EventRequest EnrollmentEvent = "REQUEST"
	EventApprove EnrollmentEvent = "APPROVE"
	EventReject  EnrollmentEvent = "REJECT"
)

// Transition is the single place the enrollment state machine is defined.
// It returns the next status for an event applied to the current status, or
// the typed error explaining why the move is not allowed. Guards that depend
// on more than the status pair (class active, capacity) stay with the caller.
func Transition(current EnrollmentStatus, event EnrollmentEvent) (EnrollmentStatus, error) {
	switch event {
	case EventRequest:
		switch current {
		case EnrollmentNone, EnrollmentRejected:
			return EnrollmentPending, nil
		case EnrollmentPending:
			return current, appErrors.ErrRequestPending
		case EnrollmentApproved:
			return current, appErrors.ErrAlreadyEnrolled
		}
	case EventApprove:
		switch current {
		case EnrollmentPending, EnrollmentRejected:
			return EnrollmentApproved, nil
		case EnrollmentApproved:
			return current, appErrors.ErrAlreadyApproved
		case EnrollmentNone:
			return current, appErrors.ErrEnrollmentNotFound
		}
	case EventReject:
		// Rejection is allowed from any status, including a prior rejection
		// (re-stamps the timestamp) and an approval (revokes the seat).
		if current == EnrollmentNone {
			return current, appErrors.ErrEnrollmentNotFound
		}
		return EnrollmentRejected, nil
	}
	return current, appErrors.Clone(appErrors.ErrInternal, "unknown enrollment transition")
}
