package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classhub/classroom-api/internal/models"
	"github.com/classhub/classroom-api/internal/service"
	appErrors "github.com/classhub/classroom-api/pkg/errors"
)

type enrollmentServiceMock struct {
	record      *models.ClassRecord
	pending     []models.EnrollmentRecord
	stats       *models.ClassStats
	err         error
	lastStudent service.EnrollmentRequest
	lastReason  string
}

func (m *enrollmentServiceMock) Request(ctx context.Context, classID string, student service.EnrollmentRequest) (*models.ClassRecord, error) {
	m.lastStudent = student
	if m.err != nil {
		return nil, m.err
	}
	return m.record, nil
}

func (m *enrollmentServiceMock) Approve(ctx context.Context, classID, studentID string, caller *models.JWTClaims) (*models.ClassRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.record, nil
}

func (m *enrollmentServiceMock) Reject(ctx context.Context, classID, studentID, reason string, caller *models.JWTClaims) (*models.ClassRecord, error) {
	m.lastReason = reason
	if m.err != nil {
		return nil, m.err
	}
	return m.record, nil
}

func (m *enrollmentServiceMock) Remove(ctx context.Context, classID, studentID string, caller *models.JWTClaims) (*models.ClassRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.record, nil
}

func (m *enrollmentServiceMock) ListPending(ctx context.Context, classID string, caller *models.JWTClaims) ([]models.EnrollmentRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.pending, nil
}

func (m *enrollmentServiceMock) Stats(ctx context.Context, classID string) (*models.ClassStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

func student() *models.JWTClaims {
	return &models.JWTClaims{UserID: "s1", FullName: "Alice Johnson", Email: "alice@school.test", Role: models.RoleStudent}
}

func TestEnrollmentHandlerEnrollUsesClaimsSnapshot(t *testing.T) {
	mock := &enrollmentServiceMock{record: &models.ClassRecord{ID: "c1"}}
	h := NewEnrollmentHandler(mock)

	c, w := testContext(t, http.MethodPost, "/classes/c1/enroll", nil, student())
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	h.Enroll(c)
	require.Equal(t, http.StatusOK, w.Code)

	// The snapshot is built from the token, never the body.
	assert.Equal(t, "s1", mock.lastStudent.StudentID)
	assert.Equal(t, "Alice Johnson", mock.lastStudent.StudentName)
	assert.Equal(t, "alice@school.test", mock.lastStudent.StudentEmail)
}

func TestEnrollmentHandlerEnrollWithoutClaims(t *testing.T) {
	h := NewEnrollmentHandler(&enrollmentServiceMock{})

	c, w := testContext(t, http.MethodPost, "/classes/c1/enroll", nil, nil)
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	h.Enroll(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEnrollmentHandlerEnrollConflict(t *testing.T) {
	mock := &enrollmentServiceMock{err: appErrors.ErrRequestPending}
	h := NewEnrollmentHandler(mock)

	c, w := testContext(t, http.MethodPost, "/classes/c1/enroll", nil, student())
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	h.Enroll(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrRequestPending.Code, envelope.Error.Code)
}

func TestEnrollmentHandlerPending(t *testing.T) {
	mock := &enrollmentServiceMock{pending: []models.EnrollmentRecord{
		{StudentID: "s1", Status: models.EnrollmentPending},
	}}
	h := NewEnrollmentHandler(mock)

	c, w := testContext(t, http.MethodGet, "/classes/c1/pending", nil, teacher())
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	h.Pending(c)
	require.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.EqualValues(t, 1, envelope.Meta["total"])
}

func TestEnrollmentHandlerApproveCapacityExceeded(t *testing.T) {
	mock := &enrollmentServiceMock{err: appErrors.ErrCapacityExceeded}
	h := NewEnrollmentHandler(mock)

	c, w := testContext(t, http.MethodPut, "/classes/c1/approve/s1", nil, teacher())
	c.Params = gin.Params{{Key: "id", Value: "c1"}, {Key: "studentId", Value: "s1"}}

	h.Approve(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrCapacityExceeded.Code, envelope.Error.Code)
}

func TestEnrollmentHandlerRejectPassesReason(t *testing.T) {
	mock := &enrollmentServiceMock{record: &models.ClassRecord{ID: "c1"}}
	h := NewEnrollmentHandler(mock)

	body, _ := json.Marshal(map[string]string{"reason": "class is for seniors only"})
	c, w := testContext(t, http.MethodPut, "/classes/c1/reject/s1", body, teacher())
	c.Params = gin.Params{{Key: "id", Value: "c1"}, {Key: "studentId", Value: "s1"}}

	h.Reject(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "class is for seniors only", mock.lastReason)
}

func TestEnrollmentHandlerRejectWithoutBody(t *testing.T) {
	mock := &enrollmentServiceMock{record: &models.ClassRecord{ID: "c1"}}
	h := NewEnrollmentHandler(mock)

	c, w := testContext(t, http.MethodPut, "/classes/c1/reject/s1", nil, teacher())
	c.Params = gin.Params{{Key: "id", Value: "c1"}, {Key: "studentId", Value: "s1"}}

	h.Reject(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, mock.lastReason)
}

func TestEnrollmentHandlerRemove(t *testing.T) {
	mock := &enrollmentServiceMock{record: &models.ClassRecord{ID: "c1"}}
	h := NewEnrollmentHandler(mock)

	c, w := testContext(t, http.MethodDelete, "/classes/c1/students/s1", nil, teacher())
	c.Params = gin.Params{{Key: "id", Value: "c1"}, {Key: "studentId", Value: "s1"}}

	h.Remove(c)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestEnrollmentHandlerStats(t *testing.T) {
	mock := &enrollmentServiceMock{stats: &models.ClassStats{Total: 3, Approved: 2, Pending: 1, AvailableSlots: 8}}
	h := NewEnrollmentHandler(mock)

	c, w := testContext(t, http.MethodGet, "/classes/c1/stats", nil, student())
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	h.Stats(c)
	require.Equal(t, http.StatusOK, w.Code)

	envelope := decodeEnvelope(t, w)
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 2, data["approved"])
	assert.EqualValues(t, 8, data["available_slots"])
}
