package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classhub/classroom-api/internal/middleware"
	"github.com/classhub/classroom-api/internal/models"
	"github.com/classhub/classroom-api/internal/service"
	appErrors "github.com/classhub/classroom-api/pkg/errors"
	"github.com/classhub/classroom-api/pkg/response"
)

type classServiceMock struct {
	record    *models.ClassRecord
	records   []models.ClassRecord
	stats     *models.ClassStats
	err       error
	lastQuery service.ListClassesQuery
	deleted   []string
}

func (m *classServiceMock) Create(ctx context.Context, req service.CreateClassRequest, creator *models.JWTClaims) (*models.ClassRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.record, nil
}

func (m *classServiceMock) List(ctx context.Context, query service.ListClassesQuery, caller *models.JWTClaims) ([]models.ClassRecord, error) {
	m.lastQuery = query
	return m.records, m.err
}

func (m *classServiceMock) Get(ctx context.Context, id string) (*models.ClassRecord, *models.ClassStats, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.record, m.stats, nil
}

func (m *classServiceMock) Update(ctx context.Context, id string, req service.UpdateClassRequest, caller *models.JWTClaims) (*models.ClassRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.record, nil
}

func (m *classServiceMock) SoftDelete(ctx context.Context, id string, caller *models.JWTClaims) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

type rosterExporterMock struct {
	result *service.RosterExport
	err    error
}

func (m *rosterExporterMock) Roster(ctx context.Context, classID, format string, caller *models.JWTClaims) (*service.RosterExport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func testContext(t *testing.T, method, target string, body []byte, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func teacher() *models.JWTClaims {
	return &models.JWTClaims{UserID: "t1", FullName: "Jordan Smith", Email: "jordan@school.test", Role: models.RoleTeacher}
}

func TestClassHandlerCreate(t *testing.T) {
	mock := &classServiceMock{record: &models.ClassRecord{ID: "c1", Name: "Algebra I"}}
	h := NewClassHandler(mock, &rosterExporterMock{})

	body, _ := json.Marshal(service.CreateClassRequest{Name: "Algebra I", Description: "Introductory algebra for first years"})
	c, w := testContext(t, http.MethodPost, "/classes", body, teacher())

	h.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.NotNil(t, envelope.Data)
	assert.Nil(t, envelope.Error)
}

func TestClassHandlerCreateInvalidBody(t *testing.T) {
	h := NewClassHandler(&classServiceMock{}, &rosterExporterMock{})

	c, w := testContext(t, http.MethodPost, "/classes", []byte(`{"max_capacity":"lots"}`), teacher())

	h.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClassHandlerCreateValidationError(t *testing.T) {
	mock := &classServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "name must be at least 3 characters")}
	h := NewClassHandler(mock, &rosterExporterMock{})

	body, _ := json.Marshal(service.CreateClassRequest{Name: "X"})
	c, w := testContext(t, http.MethodPost, "/classes", body, teacher())

	h.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	envelope := decodeEnvelope(t, w)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
}

func TestClassHandlerListParsesQuery(t *testing.T) {
	mock := &classServiceMock{records: []models.ClassRecord{{ID: "c1"}, {ID: "c2"}}}
	h := NewClassHandler(mock, &rosterExporterMock{})

	c, w := testContext(t, http.MethodGet, "/classes?my=true&teacherId=t9&active=false", nil, teacher())

	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	assert.True(t, mock.lastQuery.Mine)
	assert.Equal(t, "t9", mock.lastQuery.OwnerID)
	require.NotNil(t, mock.lastQuery.Active)
	assert.False(t, *mock.lastQuery.Active)

	envelope := decodeEnvelope(t, w)
	assert.EqualValues(t, 2, envelope.Meta["total"])
}

func TestClassHandlerGetNotFound(t *testing.T) {
	mock := &classServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "class not found")}
	h := NewClassHandler(mock, &rosterExporterMock{})

	c, w := testContext(t, http.MethodGet, "/classes/ghost", nil, teacher())
	c.Params = gin.Params{{Key: "id", Value: "ghost"}}

	h.Get(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestClassHandlerUpdateForbidden(t *testing.T) {
	mock := &classServiceMock{err: appErrors.ErrForbidden}
	h := NewClassHandler(mock, &rosterExporterMock{})

	body, _ := json.Marshal(map[string]string{"name": "Taken over"})
	c, w := testContext(t, http.MethodPut, "/classes/c1", body, teacher())
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	h.Update(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestClassHandlerDelete(t *testing.T) {
	mock := &classServiceMock{}
	h := NewClassHandler(mock, &rosterExporterMock{})

	c, w := testContext(t, http.MethodDelete, "/classes/c1", nil, teacher())
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	h.Delete(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"c1"}, mock.deleted)
}

func TestClassHandlerExport(t *testing.T) {
	exporter := &rosterExporterMock{result: &service.RosterExport{
		FileName:    "roster-c1.csv",
		ContentType: "text/csv",
		Content:     []byte("Student ID,Name\n"),
	}}
	h := NewClassHandler(&classServiceMock{}, exporter)

	c, w := testContext(t, http.MethodGet, "/classes/c1/export?format=csv", nil, teacher())
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "roster-c1.csv")
	assert.Equal(t, "Student ID,Name\n", w.Body.String())
}

func TestClassHandlerVersionConflictSurfacesAs409(t *testing.T) {
	mock := &classServiceMock{err: appErrors.Clone(appErrors.ErrVersionConflict, "class record changed concurrently, retry the request")}
	h := NewClassHandler(mock, &rosterExporterMock{})

	body, _ := json.Marshal(map[string]string{"name": "Algebra II"})
	c, w := testContext(t, http.MethodPut, "/classes/c1", body, teacher())
	c.Params = gin.Params{{Key: "id", Value: "c1"}}

	h.Update(c)
	require.Equal(t, http.StatusConflict, w.Code)
}
