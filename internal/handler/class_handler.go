package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/classhub/classroom-api/internal/models"
	"github.com/classhub/classroom-api/internal/service"
	appErrors "github.com/classhub/classroom-api/pkg/errors"
	"github.com/classhub/classroom-api/pkg/response"
)

type classService interface {
	Create(ctx context.Context, req service.CreateClassRequest, creator *models.JWTClaims) (*models.ClassRecord, error)
	List(ctx context.Context, query service.ListClassesQuery, caller *models.JWTClaims) ([]models.ClassRecord, error)
	Get(ctx context.Context, id string) (*models.ClassRecord, *models.ClassStats, error)
	Update(ctx context.Context, id string, req service.UpdateClassRequest, caller *models.JWTClaims) (*models.ClassRecord, error)
	SoftDelete(ctx context.Context, id string, caller *models.JWTClaims) error
}

type rosterExporter interface {
	Roster(ctx context.Context, classID, format string, caller *models.JWTClaims) (*service.RosterExport, error)
}

// ClassHandler exposes class lifecycle endpoints.
type ClassHandler struct {
	classes  classService
	exporter rosterExporter
}

// NewClassHandler constructs ClassHandler.
func NewClassHandler(classes classService, exporter rosterExporter) *ClassHandler {
	return &ClassHandler{classes: classes, exporter: exporter}
}

// Create godoc
// @Summary Create class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.classes.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// List godoc
// @Summary List classes visible to the caller
// @Tags Classes
// @Produce json
// @Param my query bool false "Teachers: restrict to own classes"
// @Param teacherId query string false "Filter by owning teacher"
// @Param active query bool false "Admins: include inactive classes"
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	query := service.ListClassesQuery{
		OwnerID: c.Query("teacherId"),
		Mine:    c.Query("my") == "true",
	}
	if raw := c.Query("active"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			query.Active = &active
		}
	}

	records, err := h.classes.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, map[string]interface{}{"total": len(records)})
}

// Get godoc
// @Summary Get class with occupancy stats
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	record, stats, err := h.classes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"class": record, "stats": stats})
}

// Update godoc
// @Summary Update class
// @Tags Classes
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param payload body service.UpdateClassRequest true "Partial class payload"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [put]
func (h *ClassHandler) Update(c *gin.Context) {
	var req service.UpdateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.classes.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Delete godoc
// @Summary Soft-delete class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	if err := h.classes.SoftDelete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": true})
}

// Export godoc
// @Summary Export approved roster
// @Tags Classes
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Class ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} byte
// @Router /classes/{id}/export [get]
func (h *ClassHandler) Export(c *gin.Context) {
	result, err := h.exporter.Roster(c.Request.Context(), c.Param("id"), c.Query("format"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
