package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classhub/classroom-api/internal/models"
	"github.com/classhub/classroom-api/internal/service"
	appErrors "github.com/classhub/classroom-api/pkg/errors"
	"github.com/classhub/classroom-api/pkg/response"
)

type enrollmentService interface {
	Request(ctx context.Context, classID string, student service.EnrollmentRequest) (*models.ClassRecord, error)
	Approve(ctx context.Context, classID, studentID string, caller *models.JWTClaims) (*models.ClassRecord, error)
	Reject(ctx context.Context, classID, studentID, reason string, caller *models.JWTClaims) (*models.ClassRecord, error)
	Remove(ctx context.Context, classID, studentID string, caller *models.JWTClaims) (*models.ClassRecord, error)
	ListPending(ctx context.Context, classID string, caller *models.JWTClaims) ([]models.EnrollmentRecord, error)
	Stats(ctx context.Context, classID string) (*models.ClassStats, error)
}

// EnrollmentHandler exposes the enrollment lifecycle endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

type rejectEnrollmentRequest struct {
	Reason string `json:"reason"`
}

// Enroll godoc
// @Summary Request enrollment in a class
// @Tags Enrollments
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/enroll [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	// The student snapshot comes from the authenticated identity, never from
	// the request body.
	student := service.EnrollmentRequest{
		StudentID:    claims.UserID,
		StudentName:  claims.FullName,
		StudentEmail: claims.Email,
	}
	record, err := h.enrollments.Request(c.Request.Context(), c.Param("id"), student)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Pending godoc
// @Summary List pending enrollment requests
// @Tags Enrollments
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/pending [get]
func (h *EnrollmentHandler) Pending(c *gin.Context) {
	pending, err := h.enrollments.ListPending(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pending, map[string]interface{}{"total": len(pending)})
}

// Approve godoc
// @Summary Approve an enrollment request
// @Tags Enrollments
// @Produce json
// @Param id path string true "Class ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/approve/{studentId} [put]
func (h *EnrollmentHandler) Approve(c *gin.Context) {
	record, err := h.enrollments.Approve(c.Request.Context(), c.Param("id"), c.Param("studentId"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Reject godoc
// @Summary Reject an enrollment request
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Class ID"
// @Param studentId path string true "Student ID"
// @Param payload body rejectEnrollmentRequest false "Rejection reason"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/reject/{studentId} [put]
func (h *EnrollmentHandler) Reject(c *gin.Context) {
	var req rejectEnrollmentRequest
	if c.Request.Body != nil && c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	record, err := h.enrollments.Reject(c.Request.Context(), c.Param("id"), c.Param("studentId"), req.Reason, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Remove godoc
// @Summary Remove a student from the class
// @Tags Enrollments
// @Produce json
// @Param id path string true "Class ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students/{studentId} [delete]
func (h *EnrollmentHandler) Remove(c *gin.Context) {
	record, err := h.enrollments.Remove(c.Request.Context(), c.Param("id"), c.Param("studentId"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Stats godoc
// @Summary Class occupancy stats
// @Tags Enrollments
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/stats [get]
func (h *EnrollmentHandler) Stats(c *gin.Context) {
	stats, err := h.enrollments.Stats(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}
