package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/classhub/classroom-api/internal/models"
)

func TestCanMutate(t *testing.T) {
	record := &models.ClassRecord{ID: "c1", OwnerID: "t1"}

	assert.True(t, CanMutate(record, teacherClaims("t1")))
	assert.True(t, CanMutate(record, adminClaims()))
	assert.False(t, CanMutate(record, teacherClaims("t2")))
	assert.False(t, CanMutate(record, &models.JWTClaims{UserID: "s1", Role: models.RoleStudent}))
	assert.False(t, CanMutate(record, nil))
}

func TestIsOwner(t *testing.T) {
	record := &models.ClassRecord{OwnerID: "t1"}

	assert.True(t, IsOwner(record, "t1"))
	assert.False(t, IsOwner(record, ""))
	assert.False(t, IsOwner(nil, "t1"))
}
