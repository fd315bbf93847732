package service

import "github.com/classhub/classroom-api/internal/models"

// IsOwner reports whether the user created the class.
func IsOwner(record *models.ClassRecord, userID string) bool {
	return record != nil && userID != "" && record.OwnerID == userID
}

// IsAdmin reports whether the caller holds the admin role.
func IsAdmin(claims *models.JWTClaims) bool {
	return claims != nil && claims.Role == models.RoleAdmin
}

// CanMutate is the single authorization predicate threaded through every
// mutating class operation: the owning teacher or an admin.
func CanMutate(record *models.ClassRecord, claims *models.JWTClaims) bool {
	if claims == nil {
		return false
	}
	return IsAdmin(claims) || IsOwner(record, claims.UserID)
}
