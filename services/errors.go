// services/errors.go - Sentinel errors for the core services
package services

import "errors"

var (
	// Lookup failures
	ErrNotFound = errors.New("resource not found")

	// Team membership rules
	ErrNotEnrolled      = errors.New("student is not enrolled in this course")
	ErrAlreadyInTeam    = errors.New("student already belongs to a team in this course")
	ErrRoleConflict     = errors.New("team role is already filled")
	ErrCapacityExceeded = errors.New("team is closed or at capacity")
	ErrNotMember        = errors.New("user is not a member of this team")
	ErrConflict         = errors.New("concurrent modification, retry the operation")

	// Award grants
	ErrDuplicateGrant = errors.New("award already granted in this context")
	ErrAwardInUse     = errors.New("award has granted instances and cannot be deleted")

	// Sprint lifecycle
	ErrStoriesPending = errors.New("all user stories must be done before completing the sprint")

	// Enrollment / access
	ErrAlreadyEnrolled = errors.New("student is already enrolled in this course")
	ErrInvalidCode     = errors.New("invalid course access code")
	ErrForbidden       = errors.New("operation not allowed for this user")
)
