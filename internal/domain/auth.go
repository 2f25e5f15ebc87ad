package domain

import "errors"

var ErrInvalidToken = errors.New("invalid token")

// UserRole is the role claim carried by tokens from the identity service.
type UserRole string

const (
	UserRoleAdmin        UserRole = "admin"
	UserRoleReceptionist UserRole = "receptionist"
	UserRoleDoctor       UserRole = "doctor"
	UserRoleNurse        UserRole = "nurse"
)
