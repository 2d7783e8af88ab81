package service

import "errors"

// Error taxonomy surfaced to handlers. Authorization failures never say why
// a resource is not visible: a board that does not exist and a board owned
// by another tenant both come back as ErrNotFound.
var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrTenantAccessDenied = errors.New("tenant access denied")
	ErrTenantMismatch     = errors.New("tenant mismatch")
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("invalid input")
)
