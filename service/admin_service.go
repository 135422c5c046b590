package service

import (
	"context"
	"crypto/subtle"

	"Spitbox/apperror"
	"Spitbox/db"
	"Spitbox/logger"

	"gorm.io/gorm"
)

// AdminService guards the maintenance operations.
type AdminService struct {
	db     *gorm.DB
	secret string
}

// NewAdminService creates an AdminService. An empty secret disables the
// HTTP admin endpoints.
func NewAdminService(gdb *gorm.DB, secret string) *AdminService {
	return &AdminService{db: gdb, secret: secret}
}

// Authorize checks the secret supplied by a caller.
func (s *AdminService) Authorize(provided string) error {
	if s.secret == "" {
		return apperror.NewForbidden("Admin endpoints are disabled")
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(s.secret)) != 1 {
		return apperror.NewForbidden("Invalid admin secret")
	}
	return nil
}

// ResetDB drops every table and recreates the schema.
func (s *AdminService) ResetDB(ctx context.Context) error {
	if err := db.Reset(s.db.WithContext(ctx)); err != nil {
		logger.Error("Database reset failed", logger.ErrorField(err))
		return apperror.NewInternal("Failed to reset database", err)
	}
	return nil
}
