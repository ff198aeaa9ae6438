package service

import "github.com/shenikar/incident_assistant/internal/models"

// Ошибки аутентификации, которые отдаются клиенту как 401
var (
	ErrAuthRequired        = models.NewError(models.ErrUnauthenticated, "authorization required")
	ErrTokenExpired        = models.NewError(models.ErrUnauthenticated, "token expired")
	ErrRefreshExpired      = models.NewError(models.ErrUnauthenticated, "refresh token expired")
	ErrInvalidToken        = models.NewError(models.ErrUnauthenticated, "invalid token")
	ErrSessionUserNotFound = models.NewError(models.ErrUnauthenticated, "user not found")
	ErrInvalidCredentials  = models.NewError(models.ErrUnauthenticated, "invalid email or password")
	ErrAdminRequired       = models.NewError(models.ErrForbidden, "insufficient permissions")
)
