package models

import "errors"

// Виды ошибок. Транспортный слой сопоставляет их со статусами HTTP.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
)

// DomainError - ошибка с видом и сообщением для клиента
type DomainError struct {
	Kind    error
	Message string
}

func NewError(kind error, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}

var (
	ErrIncidentNotFound = NewError(ErrNotFound, "incident not found")
	ErrUserNotFound     = NewError(ErrNotFound, "user not found")
	ErrUserExists       = NewError(ErrConflict, "user already exists")
)

// Filter - условия равенства по колонкам для выборок DAO
type Filter map[string]any

// Fields - значения колонок для вставки новой строки
type Fields map[string]any
