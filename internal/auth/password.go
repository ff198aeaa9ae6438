package auth

import (
	"errors"
	"fmt"

	"github.com/shenikar/incident_assistant/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// MaxPasswordBytes - предел bcrypt, считается в байтах, а не в символах
const MaxPasswordBytes = 72

var ErrPasswordTooLong = models.NewError(models.ErrValidation, "password is too long")

// PasswordHasher хэширует пароли bcrypt с заданной стоимостью
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash возвращает соленый хэш пароля
func (h *PasswordHasher) Hash(plain string) (string, error) {
	if len(plain) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify сравнивает пароль с хэшем
func (h *PasswordHasher) Verify(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
