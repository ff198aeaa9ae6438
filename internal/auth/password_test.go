package auth

import (
	"strings"
	"testing"

	"github.com/shenikar/incident_assistant/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hashed, err := h.Hash("s3cret")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret", hashed)
	assert.True(t, h.Verify("s3cret", hashed))
	assert.False(t, h.Verify("wrong", hashed))
	assert.False(t, h.Verify("s3cret", "not-a-hash"))
}

func TestPasswordHasher_Salted(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	first, err := h.Hash("same")
	require.NoError(t, err)
	second, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestNewPasswordHasher_InvalidCostFallsBack(t *testing.T) {
	h := NewPasswordHasher(100)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}

func TestPasswordHasher_TooLongInBytes(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	// 40 символов кириллицы занимают 80 байт
	_, err := h.Hash(strings.Repeat("я", 40))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.ErrorIs(t, err, models.ErrValidation)

	hashed, err := h.Hash(strings.Repeat("я", 36))
	require.NoError(t, err)
	assert.True(t, h.Verify(strings.Repeat("я", 36), hashed))
}
