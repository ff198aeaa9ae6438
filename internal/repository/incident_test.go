package repository

import (
	"testing"

	"github.com/shenikar/incident_assistant/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCreatorSummary(t *testing.T) {
	id := int64(5)
	name := "Иван"
	role := "admin"

	tests := []struct {
		name      string
		creatorID *int64
		userName  *string
		role      *string
		want      *models.UserSummary
	}{
		{
			name:      "creator joined",
			creatorID: &id,
			userName:  &name,
			role:      &role,
			want:      &models.UserSummary{ID: 5, Name: "Иван", Role: models.RoleAdmin},
		},
		{
			name: "creator deleted",
			want: nil,
		},
		{
			name:      "creator id without joined row",
			creatorID: &id,
			want:      nil,
		},
		{
			name:      "role missing",
			creatorID: &id,
			userName:  &name,
			want:      &models.UserSummary{ID: 5, Name: "Иван"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, creatorSummary(tt.creatorID, tt.userName, tt.role))
		})
	}
}
