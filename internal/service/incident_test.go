package service_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shenikar/incident_assistant/internal/models"
	"github.com/shenikar/incident_assistant/internal/service"
	"github.com/shenikar/incident_assistant/internal/service/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{}) // Отключаем вывод логов в тестах
	return logger
}

// newTestIncidentService — вспомогательная функция для создания инстанса сервиса с моками.
func newTestIncidentService(t *testing.T) (service.IncidentService, *mocks.MockIncidentRepository) {
	ctrl := gomock.NewController(t)
	repoMock := mocks.NewMockIncidentRepository(ctrl)
	return service.NewIncidentService(repoMock, newTestLogger()), repoMock
}

func TestGetIncident_Success(t *testing.T) {
	svc, repoMock := newTestIncidentService(t)
	ctx := context.Background()
	expected := &models.Incident{ID: 5, Title: "Утечка на насосной"}

	repoMock.EXPECT().FindByID(ctx, int64(5)).Return(expected, nil).Times(1)

	incident, err := svc.GetIncident(ctx, 5)

	require.NoError(t, err)
	assert.Equal(t, expected, incident)
}

func TestGetIncident_NotFound(t *testing.T) {
	svc, repoMock := newTestIncidentService(t)
	ctx := context.Background()

	repoMock.EXPECT().FindByID(ctx, int64(404)).Return(nil, models.ErrIncidentNotFound).Times(1)

	incident, err := svc.GetIncident(ctx, 404)

	require.Error(t, err)
	assert.Nil(t, incident)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorContains(t, err, "could not get incident")
}

func TestListIncidents_NormalizesPage(t *testing.T) {
	tests := []struct {
		name                string
		skip, limit         int
		wantSkip, wantLimit int
	}{
		{name: "defaults", skip: 0, limit: 0, wantSkip: 0, wantLimit: 100},
		{name: "negative skip", skip: -3, limit: 10, wantSkip: 0, wantLimit: 10},
		{name: "limit capped", skip: 20, limit: 1000, wantSkip: 20, wantLimit: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repoMock := newTestIncidentService(t)
			ctx := context.Background()
			expected := []*models.Incident{{ID: 1}, {ID: 2}}

			repoMock.EXPECT().FindAll(ctx, tt.wantSkip, tt.wantLimit).Return(expected, nil).Times(1)

			incidents, err := svc.ListIncidents(ctx, tt.skip, tt.limit)

			require.NoError(t, err)
			assert.Equal(t, expected, incidents)
		})
	}
}

func TestListIncidents_RepositoryError(t *testing.T) {
	svc, repoMock := newTestIncidentService(t)
	ctx := context.Background()

	repoMock.EXPECT().FindAll(ctx, 0, 100).Return(nil, fmt.Errorf("connection refused")).Times(1)

	_, err := svc.ListIncidents(ctx, 0, 0)

	require.Error(t, err)
	assert.ErrorContains(t, err, "could not list incidents")
}

func TestCreateIncident_AttachesCreator(t *testing.T) {
	svc, repoMock := newTestIncidentService(t)
	ctx := context.Background()
	creator := &models.User{ID: 9, Name: "Иван", Role: models.RoleOperator}
	incident := &models.Incident{
		Title:       "Разгерметизация",
		Description: "Течь на фланце",
		Type:        models.IncidentTypeLeak,
		Priority:    models.PriorityHigh,
		Location:    "Установка АВТ-6",
	}
	createdAt := time.Now()

	repoMock.EXPECT().
		Add(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, fields models.Fields) (*models.Incident, error) {
			assert.Equal(t, int64(9), fields["creator_id"])
			assert.Equal(t, "leak", fields["type"])
			assert.Equal(t, "high", fields["priority"])
			assert.Equal(t, "open", fields["status"])
			assert.Equal(t, "Установка АВТ-6", fields["location"])
			creatorID := creator.ID
			return &models.Incident{
				ID:          11,
				Title:       incident.Title,
				Description: incident.Description,
				Type:        incident.Type,
				Priority:    incident.Priority,
				Status:      models.StatusOpen,
				Location:    incident.Location,
				CreatorID:   &creatorID,
				Creator:     &models.UserSummary{ID: creator.ID, Name: creator.Name, Role: creator.Role},
				CreatedAt:   createdAt,
			}, nil
		}).Times(1)

	err := svc.CreateIncident(ctx, incident, creator)

	require.NoError(t, err)
	assert.Equal(t, int64(11), incident.ID)
	assert.Equal(t, models.StatusOpen, incident.Status)
	require.NotNil(t, incident.Creator)
	assert.Equal(t, creator.ID, incident.Creator.ID)
	assert.Equal(t, createdAt, incident.CreatedAt)
}

func TestCreateIncident_WithoutCreator(t *testing.T) {
	svc, repoMock := newTestIncidentService(t)
	ctx := context.Background()

	repoMock.EXPECT().
		Add(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, fields models.Fields) (*models.Incident, error) {
			_, ok := fields["creator_id"]
			assert.False(t, ok)
			return &models.Incident{ID: 1}, nil
		}).Times(1)

	err := svc.CreateIncident(ctx, &models.Incident{Title: "t"}, nil)
	require.NoError(t, err)
}

func TestCreateIncident_RepositoryError(t *testing.T) {
	svc, repoMock := newTestIncidentService(t)
	ctx := context.Background()

	repoMock.EXPECT().Add(ctx, gomock.Any()).Return(nil, fmt.Errorf("insert failed")).Times(1)

	err := svc.CreateIncident(ctx, &models.Incident{Title: "t"}, &models.User{ID: 1})

	require.Error(t, err)
	assert.ErrorContains(t, err, "could not create incident")
}

func TestUpdateStatus_Success(t *testing.T) {
	svc, repoMock := newTestIncidentService(t)
	ctx := context.Background()
	updated := &models.Incident{ID: 3, Status: models.StatusClosed}

	repoMock.EXPECT().UpdateStatus(ctx, int64(3), models.StatusClosed).Return(updated, nil).Times(1)

	incident, err := svc.UpdateStatus(ctx, 3, models.StatusClosed)

	require.NoError(t, err)
	assert.Equal(t, updated, incident)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	svc, repoMock := newTestIncidentService(t)

	repoMock.EXPECT().UpdateStatus(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.UpdateStatus(context.Background(), 3, models.IncidentStatus("resolved"))

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	svc, repoMock := newTestIncidentService(t)
	ctx := context.Background()

	repoMock.EXPECT().UpdateStatus(ctx, int64(3), models.StatusOpen).Return(nil, models.ErrIncidentNotFound).Times(1)

	_, err := svc.UpdateStatus(ctx, 3, models.StatusOpen)

	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrIncidentNotFound)
}

func TestDeleteIncident_TwiceYieldsNotFound(t *testing.T) {
	svc, repoMock := newTestIncidentService(t)
	ctx := context.Background()

	gomock.InOrder(
		repoMock.EXPECT().Delete(ctx, int64(8)).Return(nil),
		repoMock.EXPECT().Delete(ctx, int64(8)).Return(models.ErrIncidentNotFound),
	)

	require.NoError(t, svc.DeleteIncident(ctx, 8))

	err := svc.DeleteIncident(ctx, 8)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestListByPriority(t *testing.T) {
	svc, repoMock := newTestIncidentService(t)
	ctx := context.Background()
	expected := []*models.Incident{{ID: 1, Priority: models.PriorityLow}}

	repoMock.EXPECT().FindByPriority(ctx, models.PriorityLow).Return(expected, nil).Times(1)

	incidents, err := svc.ListByPriority(ctx, models.PriorityLow)

	require.NoError(t, err)
	assert.Equal(t, expected, incidents)
}

func TestSearchByLocation(t *testing.T) {
	svc, repoMock := newTestIncidentService(t)
	ctx := context.Background()
	expected := []*models.Incident{{ID: 4, Location: "Резервуарный парк №2"}}

	repoMock.EXPECT().SearchByLocation(ctx, "парк").Return(expected, nil).Times(1)

	incidents, err := svc.SearchByLocation(ctx, "парк")

	require.NoError(t, err)
	assert.Equal(t, expected, incidents)
}

func TestListUrgent(t *testing.T) {
	svc, repoMock := newTestIncidentService(t)
	ctx := context.Background()
	expected := []*models.Incident{{ID: 1, Priority: models.PriorityHigh}, {ID: 2, Priority: models.PriorityCritical}}

	repoMock.EXPECT().FindUrgent(ctx).Return(expected, nil).Times(1)

	incidents, err := svc.ListUrgent(ctx)

	require.NoError(t, err)
	assert.Equal(t, expected, incidents)
}

func TestGetStats(t *testing.T) {
	svc, repoMock := newTestIncidentService(t)
	ctx := context.Background()
	expected := &models.IncidentStats{
		Total:      3,
		ByPriority: map[models.Priority]int{models.PriorityHigh: 2, models.PriorityLow: 1},
		ByStatus:   map[models.IncidentStatus]int{models.StatusOpen: 3},
	}

	repoMock.EXPECT().Stats(ctx).Return(expected, nil).Times(1)

	stats, err := svc.GetStats(ctx)

	require.NoError(t, err)
	assert.Equal(t, expected, stats)
}
