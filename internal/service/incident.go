package service

import (
	"context"
	"fmt"

	"github.com/shenikar/incident_assistant/internal/models"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=incident.go -destination=mocks/mock_incident.go -package=mocks

const (
	defaultListLimit = 100
	maxListLimit     = 100
)

// IncidentRepository определяет контракт для работы с бд инцидентов
type IncidentRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Incident, error)
	FindAll(ctx context.Context, skip, limit int) ([]*models.Incident, error)
	FindByPriority(ctx context.Context, priority models.Priority) ([]*models.Incident, error)
	SearchByLocation(ctx context.Context, location string) ([]*models.Incident, error)
	FindUrgent(ctx context.Context) ([]*models.Incident, error)
	Add(ctx context.Context, fields models.Fields) (*models.Incident, error)
	UpdateStatus(ctx context.Context, id int64, status models.IncidentStatus) (*models.Incident, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*models.IncidentStats, error)
}

// IncidentService определяет контракт для бизнес-логики управления инцидентами
type IncidentService interface {
	ListIncidents(ctx context.Context, skip, limit int) ([]*models.Incident, error)
	GetIncident(ctx context.Context, id int64) (*models.Incident, error)
	ListByPriority(ctx context.Context, priority models.Priority) ([]*models.Incident, error)
	SearchByLocation(ctx context.Context, location string) ([]*models.Incident, error)
	ListUrgent(ctx context.Context) ([]*models.Incident, error)
	CreateIncident(ctx context.Context, incident *models.Incident, creator *models.User) error
	UpdateStatus(ctx context.Context, id int64, status models.IncidentStatus) (*models.Incident, error)
	DeleteIncident(ctx context.Context, id int64) error
	GetStats(ctx context.Context) (*models.IncidentStats, error)
}

type incidentService struct {
	repo   IncidentRepository
	logger *logrus.Logger
}

func NewIncidentService(repo IncidentRepository, logger *logrus.Logger) IncidentService {
	return &incidentService{
		repo:   repo,
		logger: logger,
	}
}

// ListIncidents возвращает список инцидентов с пагинацией skip/limit
func (s *incidentService) ListIncidents(ctx context.Context, skip, limit int) ([]*models.Incident, error) {
	skip, limit = normalizePage(skip, limit)

	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ListIncidents",
		"skip":    skip,
		"limit":   limit,
	})
	log.Info("Listing incidents")

	incidents, err := s.repo.FindAll(ctx, skip, limit)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}

// GetIncident получает инцидент по ID
func (s *incidentService) GetIncident(ctx context.Context, id int64) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})
	log.Info("Fetching incident by ID")

	incident, err := s.repo.FindByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident from repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	log.Info("Incident fetched successfully")
	return incident, nil
}

// ListByPriority возвращает инциденты с точным совпадением приоритета
func (s *incidentService) ListByPriority(ctx context.Context, priority models.Priority) ([]*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "incident",
		"method":   "ListByPriority",
		"priority": priority,
	})

	incidents, err := s.repo.FindByPriority(ctx, priority)
	if err != nil {
		log.WithError(err).Error("Failed to filter incidents by priority")
		return nil, fmt.Errorf("service: could not filter incidents by priority: %w", err)
	}

	log.WithField("count", len(incidents)).Info("Incidents filtered by priority")
	return incidents, nil
}

// SearchByLocation ищет инциденты, в месте которых встречается подстрока
func (s *incidentService) SearchByLocation(ctx context.Context, location string) ([]*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":  "incident",
		"method":   "SearchByLocation",
		"location": location,
	})

	incidents, err := s.repo.SearchByLocation(ctx, location)
	if err != nil {
		log.WithError(err).Error("Failed to search incidents by location")
		return nil, fmt.Errorf("service: could not search incidents by location: %w", err)
	}

	log.WithField("count", len(incidents)).Info("Incidents searched by location")
	return incidents, nil
}

// ListUrgent возвращает инциденты с высоким и критическим приоритетом
func (s *incidentService) ListUrgent(ctx context.Context) ([]*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ListUrgent",
	})

	incidents, err := s.repo.FindUrgent(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list urgent incidents")
		return nil, fmt.Errorf("service: could not list urgent incidents: %w", err)
	}

	log.WithField("count", len(incidents)).Info("Urgent incidents listed")
	return incidents, nil
}

// CreateIncident создает инцидент от имени creator и заполняет incident сохраненными значениями
func (s *incidentService) CreateIncident(ctx context.Context, incident *models.Incident, creator *models.User) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "CreateIncident",
		"title":   incident.Title,
	})
	log.Info("Attempting to create a new incident")

	fields := models.Fields{
		"title":       incident.Title,
		"description": incident.Description,
		"type":        string(incident.Type),
		"priority":    string(incident.Priority),
		"status":      string(models.StatusOpen),
		"location":    incident.Location,
	}
	if creator != nil {
		fields["creator_id"] = creator.ID
	}

	created, err := s.repo.Add(ctx, fields)
	if err != nil {
		log.WithError(err).Error("Failed to create incident in repository")
		return fmt.Errorf("service: could not create incident: %w", err)
	}
	*incident = *created

	log.WithField("incident_id", incident.ID).Info("Incident created successfully")
	return nil
}

// UpdateStatus меняет статус инцидента
func (s *incidentService) UpdateStatus(ctx context.Context, id int64, status models.IncidentStatus) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "UpdateStatus",
		"incident_id": id,
		"status":      status,
	})
	log.Info("Attempting to update incident status")

	if !status.Valid() {
		return nil, models.NewError(models.ErrValidation, "invalid status: "+string(status))
	}

	incident, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		log.WithError(err).Warn("Failed to update incident status in repository")
		return nil, fmt.Errorf("service: could not update incident status: %w", err)
	}

	log.Info("Incident status updated successfully")
	return incident, nil
}

// DeleteIncident удаляет инцидент
func (s *incidentService) DeleteIncident(ctx context.Context, id int64) error {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "DeleteIncident",
		"incident_id": id,
	})
	log.Info("Attempting to delete incident")

	if err := s.repo.Delete(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to delete incident in repository")
		return fmt.Errorf("service: could not delete incident: %w", err)
	}

	log.Info("Incident deleted successfully")
	return nil
}

// GetStats возвращает счетчики инцидентов по приоритетам и статусам
func (s *incidentService) GetStats(ctx context.Context) (*models.IncidentStats, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "GetStats",
	})

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to get incident stats")
		return nil, fmt.Errorf("service: could not get incident stats: %w", err)
	}
	return stats, nil
}

func normalizePage(skip, limit int) (int, int) {
	if skip < 0 {
		skip = 0
	}
	if limit < 1 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return skip, limit
}
