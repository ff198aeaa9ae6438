package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/incident_assistant/internal/models"
	"github.com/shenikar/incident_assistant/internal/service"
)

const incidentSelect = `
	SELECT
		i.id,
		i.title,
		i.description,
		i.type,
		i.priority,
		i.status,
		i.location,
		i.creator_id,
		i.created_at,
		u.name,
		u.role
	FROM incidents i
	LEFT JOIN users u ON u.id = i.creator_id`

type IncidentRepository struct {
	db  *pgxpool.Pool
	dao *dao[*models.Incident]
}

func NewIncidentRepository(db *pgxpool.Pool) service.IncidentRepository {
	return &IncidentRepository{
		db: db,
		dao: &dao[*models.Incident]{
			db:          db,
			table:       "incidents",
			selectQuery: incidentSelect,
			idColumn:    "i.id",
			orderBy:     "i.created_at DESC, i.id DESC",
			columns: map[string]string{
				"title":       "i.title",
				"description": "i.description",
				"type":        "i.type",
				"priority":    "i.priority",
				"status":      "i.status",
				"location":    "i.location",
				"creator_id":  "i.creator_id",
			},
			scan:     scanIncident,
			notFound: models.ErrIncidentNotFound,
		},
	}
}

// scanIncident читает строку incidentSelect, автор может отсутствовать
func scanIncident(row pgx.CollectableRow) (*models.Incident, error) {
	var (
		incident    models.Incident
		creatorName *string
		creatorRole *string
	)
	err := row.Scan(
		&incident.ID,
		&incident.Title,
		&incident.Description,
		&incident.Type,
		&incident.Priority,
		&incident.Status,
		&incident.Location,
		&incident.CreatorID,
		&incident.CreatedAt,
		&creatorName,
		&creatorRole,
	)
	if err != nil {
		return nil, err
	}
	incident.Creator = creatorSummary(incident.CreatorID, creatorName, creatorRole)
	return &incident, nil
}

// creatorSummary собирает автора из колонок LEFT JOIN. После удаления
// пользователя creator_id обнуляется, и автор отсутствует.
func creatorSummary(creatorID *int64, name, role *string) *models.UserSummary {
	if creatorID == nil || name == nil {
		return nil
	}
	summary := &models.UserSummary{ID: *creatorID, Name: *name}
	if role != nil {
		summary.Role = models.Role(*role)
	}
	return summary
}

// FindByID возвращает инцидент или ErrIncidentNotFound
func (r *IncidentRepository) FindByID(ctx context.Context, id int64) (*models.Incident, error) {
	return r.dao.findByID(ctx, id)
}

// FindAll возвращает страницу инцидентов, новые первыми
func (r *IncidentRepository) FindAll(ctx context.Context, skip, limit int) ([]*models.Incident, error) {
	return r.dao.findAll(ctx, nil, skip, limit)
}

func (r *IncidentRepository) FindByPriority(ctx context.Context, priority models.Priority) ([]*models.Incident, error) {
	return r.dao.findWhere(ctx, "i.priority = $1", string(priority))
}

// SearchByLocation ищет подстроку в location с учетом регистра
func (r *IncidentRepository) SearchByLocation(ctx context.Context, location string) ([]*models.Incident, error) {
	return r.dao.findWhere(ctx, "strpos(i.location, $1) > 0", location)
}

// FindUrgent возвращает инциденты с высоким и критическим приоритетом
func (r *IncidentRepository) FindUrgent(ctx context.Context) ([]*models.Incident, error) {
	urgent := make([]string, 0, len(models.UrgentPriorities))
	for _, p := range models.UrgentPriorities {
		urgent = append(urgent, string(p))
	}
	return r.dao.findWhere(ctx, "i.priority = ANY($1)", urgent)
}

func (r *IncidentRepository) Add(ctx context.Context, fields models.Fields) (*models.Incident, error) {
	incident, err := r.dao.add(ctx, fields)
	if err != nil {
		return nil, fmt.Errorf("failed to create incident: %w", err)
	}
	return incident, nil
}

// UpdateStatus меняет статус и возвращает обновленный инцидент
func (r *IncidentRepository) UpdateStatus(ctx context.Context, id int64, status models.IncidentStatus) (*models.Incident, error) {
	var updated *models.Incident
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, `UPDATE incidents SET status = $1 WHERE id = $2`, string(status), id)
		if err != nil {
			return fmt.Errorf("failed to update incident status: %w", err)
		}
		// Если RowsAffected() == 0, значит инцидента с таким id не существует
		if cmdTag.RowsAffected() == 0 {
			return models.ErrIncidentNotFound
		}
		updated, err = r.dao.selectOne(ctx, tx, "i.id = $1", id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *IncidentRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM incidents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete incident: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrIncidentNotFound
	}
	return nil
}

// Stats считает инциденты по приоритетам и статусам одним запросом
func (r *IncidentRepository) Stats(ctx context.Context) (*models.IncidentStats, error) {
	query := `
		SELECT priority, status, COUNT(*)
		FROM incidents
		GROUP BY priority, status;
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get incident stats: %w", err)
	}
	defer rows.Close()

	stats := &models.IncidentStats{
		ByPriority: make(map[models.Priority]int),
		ByStatus:   make(map[models.IncidentStatus]int),
	}
	for rows.Next() {
		var (
			priority models.Priority
			status   models.IncidentStatus
			count    int
		)
		if err := rows.Scan(&priority, &status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan incident stats row: %w", err)
		}
		stats.Total += count
		stats.ByPriority[priority] += count
		stats.ByStatus[status] += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error stats iteration: %w", err)
	}
	return stats, nil
}
