package models

import (
	"time"
)

// IncidentType - вид происшествия на установке
type IncidentType string

const (
	IncidentTypeLeak      IncidentType = "leak"
	IncidentTypeBreakdown IncidentType = "breakdown"
	IncidentTypeAccident  IncidentType = "accident"
)

// Priority - приоритет инцидента
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// IncidentStatus - состояние обработки инцидента
type IncidentStatus string

const (
	StatusOpen       IncidentStatus = "open"
	StatusInProgress IncidentStatus = "in_progress"
	StatusClosed     IncidentStatus = "closed"
)

var (
	incidentTypes = []IncidentType{IncidentTypeLeak, IncidentTypeBreakdown, IncidentTypeAccident}
	priorities    = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
	statuses      = []IncidentStatus{StatusOpen, StatusInProgress, StatusClosed}
)

// UrgentPriorities - приоритеты, которые считаются срочными
var UrgentPriorities = []Priority{PriorityHigh, PriorityCritical}

func (t IncidentType) Valid() bool {
	for _, v := range incidentTypes {
		if v == t {
			return true
		}
	}
	return false
}

func (p Priority) Valid() bool {
	for _, v := range priorities {
		if v == p {
			return true
		}
	}
	return false
}

func (s IncidentStatus) Valid() bool {
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

// ParsePriority возвращает приоритет или ошибку валидации для неизвестного значения
func ParsePriority(raw string) (Priority, error) {
	p := Priority(raw)
	if !p.Valid() {
		return "", NewError(ErrValidation, "invalid priority: "+raw)
	}
	return p, nil
}

// ParseIncidentStatus возвращает статус или ошибку валидации для неизвестного значения
func ParseIncidentStatus(raw string) (IncidentStatus, error) {
	s := IncidentStatus(raw)
	if !s.Valid() {
		return "", NewError(ErrValidation, "invalid status: "+raw)
	}
	return s, nil
}

// Incident - запись о происшествии. Creator заполняется из users через LEFT JOIN.
type Incident struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        IncidentType   `json:"type"`
	Priority    Priority       `json:"priority"`
	Status      IncidentStatus `json:"status"`
	Location    string         `json:"location"`
	CreatorID   *int64         `json:"creator_id,omitempty"`
	Creator     *UserSummary   `json:"creator,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// IncidentStats - агрегированные счетчики инцидентов
type IncidentStats struct {
	Total      int                    `json:"total"`
	ByPriority map[Priority]int       `json:"by_priority"`
	ByStatus   map[IncidentStatus]int `json:"by_status"`
}
