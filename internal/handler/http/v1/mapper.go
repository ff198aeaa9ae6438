package v1

import "github.com/shenikar/incident_assistant/internal/models"

// DTOToIncidentModel преобразует DTO создания в доменную модель
func DTOToIncidentModel(dto CreateIncidentRequest) *models.Incident {
	return &models.Incident{
		Title:       dto.Title,
		Description: dto.Description,
		Type:        models.IncidentType(dto.Type),
		Priority:    models.Priority(dto.Priority),
		Location:    dto.Location,
	}
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	resp := &IncidentResponse{
		ID:          model.ID,
		Title:       model.Title,
		Description: model.Description,
		Type:        string(model.Type),
		Priority:    string(model.Priority),
		Status:      string(model.Status),
		Location:    model.Location,
		CreatorID:   model.CreatorID,
		CreatedAt:   model.CreatedAt,
	}
	if model.Creator != nil {
		resp.Creator = &CreatorResponse{
			ID:   model.Creator.ID,
			Name: model.Creator.Name,
			Role: string(model.Creator.Role),
		}
	}
	return resp
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(incidents []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(incidents))
	for i, model := range incidents {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}

func ModelToStatsResponse(stats *models.IncidentStats) *StatsResponse {
	resp := &StatsResponse{
		Total:      stats.Total,
		ByPriority: make(map[string]int, len(stats.ByPriority)),
		ByStatus:   make(map[string]int, len(stats.ByStatus)),
	}
	for p, n := range stats.ByPriority {
		resp.ByPriority[string(p)] = n
	}
	for s, n := range stats.ByStatus {
		resp.ByStatus[string(s)] = n
	}
	return resp
}

func ModelToUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  string(user.Role),
	}
}

func ModelsToUserResponses(users []*models.User) []*UserResponse {
	responses := make([]*UserResponse, len(users))
	for i, user := range users {
		responses[i] = ModelToUserResponse(user)
	}
	return responses
}
