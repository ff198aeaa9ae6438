package v1

import (
	"time"
)

// CreateIncidentRequest DTO для создания инцидента
// @Description DTO для создания инцидента
type CreateIncidentRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	Type        string `json:"type" validate:"required,oneof=leak breakdown accident"`
	Priority    string `json:"priority" validate:"required,oneof=low medium high critical"`
	Location    string `json:"location" validate:"required,max=255"`
}

// UpdateStatusRequest DTO для смены статуса инцидента
// @Description DTO для смены статуса инцидента
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required" enums:"open,in_progress,closed"`
}

// CreatorResponse краткая информация об авторе инцидента
type CreatorResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Type        string           `json:"type"`
	Priority    string           `json:"priority"`
	Status      string           `json:"status"`
	Location    string           `json:"location"`
	CreatorID   *int64           `json:"creator_id"`
	Creator     *CreatorResponse `json:"creator"`
	CreatedAt   time.Time        `json:"created_at"`
}

// StatsResponse DTO для ответа со статистикой
// @Description DTO для ответа со статистикой
type StatsResponse struct {
	Total      int            `json:"total"`
	ByPriority map[string]int `json:"by_priority"`
	ByStatus   map[string]int `json:"by_status"`
}

// RegisterRequest DTO для регистрации пользователя
// @Description DTO для регистрации пользователя
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Name     string `json:"name" validate:"required,max=255"`
	Role     string `json:"role,omitempty" validate:"omitempty,oneof=operator admin"`
}

// LoginRequest DTO для входа
// @Description DTO для входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse DTO с выпущенными токенами
// @Description DTO с выпущенными токенами
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserResponse DTO с данными пользователя, без хэша пароля
// @Description DTO с данными пользователя
type UserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// MessageResponse DTO с текстовым сообщением
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse DTO с текстом ошибки
type ErrorResponse struct {
	Error string `json:"error"`
}
