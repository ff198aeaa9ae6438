package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/incident_assistant/internal/models"
)

const internalErrorMessage = "internal server error"

// errorStatus сопоставляет вид доменной ошибки со статусом HTTP и сообщением для клиента
func errorStatus(err error) (int, string) {
	var domainErr *models.DomainError
	if !errors.As(err, &domainErr) {
		return http.StatusInternalServerError, internalErrorMessage
	}
	switch {
	case errors.Is(domainErr, models.ErrNotFound):
		return http.StatusNotFound, domainErr.Message
	case errors.Is(domainErr, models.ErrConflict):
		return http.StatusConflict, domainErr.Message
	case errors.Is(domainErr, models.ErrUnauthenticated):
		return http.StatusUnauthorized, domainErr.Message
	case errors.Is(domainErr, models.ErrForbidden):
		return http.StatusForbidden, domainErr.Message
	case errors.Is(domainErr, models.ErrValidation):
		return http.StatusBadRequest, domainErr.Message
	}
	return http.StatusInternalServerError, internalErrorMessage
}

// abortWithError прерывает обработку и отдает ошибку клиенту
func abortWithError(c *gin.Context, err error) int {
	status, message := errorStatus(err)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
	return status
}
