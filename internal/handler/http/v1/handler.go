package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/incident_assistant/internal/config"
	"github.com/shenikar/incident_assistant/internal/models"
	"github.com/shenikar/incident_assistant/internal/service"
	"github.com/shenikar/incident_assistant/pkg/metrics"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	incidentService service.IncidentService
	authService     service.AuthService
	metrics         *metrics.HTTPMetrics
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(
	incidentService service.IncidentService,
	authService service.AuthService,
	httpMetrics *metrics.HTTPMetrics,
	logger *logrus.Logger,
	cfg *config.Config,
) *Handler {
	return &Handler{
		incidentService: incidentService,
		authService:     authService,
		metrics:         httpMetrics,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// @Summary API welcome message
// @Tags System
// @Produce json
// @Success 200 {object} MessageResponse
// @Router / [get]
func (h *Handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: "Incident Assistant API is running"})
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Create a new incident
// @Description Create a new incident authored by the current user
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param incident body CreateIncidentRequest true "Incident creation request"
// @Success 201 {object} IncidentResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/ [post]
func (h *Handler) createIncident(c *gin.Context) {
	var input CreateIncidentRequest
	log := h.logger.WithField("method", "createIncident")

	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	model := DTOToIncidentModel(input)
	if err := h.incidentService.CreateIncident(c.Request.Context(), model, currentUser(c)); err != nil {
		log.WithError(err).Error("Failed to create incident in service")
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ModelToIncidentResponse(model))
}

// @Summary Get a list of incidents
// @Description Get a page of incidents, newest first, with creator summaries
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param skip query int false "Number of incidents to skip" default(0)
// @Param limit query int false "Maximum number of incidents" default(100)
// @Success 200 {array} IncidentResponse
// @Failure 400 {object} ErrorResponse "Invalid pagination parameters"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/ [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")

	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid skip parameter"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit parameter"})
		return
	}

	incidents, err := h.incidentService.ListIncidents(c.Request.Context(), skip, limit)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from service")
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Get incident by ID
// @Description Get a single incident by its ID
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} ErrorResponse "Invalid incident ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id, ok := incidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.incidentService.GetIncident(c.Request.Context(), id)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident from service")
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary List incidents by priority
// @Description Get incidents whose priority equals the given value
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param priority path string true "Priority" Enums(low, medium, high, critical)
// @Success 200 {array} IncidentResponse
// @Failure 400 {object} ErrorResponse "Unknown priority"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/priority/{priority} [get]
func (h *Handler) listByPriority(c *gin.Context) {
	log := h.logger.WithField("method", "listByPriority")

	priority, err := models.ParsePriority(c.Param("priority"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	incidents, err := h.incidentService.ListByPriority(c.Request.Context(), priority)
	if err != nil {
		log.WithError(err).Error("Failed to filter incidents by priority")
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Search incidents by location
// @Description Get incidents whose location contains the given substring (case-sensitive)
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param location query string true "Location substring"
// @Success 200 {array} IncidentResponse
// @Failure 400 {object} ErrorResponse "Missing location"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/search/ [get]
func (h *Handler) searchIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "searchIncidents")

	location, ok := c.GetQuery("location")
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "location query parameter is required"})
		return
	}

	incidents, err := h.incidentService.SearchByLocation(c.Request.Context(), location)
	if err != nil {
		log.WithError(err).Error("Failed to search incidents by location")
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary List urgent incidents
// @Description Get incidents with high or critical priority
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Success 200 {array} IncidentResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/urgent [get]
func (h *Handler) listUrgent(c *gin.Context) {
	log := h.logger.WithField("method", "listUrgent")

	incidents, err := h.incidentService.ListUrgent(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to list urgent incidents")
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Update incident status
// @Description Change the status of an incident. Status comes from the query string or the JSON body.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Incident ID"
// @Param status query string false "New status" Enums(open, in_progress, closed)
// @Param body body UpdateStatusRequest false "New status"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} ErrorResponse "Invalid incident ID or status"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/{id} [patch]
func (h *Handler) updateStatus(c *gin.Context) {
	id, ok := incidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "updateStatus").WithField("id", id)

	var input UpdateStatusRequest
	if status, ok := c.GetQuery("status"); ok {
		input.Status = status
	} else if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "status is required"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	status, err := models.ParseIncidentStatus(input.Status)
	if err != nil {
		log.WithError(err).Warn("Unknown status")
		abortWithError(c, err)
		return
	}

	incident, err := h.incidentService.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		log.WithError(err).Warn("Failed to update incident status in service")
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Delete an incident
// @Description Delete an incident by its ID
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Param id path int true "Incident ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Invalid incident ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Incident not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/{id} [delete]
func (h *Handler) deleteIncident(c *gin.Context) {
	id, ok := incidentID(c)
	if !ok {
		return
	}
	log := h.logger.WithField("method", "deleteIncident").WithField("id", id)

	if err := h.incidentService.DeleteIncident(c.Request.Context(), id); err != nil {
		log.WithError(err).Warn("Failed to delete incident in service")
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "incident deleted"})
}

// @Summary Get incident statistics
// @Description Get incident counts by priority and by status
// @Tags Incidents
// @Produce json
// @Security BearerAuth
// @Success 200 {object} StatsResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /incidents/stats [get]
func (h *Handler) getStats(c *gin.Context) {
	log := h.logger.WithField("method", "getStats")

	stats, err := h.incidentService.GetStats(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("Failed to get stats from service")
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ModelToStatsResponse(stats))
}

// incidentID разбирает :id, при ошибке сразу отвечает 400
func incidentID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid incident ID"})
		return 0, false
	}
	return id, true
}
