package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/incident_reporting/internal/config"
	"github.com/shenikar/incident_reporting/internal/models"
	"github.com/shenikar/incident_reporting/internal/service"
	"github.com/shenikar/incident_reporting/internal/upload"
	"github.com/sirupsen/logrus"
)

// multipartOverhead - запас на текстовые поля и границы multipart сверх лимита файла
const multipartOverhead int64 = 1 << 20

type Handler struct {
	incidentService service.IncidentService
	logger          *logrus.Logger
	validate        *validator.Validate
	cfg             *config.Config
}

func NewHandler(incidentService service.IncidentService, logger *logrus.Logger, cfg *config.Config) *Handler {
	return &Handler{
		incidentService: incidentService,
		logger:          logger,
		validate:        validator.New(),
		cfg:             cfg,
	}
}

// @Summary Get API liveness
// @Description Returns a plain-text message confirming the API is running
// @Tags System
// @Produce plain
// @Success 200 {string} string "Incident reporting API is running"
// @Router / [get]
func (h *Handler) liveness(c *gin.Context) {
	c.String(http.StatusOK, "Incident reporting API is running")
}

// @Summary Report a new incident
// @Description Submit an incident with a photo (JPEG or PNG, multipart form). Open to the public.
// @Tags Incidents
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Short title"
// @Param details formData string true "Description of the problem"
// @Param address formData string true "Street address"
// @Param landmark formData string false "Nearby landmark"
// @Param image formData file true "Photo of the incident"
// @Success 201 {object} CreateIncidentResponse
// @Failure 400 {object} map[string]string "Invalid form, missing fields or rejected image"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/incidents [post]
func (h *Handler) createIncident(c *gin.Context) {
	log := h.logger.WithField("method", "createIncident")

	limit := h.cfg.MaxUploadBytes + multipartOverhead
	if c.Request.ContentLength > limit {
		log.WithField("content_length", c.Request.ContentLength).Warn("Request body too large")
		c.JSON(http.StatusBadRequest, gin.H{"error": upload.ErrFileTooLarge.Error()})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	var input CreateIncidentRequest
	if err := c.ShouldBind(&input); err != nil {
		log.WithError(err).Warn("Failed to bind multipart form")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	input.trim()

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fileHeader, err := c.FormFile(upload.FieldName)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			c.JSON(http.StatusBadRequest, gin.H{"error": upload.ErrImageRequired.Error()})
			return
		}
		log.WithError(err).Warn("Failed to read image from form")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.WithError(err).Error("Failed to open uploaded image")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	defer file.Close()

	image := &upload.Image{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      file,
	}

	model := DTOToIncidentModel(input)
	if err := h.incidentService.CreateIncident(c.Request.Context(), model, image); err != nil {
		h.respondError(c, log, err)
		return
	}

	c.JSON(http.StatusCreated, CreateIncidentResponse{
		Message:    "Incident reported successfully",
		IncidentID: model.ID,
	})
}

// @Summary List all incidents
// @Description Get every incident, newest first. Requires the admin secret.
// @Tags Incidents
// @Produce json
// @Security AdminSecret
// @Success 200 {array} IncidentResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/incidents [get]
func (h *Handler) listIncidents(c *gin.Context) {
	log := h.logger.WithField("method", "listIncidents")

	incidents, err := h.incidentService.ListIncidents(c.Request.Context())
	if err != nil {
		h.respondError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, ModelsToIncidentResponses(incidents))
}

// @Summary Get incident by ID
// @Description Get a single incident by its ID. Requires the admin secret.
// @Tags Incidents
// @Produce json
// @Security AdminSecret
// @Param id path string true "Incident ID"
// @Success 200 {object} IncidentResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/incidents/{id} [get]
func (h *Handler) getIncident(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "getIncident").WithField("id", id)

	incident, err := h.incidentService.GetIncident(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// @Summary Update incident status
// @Description Set the status of an incident (Pending, In Progress, Resolved, Rejected). Requires the admin secret.
// @Tags Incidents
// @Accept json
// @Produce json
// @Security AdminSecret
// @Param id path string true "Incident ID"
// @Param status body UpdateStatusRequest true "New status"
// @Success 200 {object} IncidentResponse
// @Failure 400 {object} map[string]string "Invalid request body or status"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Incident not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /api/incidents/{id}/status [patch]
func (h *Handler) updateStatus(c *gin.Context) {
	id := c.Param("id")
	log := h.logger.WithField("method", "updateStatus").WithField("id", id)

	var input UpdateStatusRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := h.incidentService.UpdateStatus(c.Request.Context(), id, input.Status)
	if err != nil {
		h.respondError(c, log, err)
		return
	}
	c.JSON(http.StatusOK, ModelToIncidentResponse(incident))
}

// respondError переводит ошибку сервиса в HTTP-ответ. Детали внутренних ошибок клиенту не отдаются.
func (h *Handler) respondError(c *gin.Context, log *logrus.Entry, err error) {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidStatus):
		log.WithError(err).Warn("Rejected request")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, upload.ErrImageRequired):
		log.WithError(err).Warn("Rejected request")
		c.JSON(http.StatusBadRequest, gin.H{"error": upload.ErrImageRequired.Error()})
	case errors.Is(err, upload.ErrUnsupportedMedia):
		log.WithError(err).Warn("Rejected image")
		c.JSON(http.StatusBadRequest, gin.H{"error": upload.ErrUnsupportedMedia.Error()})
	case errors.Is(err, upload.ErrFileTooLarge):
		log.WithError(err).Warn("Rejected image")
		c.JSON(http.StatusBadRequest, gin.H{"error": upload.ErrFileTooLarge.Error()})
	case errors.Is(err, models.ErrIncidentNotFound):
		log.WithError(err).Warn("Incident not found")
		c.JSON(http.StatusNotFound, gin.H{"error": models.ErrIncidentNotFound.Error()})
	default:
		log.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
