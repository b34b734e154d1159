package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shenikar/incident_reporting/internal/models"
	"github.com/shenikar/incident_reporting/internal/upload"
	"github.com/shenikar/incident_reporting/internal/webhook"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=incident.go -destination=mocks/incident_mock.go -package=mocks

// IncidentRepository определяет контракт для работы с хранилищем инцидентов
type IncidentRepository interface {
	Create(ctx context.Context, incident *models.Incident) error
	GetByID(ctx context.Context, id string) (*models.Incident, error)
	ListAll(ctx context.Context) ([]*models.Incident, error)
	UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Incident, error)
}

// IncidentCache - кеш отдельных инцидентов. Промах кеша - (nil, nil)
type IncidentCache interface {
	GetIncident(ctx context.Context, id string) (*models.Incident, error)
	SetIncident(ctx context.Context, incident *models.Incident) error
	InvalidateIncident(ctx context.Context, id string) error
}

// ImageUploader проверяет и сохраняет фотографию, возвращая ее URL
type ImageUploader interface {
	Save(ctx context.Context, img *upload.Image) (string, error)
}

// IncidentService определяет контракт для бизнес-логики управления инцидентами
type IncidentService interface {
	CreateIncident(ctx context.Context, incident *models.Incident, image *upload.Image) error
	ListIncidents(ctx context.Context) ([]*models.Incident, error)
	GetIncident(ctx context.Context, id string) (*models.Incident, error)
	UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Incident, error)
}

type incidentService struct {
	repo      IncidentRepository
	cache     IncidentCache
	uploader  ImageUploader
	publisher webhook.WebhookPublisher
	logger    *logrus.Logger
	now       func() time.Time
}

func NewIncidentService(
	repo IncidentRepository,
	cache IncidentCache,
	uploader ImageUploader,
	publisher webhook.WebhookPublisher,
	logger *logrus.Logger,
) IncidentService {
	return &incidentService{
		repo:      repo,
		cache:     cache,
		uploader:  uploader,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateIncident проверяет поля, сохраняет фотографию и создает инцидент со статусом Pending
func (s *incidentService) CreateIncident(ctx context.Context, incident *models.Incident, image *upload.Image) error {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "CreateIncident",
	})

	incident.Title = strings.TrimSpace(incident.Title)
	incident.Details = strings.TrimSpace(incident.Details)
	incident.Address = strings.TrimSpace(incident.Address)
	incident.Landmark = strings.TrimSpace(incident.Landmark)

	if err := validateIncident(incident); err != nil {
		log.WithError(err).Warn("Incident validation failed")
		return err
	}
	if image == nil {
		log.Warn("Incident submitted without an image")
		return upload.ErrImageRequired
	}

	log = log.WithField("title", incident.Title)
	log.Info("Attempting to create a new incident")

	imageURL, err := s.uploader.Save(ctx, image)
	if err != nil {
		log.WithError(err).Warn("Failed to store incident image")
		return fmt.Errorf("service: could not store image: %w", err)
	}

	incident.ImageURL = imageURL
	incident.Status = models.StatusPending
	incident.AdminNotes = ""
	incident.CreatedAt = s.now().UTC()

	// Файл уже сохранен; при ошибке записи в бд он остается сиротой
	if err := s.repo.Create(ctx, incident); err != nil {
		log.WithError(err).WithField("image_url", imageURL).Error("Failed to create incident in repository")
		return fmt.Errorf("service: could not create incident: %w", err)
	}

	log.WithField("incident_id", incident.ID).Info("Incident created successfully")
	s.publish(ctx, log, webhook.EventIncidentCreated, incident)
	return nil
}

// ListIncidents возвращает все инциденты, новые первыми
func (s *incidentService) ListIncidents(ctx context.Context) ([]*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service": "incident",
		"method":  "ListIncidents",
	})
	log.Info("Listing incidents")

	incidents, err := s.repo.ListAll(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to list incidents from repository")
		return nil, fmt.Errorf("service: could not list incidents: %w", err)
	}
	if incidents == nil {
		incidents = make([]*models.Incident, 0)
	}

	log.WithField("count", len(incidents)).Info("Incidents listed successfully")
	return incidents, nil
}

// GetIncident получает инцидент по ID, сначала из кеша
func (s *incidentService) GetIncident(ctx context.Context, id string) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "GetIncident",
		"incident_id": id,
	})
	log.Info("Fetching incident by ID")

	cached, err := s.cache.GetIncident(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to read incident from cache")
	}
	if cached != nil {
		log.Debug("Incident served from cache")
		return cached, nil
	}

	incident, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.WithError(err).Warn("Failed to get incident in repository")
		return nil, fmt.Errorf("service: could not get incident: %w", err)
	}

	if err := s.cache.SetIncident(ctx, incident); err != nil {
		log.WithError(err).Warn("Failed to cache incident")
	}

	log.Info("Incident fetched successfully")
	return incident, nil
}

// UpdateStatus меняет только статус инцидента
func (s *incidentService) UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Incident, error) {
	log := s.logger.WithFields(logrus.Fields{
		"service":     "incident",
		"method":      "UpdateStatus",
		"incident_id": id,
		"status":      status,
	})

	if !status.Valid() {
		log.Warn("Rejected unknown incident status")
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidStatus, status)
	}

	log.Info("Attempting to update incident status")
	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, models.ErrIncidentNotFound) {
			log.WithError(err).Warn("Attempted to update a non-existent incident")
			return nil, fmt.Errorf("service: incident with id %s not found for update: %w", id, err)
		}
		log.WithError(err).Error("Failed to update incident status in repository")
		return nil, fmt.Errorf("service: could not update incident status: %w", err)
	}

	if err := s.cache.InvalidateIncident(ctx, id); err != nil {
		log.WithError(err).Warn("Failed to invalidate incident cache")
	}

	log.Info("Incident status updated successfully")
	s.publish(ctx, log, webhook.EventIncidentStatusChanged, updated)
	return updated, nil
}

// publish ставит событие в очередь вебхуков; ошибка не влияет на результат запроса
func (s *incidentService) publish(ctx context.Context, log *logrus.Entry, eventType string, incident *models.Incident) {
	event := webhook.IncidentEvent{
		Type:       eventType,
		IncidentID: incident.ID,
		Status:     incident.Status,
		Timestamp:  s.now().UTC(),
		Incident:   incident,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).WithField("event_type", eventType).Warn("Failed to publish incident event")
	}
}

func validateIncident(incident *models.Incident) error {
	var missing []string
	if incident.Title == "" {
		missing = append(missing, "title")
	}
	if incident.Details == "" {
		missing = append(missing, "details")
	}
	if incident.Address == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", models.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}
