package v1

import (
	"strings"
	"time"

	"github.com/shenikar/incident_reporting/internal/models"
)

// CreateIncidentRequest DTO для подачи инцидента (multipart-форма, файл передается в поле image)
// @Description DTO для подачи инцидента
type CreateIncidentRequest struct {
	Title    string `form:"title" validate:"required,max=200"`
	Details  string `form:"details" validate:"required,max=5000"`
	Address  string `form:"address" validate:"required,max=500"`
	Landmark string `form:"landmark" validate:"max=500"`
}

func (r *CreateIncidentRequest) trim() {
	r.Title = strings.TrimSpace(r.Title)
	r.Details = strings.TrimSpace(r.Details)
	r.Address = strings.TrimSpace(r.Address)
	r.Landmark = strings.TrimSpace(r.Landmark)
}

// CreateIncidentResponse DTO ответа на подачу инцидента
// @Description DTO ответа на подачу инцидента
type CreateIncidentResponse struct {
	Message    string `json:"message"`
	IncidentID string `json:"incidentId"`
}

// UpdateStatusRequest DTO для смены статуса
// @Description DTO для смены статуса
type UpdateStatusRequest struct {
	Status models.Status `json:"status" validate:"required"`
}

// IncidentResponse DTO для ответа с информацией об инциденте
// @Description DTO для ответа с информацией об инциденте
type IncidentResponse struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Details   string        `json:"details"`
	Address   string        `json:"address"`
	Landmark  string        `json:"landmark"`
	ImageURL  string        `json:"imageUrl"`
	Status    models.Status `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
}
