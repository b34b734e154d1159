package v1

import "github.com/shenikar/incident_reporting/internal/models"

// DTOToIncidentModel преобразует DTO создания в доменную модель
func DTOToIncidentModel(dto CreateIncidentRequest) *models.Incident {
	return &models.Incident{
		Title:    dto.Title,
		Details:  dto.Details,
		Address:  dto.Address,
		Landmark: dto.Landmark,
	}
}

// ModelToIncidentResponse преобразует доменную модель в DTO для ответа.
// AdminNotes наружу не отдаются.
func ModelToIncidentResponse(model *models.Incident) *IncidentResponse {
	return &IncidentResponse{
		ID:        model.ID,
		Title:     model.Title,
		Details:   model.Details,
		Address:   model.Address,
		Landmark:  model.Landmark,
		ImageURL:  model.ImageURL,
		Status:    model.Status,
		CreatedAt: model.CreatedAt,
	}
}

// ModelsToIncidentResponses преобразует слайс моделей в слайс DTO
func ModelsToIncidentResponses(models []*models.Incident) []*IncidentResponse {
	responses := make([]*IncidentResponse, len(models))
	for i, model := range models {
		responses[i] = ModelToIncidentResponse(model)
	}
	return responses
}
