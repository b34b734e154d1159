package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shenikar/incident_reporting/internal/models"
	"github.com/shenikar/incident_reporting/internal/service"
)

const incidentColumns = `id::text, title, details, address, landmark, image_url, status, admin_notes, created_at`

type IncidentRepository struct {
	db *pgxpool.Pool
}

func NewIncidentRepository(db *pgxpool.Pool) service.IncidentRepository {
	return &IncidentRepository{
		db: db,
	}
}

// Create создает новую запись об инциденте в бд
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	query := `
		INSERT INTO incidents (title, details, address, landmark, image_url, status, admin_notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id::text;
	`
	err := r.db.QueryRow(ctx, query,
		incident.Title,
		incident.Details,
		incident.Address,
		incident.Landmark,
		incident.ImageURL,
		string(incident.Status),
		incident.AdminNotes,
		incident.CreatedAt,
	).Scan(&incident.ID)
	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	return nil
}

// GetByID возвращает инцидент по его идентификатору
func (r *IncidentRepository) GetByID(ctx context.Context, id string) (*models.Incident, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("incident with id %s: %w", id, models.ErrIncidentNotFound)
	}

	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1;`
	incident, err := scanIncident(r.db.QueryRow(ctx, query, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, models.ErrIncidentNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return incident, nil
}

// ListAll возвращает все инциденты, новые первыми
func (r *IncidentRepository) ListAll(ctx context.Context) ([]*models.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents ORDER BY created_at DESC, id DESC;`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer rows.Close()

	incidents := make([]*models.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident row: %w", err)
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error list iteration: %w", err)
	}
	return incidents, nil
}

// UpdateStatus меняет только статус и возвращает обновленную запись
func (r *IncidentRepository) UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Incident, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("incident with id %s: %w", id, models.ErrIncidentNotFound)
	}

	query := `UPDATE incidents SET status = $1 WHERE id = $2 RETURNING ` + incidentColumns + `;`
	incident, err := scanIncident(r.db.QueryRow(ctx, query, string(status), uid))
	if err != nil {
		// Ни одной строки не обновлено - инцидента с таким id не существует
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("incident with id %s: %w", id, models.ErrIncidentNotFound)
		}
		return nil, fmt.Errorf("failed to update incident status: %w", err)
	}
	return incident, nil
}

func scanIncident(row pgx.Row) (*models.Incident, error) {
	incident := &models.Incident{}
	var status string
	err := row.Scan(
		&incident.ID,
		&incident.Title,
		&incident.Details,
		&incident.Address,
		&incident.Landmark,
		&incident.ImageURL,
		&status,
		&incident.AdminNotes,
		&incident.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	incident.Status = models.Status(status)
	return incident, nil
}
