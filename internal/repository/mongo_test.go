package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shenikar/incident_reporting/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func TestIncidentDocument_RoundTrip(t *testing.T) {
	createdAt := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	incident := &models.Incident{
		Title:      "Pothole",
		Details:    "Large pothole",
		Address:    "Main St",
		Landmark:   "Bakery",
		ImageURL:   "/uploads/a.jpg",
		Status:     models.StatusInProgress,
		AdminNotes: "crew dispatched",
		CreatedAt:  createdAt,
	}

	doc := toDocument(incident)
	doc.ID = primitive.NewObjectID()

	raw, err := bson.Marshal(doc)
	require.NoError(t, err)

	var decoded bson.M
	require.NoError(t, bson.Unmarshal(raw, &decoded))
	assert.Equal(t, "In Progress", decoded["status"])
	assert.Equal(t, "/uploads/a.jpg", decoded["imageUrl"])
	assert.Contains(t, decoded, "adminNotes")
	assert.Contains(t, decoded, "createdAt")

	var back incidentDocument
	require.NoError(t, bson.Unmarshal(raw, &back))
	model := back.toModel()
	assert.Equal(t, doc.ID.Hex(), model.ID)
	assert.Equal(t, incident.Title, model.Title)
	assert.Equal(t, incident.Status, model.Status)
	assert.True(t, createdAt.Equal(model.CreatedAt))
}

func TestMongoIncidentRepository_MalformedIDIsNotFound(t *testing.T) {
	// Connect не устанавливает соединение сразу, а некорректный id отсекается до обращения к серверу
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://localhost:27017"))
	require.NoError(t, err)
	defer client.Disconnect(context.Background())

	repo := NewMongoIncidentRepository(client.Database("incident_reports_test"))

	_, err = repo.GetByID(context.Background(), "not-an-object-id")
	require.ErrorIs(t, err, models.ErrIncidentNotFound)

	_, err = repo.UpdateStatus(context.Background(), "12345", models.StatusResolved)
	require.ErrorIs(t, err, models.ErrIncidentNotFound)
}
