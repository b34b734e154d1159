package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shenikar/incident_reporting/internal/models"
	"github.com/shenikar/incident_reporting/internal/service"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const incidentsCollection = "incidents"

// incidentDocument - представление инцидента в MongoDB
type incidentDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Title      string             `bson:"title"`
	Details    string             `bson:"details"`
	Address    string             `bson:"address"`
	Landmark   string             `bson:"landmark"`
	ImageURL   string             `bson:"imageUrl"`
	Status     string             `bson:"status"`
	AdminNotes string             `bson:"adminNotes"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

func toDocument(incident *models.Incident) incidentDocument {
	return incidentDocument{
		Title:      incident.Title,
		Details:    incident.Details,
		Address:    incident.Address,
		Landmark:   incident.Landmark,
		ImageURL:   incident.ImageURL,
		Status:     string(incident.Status),
		AdminNotes: incident.AdminNotes,
		CreatedAt:  incident.CreatedAt,
	}
}

func (d incidentDocument) toModel() *models.Incident {
	return &models.Incident{
		ID:         d.ID.Hex(),
		Title:      d.Title,
		Details:    d.Details,
		Address:    d.Address,
		Landmark:   d.Landmark,
		ImageURL:   d.ImageURL,
		Status:     models.Status(d.Status),
		AdminNotes: d.AdminNotes,
		CreatedAt:  d.CreatedAt,
	}
}

type MongoIncidentRepository struct {
	collection *mongo.Collection
}

func NewMongoIncidentRepository(db *mongo.Database) *MongoIncidentRepository {
	return &MongoIncidentRepository{
		collection: db.Collection(incidentsCollection),
	}
}

var _ service.IncidentRepository = (*MongoIncidentRepository)(nil)

// EnsureIndexes создает индекс для сортировки по дате создания
func (r *MongoIncidentRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create incidents index: %w", err)
	}
	return nil
}

// Create создает новый документ инцидента
func (r *MongoIncidentRepository) Create(ctx context.Context, incident *models.Incident) error {
	doc := toDocument(incident)
	doc.ID = primitive.NewObjectID()

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}
	incident.ID = doc.ID.Hex()
	return nil
}

// GetByID возвращает инцидент по ObjectID
func (r *MongoIncidentRepository) GetByID(ctx context.Context, id string) (*models.Incident, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("incident with id %s: %w", id, models.ErrIncidentNotFound)
	}

	var doc incidentDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("incident with id %s: %w", id, models.ErrIncidentNotFound)
		}
		return nil, fmt.Errorf("failed to get incident by id: %w", err)
	}
	return doc.toModel(), nil
}

// ListAll возвращает все инциденты, новые первыми
func (r *MongoIncidentRepository) ListAll(ctx context.Context) ([]*models.Incident, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list incidents: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []incidentDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode incidents: %w", err)
	}

	incidents := make([]*models.Incident, 0, len(docs))
	for _, doc := range docs {
		incidents = append(incidents, doc.toModel())
	}
	return incidents, nil
}

// UpdateStatus атомарно меняет статус и возвращает документ после обновления
func (r *MongoIncidentRepository) UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Incident, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("incident with id %s: %w", id, models.ErrIncidentNotFound)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"status": string(status)}}

	var doc incidentDocument
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("incident with id %s: %w", id, models.ErrIncidentNotFound)
		}
		return nil, fmt.Errorf("failed to update incident status: %w", err)
	}
	return doc.toModel(), nil
}
