package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/incident_reporting/internal/models"
	"github.com/shenikar/incident_reporting/internal/service"
	"github.com/shenikar/incident_reporting/internal/upload"
	webhookmocks "github.com/shenikar/incident_reporting/internal/webhook/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// memoryRepository - хранилище инцидентов в памяти для сквозных тестов
type memoryRepository struct {
	mu        sync.Mutex
	seq       int
	incidents map[string]*models.Incident
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{incidents: make(map[string]*models.Incident)}
}

func (r *memoryRepository) Create(_ context.Context, incident *models.Incident) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	incident.ID = fmt.Sprintf("inc-%04d", r.seq)
	stored := *incident
	r.incidents[incident.ID] = &stored
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id string) (*models.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	incident, ok := r.incidents[id]
	if !ok {
		return nil, models.ErrIncidentNotFound
	}
	result := *incident
	return &result, nil
}

func (r *memoryRepository) ListAll(_ context.Context) ([]*models.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]*models.Incident, 0, len(r.incidents))
	for _, incident := range r.incidents {
		copied := *incident
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *memoryRepository) UpdateStatus(_ context.Context, id string, status models.Status) (*models.Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	incident, ok := r.incidents[id]
	if !ok {
		return nil, models.ErrIncidentNotFound
	}
	incident.Status = status
	result := *incident
	return &result, nil
}

func (r *memoryRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.incidents)
}

type noopCache struct{}

func (noopCache) GetIncident(context.Context, string) (*models.Incident, error) { return nil, nil }
func (noopCache) SetIncident(context.Context, *models.Incident) error           { return nil }
func (noopCache) InvalidateIncident(context.Context, string) error              { return nil }

type flowEnv struct {
	router    *gin.Engine
	repo      *memoryRepository
	uploadDir string
}

func newFlowEnv(t *testing.T) *flowEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	publisher := webhookmocks.NewMockWebhookPublisher(ctrl)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	dir := t.TempDir()
	backend, err := upload.NewLocalBackend(dir, "/uploads")
	require.NoError(t, err)

	repo := newMemoryRepository()
	cfg := newTestConfig()
	svc := service.NewIncidentService(repo, noopCache{}, upload.NewPipeline(backend, cfg.MaxUploadBytes), publisher, logger)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(svc, logger, cfg).RegisterRoutes(router)

	return &flowEnv{router: router, repo: repo, uploadDir: dir}
}

func (e *flowEnv) storedFiles(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(e.uploadDir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names
}

func TestFlow_ReportListResolve(t *testing.T) {
	env := newFlowEnv(t)

	body, contentType := multipartBody(t, potholeFields(), jpegFile())
	w := makeRequest(env.router, http.MethodPost, "/api/incidents", contentType, body)
	require.Equal(t, http.StatusCreated, w.Code)

	var created CreateIncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.IncidentID)

	files := env.storedFiles(t)
	require.Len(t, files, 1)
	assert.Equal(t, ".jpg", filepath.Ext(files[0]))

	w = makeRequest(env.router, http.MethodGet, "/api/incidents", "", nil, adminHeaders())
	require.Equal(t, http.StatusOK, w.Code)

	var listed []IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, created.IncidentID, listed[0].ID)
	assert.Equal(t, "Pothole", listed[0].Title)
	assert.Equal(t, models.StatusPending, listed[0].Status)
	assert.Equal(t, "/uploads/"+files[0], listed[0].ImageURL)
	assert.False(t, listed[0].CreatedAt.IsZero())

	w = makeRequest(env.router, http.MethodPatch, "/api/incidents/"+created.IncidentID+"/status", "application/json",
		strings.NewReader(`{"status":"Resolved"}`), adminHeaders())
	require.Equal(t, http.StatusOK, w.Code)

	var updated IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, models.StatusResolved, updated.Status)
	assert.Equal(t, listed[0].Title, updated.Title)
	assert.Equal(t, listed[0].ImageURL, updated.ImageURL)
	assert.True(t, listed[0].CreatedAt.Equal(updated.CreatedAt))

	w = makeRequest(env.router, http.MethodGet, "/api/incidents/"+created.IncidentID, "", nil, adminHeaders())
	require.Equal(t, http.StatusOK, w.Code)
	var fetched IncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, models.StatusResolved, fetched.Status)
}

func TestFlow_RejectedSubmissionsPersistNothing(t *testing.T) {
	tests := []struct {
		name   string
		fields func() map[string]string
		file   *formFile
	}{
		{
			name:   "gif image",
			fields: potholeFields,
			file:   &formFile{filename: "a.gif", contentType: "image/gif", data: []byte("GIF89a\x01\x00\x01\x00")},
		},
		{
			name:   "no image",
			fields: potholeFields,
		},
		{
			name: "missing title",
			fields: func() map[string]string {
				f := potholeFields()
				delete(f, "title")
				return f
			},
			file: jpegFile(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newFlowEnv(t)

			body, contentType := multipartBody(t, tt.fields(), tt.file)
			w := makeRequest(env.router, http.MethodPost, "/api/incidents", contentType, body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, 0, env.repo.count())
			assert.Empty(t, env.storedFiles(t))
		})
	}
}

func TestFlow_UnknownIncident(t *testing.T) {
	env := newFlowEnv(t)

	w := makeRequest(env.router, http.MethodPatch, "/api/incidents/does-not-exist/status", "application/json",
		strings.NewReader(`{"status":"Resolved"}`), adminHeaders())
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = makeRequest(env.router, http.MethodGet, "/api/incidents/does-not-exist", "", nil, adminHeaders())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFlow_InvalidStatusLeavesIncidentUnchanged(t *testing.T) {
	env := newFlowEnv(t)

	body, contentType := multipartBody(t, potholeFields(), jpegFile())
	w := makeRequest(env.router, http.MethodPost, "/api/incidents", contentType, body)
	require.Equal(t, http.StatusCreated, w.Code)
	var created CreateIncidentResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = makeRequest(env.router, http.MethodPatch, "/api/incidents/"+created.IncidentID+"/status", "application/json",
		strings.NewReader(`{"status":"Closed"}`), adminHeaders())
	assert.Equal(t, http.StatusBadRequest, w.Code)

	stored, err := env.repo.GetByID(context.Background(), created.IncidentID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}
