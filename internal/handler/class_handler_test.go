package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/escolalab/gestao-escolar-api/internal/models"
	"github.com/escolalab/gestao-escolar-api/internal/repository"
	"github.com/escolalab/gestao-escolar-api/internal/service"
	"github.com/escolalab/gestao-escolar-api/pkg/response"
)

type classRepoStub struct {
	classes    []models.Class
	detail     *models.ClassDetail
	nameExists bool
	deleteErr  error
}

func (s *classRepoStub) List(ctx context.Context) ([]models.Class, error) {
	return s.classes, nil
}

func (s *classRepoStub) FindDetailByID(ctx context.Context, id string) (*models.ClassDetail, error) {
	if s.detail == nil {
		return nil, sql.ErrNoRows
	}
	return s.detail, nil
}

func (s *classRepoStub) ExistsByName(ctx context.Context, name string) (bool, error) {
	return s.nameExists, nil
}

func (s *classRepoStub) Create(ctx context.Context, class *models.Class) error {
	class.ID = "class-1"
	class.CreatedAt = time.Now()
	class.UpdatedAt = class.CreatedAt
	return nil
}

func (s *classRepoStub) DeleteIfEmpty(ctx context.Context, id string) error {
	return s.deleteErr
}

func classTestRouter(stub *classRepoStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := service.NewClassService(stub, nil, validator.New(), zap.NewNop())
	h := NewClassHandler(svc)

	router := gin.New()
	router.GET("/classes", h.List)
	router.GET("/classes/:id", h.Get)
	router.POST("/classes", h.Create)
	router.DELETE("/classes/:id", h.Delete)
	return router
}

func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope
}

func TestClassHandlerList(t *testing.T) {
	router := classTestRouter(&classRepoStub{classes: []models.Class{
		{ID: "class-1", Name: "1º Ano A", Capacity: 25},
	}})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/classes", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	assert.Nil(t, envelope.Error)
	assert.NotNil(t, envelope.Data)
}

func TestClassHandlerGetNotFound(t *testing.T) {
	router := classTestRouter(&classRepoStub{})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/classes/missing", nil))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	envelope := decodeEnvelope(t, recorder)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}

func TestClassHandlerCreate(t *testing.T) {
	router := classTestRouter(&classRepoStub{})

	body, _ := json.Marshal(map[string]interface{}{"name": "1º Ano A", "capacity": 25})
	req := httptest.NewRequest(http.MethodPost, "/classes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusCreated, recorder.Code)
}

func TestClassHandlerCreateDuplicate(t *testing.T) {
	router := classTestRouter(&classRepoStub{nameExists: true})

	body, _ := json.Marshal(map[string]interface{}{"name": "1º Ano A", "capacity": 25})
	req := httptest.NewRequest(http.MethodPost, "/classes", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestClassHandlerCreateInvalidBody(t *testing.T) {
	router := classTestRouter(&classRepoStub{})

	req := httptest.NewRequest(http.MethodPost, "/classes", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestClassHandlerDeleteOccupied(t *testing.T) {
	router := classTestRouter(&classRepoStub{deleteErr: repository.ErrClassNotEmpty})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/classes/class-1", nil))

	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestClassHandlerDelete(t *testing.T) {
	router := classTestRouter(&classRepoStub{})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/classes/class-1", nil))

	assert.Equal(t, http.StatusNoContent, recorder.Code)
}
