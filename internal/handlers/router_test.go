package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"clinic_queue/internal/auth"
	"clinic_queue/internal/estimation"
	"clinic_queue/internal/logger"
	"clinic_queue/internal/metrics"
	"clinic_queue/internal/models"
	"clinic_queue/internal/response"
	"clinic_queue/internal/service"
	"clinic_queue/internal/storage"
	"clinic_queue/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.Discard()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	store := storage.NewMemoryStore()
	hub := ws.NewHub(log, m)
	go hub.Run(ctx)

	engine := estimation.NewEngine(store, log)
	svc := service.NewQueueService(store, engine, hub, log, service.WithMetrics(m))
	issuer := auth.NewIssuer("test-access", "test-refresh")

	router := NewRouter(RouterConfig{
		Queues:   NewHandler(svc, store, log),
		Auth:     NewAuthHandler(store, issuer, log),
		Issuer:   issuer,
		Hub:      hub,
		Gatherer: reg,
	})
	return &apiClient{t: t, router: router}
}

func (a *apiClient) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (a *apiClient) login() {
	a.t.Helper()
	w := a.do(http.MethodPost, "/auth/register", RegisterRequest{
		Name: "Olga", Surname: "Reception", Email: "olga@clinic.test", Password: "secret1",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/auth/login", LoginRequest{Email: "olga@clinic.test", Password: "secret1"})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	a.token = decode[response.TokenResponse](a.t, w).AccessToken
	require.NotEmpty(a.t, a.token)
}

type seeded struct {
	doctor   models.Doctor
	queue    models.Queue
	patients []models.Patient
}

func (a *apiClient) seed() seeded {
	a.t.Helper()
	var s seeded

	w := a.do(http.MethodPost, "/api/doctors", CreateDoctorRequest{Name: "Dr. Sato", Specialty: "GP"})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	s.doctor = decode[models.Doctor](a.t, w)

	w = a.do(http.MethodPost, "/api/queues", CreateQueueRequest{Name: "Room 3", DoctorID: &s.doctor.ID})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	s.queue = decode[models.Queue](a.t, w)

	for _, name := range []string{"Nour", "Pavel", "Rosa"} {
		w = a.do(http.MethodPost, "/api/patients", CreatePatientRequest{Name: name})
		require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
		s.patients = append(s.patients, decode[models.Patient](a.t, w))
	}
	return s
}

func TestMutationsRequireToken(t *testing.T) {
	api := newAPI(t)
	w := api.do(http.MethodPost, "/api/queues/1/call-next", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "NO_AUTH_HEADER", decode[response.ErrorResponse](t, w).Code)

	api.token = "forged"
	w = api.do(http.MethodPost, "/api/queues/1/call-next", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestQueueFlow(t *testing.T) {
	api := newAPI(t)
	api.login()
	s := api.seed()
	base := fmt.Sprintf("/api/queues/%d", s.queue.ID)

	var views []service.EntryView
	for i, priority := range []string{"normal", "urgent", "normal"} {
		w := api.do(http.MethodPost, base+"/add-patient", service.AddPatientInput{
			PatientID:     s.patients[i].ID,
			PriorityLevel: priority,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		views = append(views, decode[service.EntryView](t, w))
	}
	assert.Equal(t, models.PriorityUrgent, views[1].PriorityLevel)
	assert.Equal(t, 1, views[1].Position)

	w := api.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[service.QueueSnapshot](t, w)
	require.Len(t, snap.Waiting, 3)
	assert.Equal(t, views[1].ID, snap.Waiting[0].ID)
	assert.Equal(t, []int{0, 15, 30}, []int{
		snap.Waiting[0].EstimatedWaitTime, snap.Waiting[1].EstimatedWaitTime, snap.Waiting[2].EstimatedWaitTime,
	})

	w = api.do(http.MethodPost, base+"/call-next", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	called := decode[models.QueueEntry](t, w)
	assert.Equal(t, views[1].ID, called.ID)
	require.NotNil(t, called.Patient)
	assert.Equal(t, "Pavel", called.Patient.Name)

	w = api.do(http.MethodPost, base+"/call-next", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	conflict := decode[response.ConflictResponse](t, w)
	assert.Equal(t, "CONFLICT", conflict.Code)
	require.NotNil(t, conflict.InProgress)
	assert.Equal(t, called.ID, conflict.InProgress.ID)
	assert.Equal(t, "Pavel", conflict.InProgress.Patient.Name)

	w = api.do(http.MethodGet, fmt.Sprintf("/api/queue-items/%d/position", views[2].ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	pos := decode[service.EntryView](t, w)
	assert.Equal(t, 2, pos.Position)
	assert.Equal(t, 15, pos.EstimatedWaitTime)

	w = api.do(http.MethodPost, fmt.Sprintf("/api/queue-items/%d/complete", called.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	done := decode[models.QueueEntry](t, w)
	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.NotNil(t, done.EndTime)

	w = api.do(http.MethodPost, fmt.Sprintf("/api/queue-items/%d/complete", called.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_TRANSITION", decode[response.ErrorResponse](t, w).Code)

	w = api.do(http.MethodPost, fmt.Sprintf("/api/queue-items/%d/cancel", views[0].ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.StatusCancelled, decode[models.QueueEntry](t, w).Status)

	w = api.do(http.MethodGet, fmt.Sprintf("/api/doctors/%d/stats", s.doctor.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[estimation.Stats](t, w)
	assert.Equal(t, 1, stats.PatientsSeen)
	assert.Equal(t, 3, stats.TotalPatients)
	assert.GreaterOrEqual(t, stats.AverageConsultTime, 1)

	w = api.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `clinic_queue_operations_total{action="call_next",outcome="conflict"} 1`)
}

func TestErrorMapping(t *testing.T) {
	api := newAPI(t)
	api.login()
	s := api.seed()

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"bad queue id", http.MethodPost, "/api/queues/abc/call-next", nil, http.StatusBadRequest, "INVALID_QUEUE_ID"},
		{"unknown queue", http.MethodGet, "/api/queues/999", nil, http.StatusNotFound, "NOT_FOUND"},
		{"empty queue", http.MethodPost, fmt.Sprintf("/api/queues/%d/call-next", s.queue.ID), nil, http.StatusNotFound, "NOT_FOUND"},
		{"missing patient id", http.MethodPost, fmt.Sprintf("/api/queues/%d/add-patient", s.queue.ID), map[string]any{}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown patient", http.MethodPost, fmt.Sprintf("/api/queues/%d/add-patient", s.queue.ID), service.AddPatientInput{PatientID: 999}, http.StatusNotFound, "NOT_FOUND"},
		{"unknown entry", http.MethodGet, "/api/queue-items/999/position", nil, http.StatusNotFound, "NOT_FOUND"},
		{"unknown doctor", http.MethodGet, "/api/doctors/999/stats", nil, http.StatusNotFound, "NOT_FOUND"},
		{"queue for unknown doctor", http.MethodPost, "/api/queues", map[string]any{"name": "X", "doctorId": 999}, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := api.do(tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Equal(t, tc.code, decode[response.ErrorResponse](t, w).Code)
		})
	}
}

func TestDoctorAvailability(t *testing.T) {
	api := newAPI(t)
	api.login()

	off := false
	w := api.do(http.MethodPost, "/api/doctors", CreateDoctorRequest{Name: "Dr. Lee", IsAvailable: &off})
	require.Equal(t, http.StatusCreated, w.Code)
	doctor := decode[models.Doctor](t, w)
	assert.False(t, doctor.IsAvailable)

	w = api.do(http.MethodPatch, fmt.Sprintf("/api/doctors/%d/availability", doctor.ID), map[string]bool{"isAvailable": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[models.Doctor](t, w).IsAvailable)

	w = api.do(http.MethodPatch, fmt.Sprintf("/api/doctors/%d/availability", doctor.ID), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthFlow(t *testing.T) {
	api := newAPI(t)
	api.login()

	w := api.do(http.MethodPost, "/auth/register", RegisterRequest{
		Name: "Olga", Surname: "Again", Email: "OLGA@clinic.test", Password: "secret2",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EMAIL_EXISTS", decode[response.ErrorResponse](t, w).Code)

	w = api.do(http.MethodPost, "/auth/login", LoginRequest{Email: "olga@clinic.test", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(http.MethodPost, "/auth/login", LoginRequest{Email: "olga@clinic.test", Password: "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	tokens := decode[response.TokenResponse](t, w)

	w = api.do(http.MethodPost, "/auth/refresh", RefreshRequest{RefreshToken: tokens.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode[response.TokenResponse](t, w).AccessToken)

	w = api.do(http.MethodPost, "/auth/refresh", RefreshRequest{RefreshToken: tokens.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHealthz(t *testing.T) {
	api := newAPI(t)
	w := api.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
