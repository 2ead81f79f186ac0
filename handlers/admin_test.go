package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gilad-Weinberger/netta-nails/handlers"
	"github.com/Gilad-Weinberger/netta-nails/models"
)

type fakeAdminStore struct {
	appointments []models.Appointment
	created      []models.CreateAppointmentRequest
	deleted      []string
}

func (f *fakeAdminStore) ListAll() ([]models.Appointment, error) {
	return f.appointments, nil
}

func (f *fakeAdminStore) Create(req models.CreateAppointmentRequest) (*models.Appointment, error) {
	f.created = append(f.created, req)
	return &models.Appointment{
		ID:       "new-id",
		Date:     req.Date,
		Time:     req.Time,
		Duration: req.Duration,
		Status:   models.StatusAvailable,
	}, nil
}

func (f *fakeAdminStore) Delete(id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func adminContext(t *testing.T, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	c.Request = httptest.NewRequest(http.MethodPost, "/", &buf)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("user_id", "admin1")
	c.Set("role", models.RoleAdmin)
	return c, w
}

func TestCreateAppointmentValidation(t *testing.T) {
	futureDate := time.Now().UTC().Add(72 * time.Hour).Format("2006-01-02")

	tests := []struct {
		name     string
		body     map[string]interface{}
		wantCode int
	}{
		{"valid", map[string]interface{}{"date": futureDate, "time": "14:00", "duration": 60}, http.StatusCreated},
		{"valid default duration", map[string]interface{}{"date": futureDate, "time": "14:00"}, http.StatusCreated},
		{"missing time", map[string]interface{}{"date": futureDate}, http.StatusBadRequest},
		{"malformed date", map[string]interface{}{"date": "10/09/2026", "time": "14:00"}, http.StatusBadRequest},
		{"past date", map[string]interface{}{"date": "2020-01-01", "time": "14:00"}, http.StatusBadRequest},
		{"malformed time", map[string]interface{}{"date": futureDate, "time": "2pm"}, http.StatusBadRequest},
		{"before opening", map[string]interface{}{"date": futureDate, "time": "07:00"}, http.StatusBadRequest},
		{"after closing", map[string]interface{}{"date": futureDate, "time": "21:30"}, http.StatusBadRequest},
		{"too short", map[string]interface{}{"date": futureDate, "time": "14:00", "duration": 15}, http.StatusBadRequest},
		{"not a step of 15", map[string]interface{}{"date": futureDate, "time": "14:00", "duration": 40}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := &fakeAdminStore{}
			h := handlers.NewAdminHandler(st, testConfig())

			c, w := adminContext(t, tt.body)
			h.CreateAppointment(c)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusCreated {
				require.Len(t, st.created, 1)
			} else {
				assert.Empty(t, st.created)
			}
		})
	}
}

func TestCreateAppointmentDefaultsDuration(t *testing.T) {
	st := &fakeAdminStore{}
	h := handlers.NewAdminHandler(st, testConfig())

	futureDate := time.Now().UTC().Add(72 * time.Hour).Format("2006-01-02")
	c, w := adminContext(t, map[string]interface{}{"date": futureDate, "time": "10:30"})
	h.CreateAppointment(c)

	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, st.created, 1)
	assert.Equal(t, models.DefaultDurationMinutes, st.created[0].Duration)
}

func TestDeleteAppointment(t *testing.T) {
	st := &fakeAdminStore{}
	h := handlers.NewAdminHandler(st, testConfig())

	c, w := adminContext(t, nil)
	c.Params = gin.Params{{Key: "id", Value: "slot1"}}
	h.DeleteAppointment(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"slot1"}, st.deleted)
}

func TestGetAllAppointments(t *testing.T) {
	st := &fakeAdminStore{appointments: []models.Appointment{
		{ID: "a", Status: models.StatusAvailable},
		{ID: "b", Status: models.StatusBooked},
	}}
	h := handlers.NewAdminHandler(st, testConfig())

	c, w := adminContext(t, nil)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h.GetAllAppointments(c)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data.([]interface{}), 2)
}
