package store_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	supa "github.com/supabase-community/supabase-go"

	"github.com/Gilad-Weinberger/netta-nails/models"
	"github.com/Gilad-Weinberger/netta-nails/store"
)

// fakeBackend is a minimal in-memory PostgREST stand-in. It understands the
// eq/gte filters and the return=representation semantics the store relies on,
// and applies PATCH filters atomically under a mutex, like a single
// conditional update would.
type fakeBackend struct {
	mu     sync.Mutex
	tables map[string][]map[string]interface{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{tables: map[string][]map[string]interface{}{}}
}

func (f *fakeBackend) insert(table string, row map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tables[table] = append(f.tables[table], row)
}

func (f *fakeBackend) get(table, id string) map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.tables[table] {
		if fmt.Sprint(row["id"]) == id {
			return row
		}
	}
	return nil
}

func fieldValue(row map[string]interface{}, key string) string {
	if base, sub, ok := strings.Cut(key, "->>"); ok {
		nested, _ := row[base].(map[string]interface{})
		if nested == nil || nested[sub] == nil {
			return ""
		}
		return fmt.Sprint(nested[sub])
	}
	if row[key] == nil {
		return ""
	}
	return fmt.Sprint(row[key])
}

func rowMatches(row map[string]interface{}, query map[string][]string) bool {
	for key, values := range query {
		if key == "select" || key == "order" || key == "limit" || key == "offset" {
			continue
		}
		for _, v := range values {
			op, want, ok := strings.Cut(v, ".")
			if !ok {
				continue
			}
			got := fieldValue(row, key)
			switch op {
			case "eq":
				if got != want {
					return false
				}
			case "gte":
				if got < want {
					return false
				}
			}
		}
	}
	return true
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	table := path.Base(r.URL.Path)
	query := r.URL.Query()

	f.mu.Lock()
	defer f.mu.Unlock()

	rows := f.tables[table]
	var out []map[string]interface{}

	switch r.Method {
	case http.MethodGet:
		for _, row := range rows {
			if rowMatches(row, query) {
				out = append(out, row)
			}
		}
	case http.MethodPost:
		body, _ := io.ReadAll(r.Body)
		var row map[string]interface{}
		if err := json.Unmarshal(body, &row); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.tables[table] = append(rows, row)
		out = append(out, row)
	case http.MethodPatch:
		body, _ := io.ReadAll(r.Body)
		var updates map[string]interface{}
		if err := json.Unmarshal(body, &updates); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, row := range rows {
			if rowMatches(row, query) {
				for k, v := range updates {
					row[k] = v
				}
				out = append(out, row)
			}
		}
	case http.MethodDelete:
		var kept []map[string]interface{}
		for _, row := range rows {
			if rowMatches(row, query) {
				out = append(out, row)
			} else {
				kept = append(kept, row)
			}
		}
		f.tables[table] = kept
	default:
		http.Error(w, "unsupported", http.StatusMethodNotAllowed)
		return
	}

	// date asc, time asc: the order the store always asks for
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			ki := fieldValue(out[i], "date") + fieldValue(out[i], "time")
			kj := fieldValue(out[j], "date") + fieldValue(out[j], "time")
			if kj < ki {
				out[i], out[j] = out[j], out[i]
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if out == nil {
		out = []map[string]interface{}{}
	}
	_ = json.NewEncoder(w).Encode(out)
}

func newTestStore(t *testing.T) (*store.Store, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	client, err := supa.NewClient(srv.URL, "test-key", nil)
	require.NoError(t, err)

	return store.New(client, time.UTC, 24*time.Hour), backend
}

func slotAt(id string, from time.Duration, status string, by *models.BookedBy) map[string]interface{} {
	at := time.Now().UTC().Add(from)
	row := map[string]interface{}{
		"id":         id,
		"date":       at.Format("2006-01-02"),
		"time":       at.Format("15:04"),
		"duration":   90,
		"status":     status,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}
	if by != nil {
		row["booked_by"] = map[string]interface{}{
			"uid":   by.UID,
			"name":  by.Name,
			"phone": by.Phone,
		}
		row["booked_at"] = time.Now().UTC().Format(time.RFC3339)
	}
	return row
}

func TestListAvailableFiltersAndOrders(t *testing.T) {
	st, backend := newTestStore(t)

	backend.insert("appointments", slotAt("past", -48*time.Hour, models.StatusAvailable, nil))
	backend.insert("appointments", slotAt("taken", 72*time.Hour, models.StatusBooked, &models.BookedBy{UID: "u1", Name: "Dana", Phone: "+972501234567"}))
	backend.insert("appointments", slotAt("later", 96*time.Hour, models.StatusAvailable, nil))
	backend.insert("appointments", slotAt("sooner", 48*time.Hour, models.StatusAvailable, nil))

	appointments, err := st.ListAvailable()
	require.NoError(t, err)

	require.Len(t, appointments, 2)
	assert.Equal(t, "sooner", appointments[0].ID)
	assert.Equal(t, "later", appointments[1].ID)
	for _, a := range appointments {
		assert.Equal(t, models.StatusAvailable, a.Status)
		assert.Nil(t, a.BookedBy)
	}
}

func TestListForUser(t *testing.T) {
	st, backend := newTestStore(t)

	backend.insert("appointments", slotAt("mine", 48*time.Hour, models.StatusBooked, &models.BookedBy{UID: "u1", Name: "Dana", Phone: "+972501234567"}))
	backend.insert("appointments", slotAt("theirs", 72*time.Hour, models.StatusBooked, &models.BookedBy{UID: "u2", Name: "Noa", Phone: "+972509876543"}))
	backend.insert("appointments", slotAt("open", 96*time.Hour, models.StatusAvailable, nil))

	appointments, err := st.ListForUser("u1")
	require.NoError(t, err)

	require.Len(t, appointments, 1)
	assert.Equal(t, "mine", appointments[0].ID)
	require.NotNil(t, appointments[0].BookedBy)
	assert.Equal(t, "u1", appointments[0].BookedBy.UID)
}

func TestBookTransitionsSlot(t *testing.T) {
	st, backend := newTestStore(t)
	backend.insert("appointments", slotAt("slot1", 72*time.Hour, models.StatusAvailable, nil))

	by := models.BookedBy{UID: "u1", Name: "Dana", Phone: "+972501234567"}
	appointment, err := st.Book("slot1", by)
	require.NoError(t, err)

	assert.Equal(t, models.StatusBooked, appointment.Status)
	require.NotNil(t, appointment.BookedBy)
	assert.Equal(t, by, *appointment.BookedBy)
	assert.NotNil(t, appointment.BookedAt)

	// booking again must lose
	_, err = st.Book("slot1", models.BookedBy{UID: "u2", Name: "Noa", Phone: "+972509876543"})
	assert.ErrorIs(t, err, store.ErrAlreadyBooked)

	row := backend.get("appointments", "slot1")
	booked, _ := row["booked_by"].(map[string]interface{})
	require.NotNil(t, booked)
	assert.Equal(t, "u1", booked["uid"])
}

func TestBookNotFound(t *testing.T) {
	st, _ := newTestStore(t)
	_, err := st.Book("missing", models.BookedBy{UID: "u1"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestBookWithinCutoffFails(t *testing.T) {
	st, backend := newTestStore(t)
	backend.insert("appointments", slotAt("soon", 2*time.Hour, models.StatusAvailable, nil))

	_, err := st.Book("soon", models.BookedBy{UID: "u1", Name: "Dana", Phone: "+972501234567"})
	assert.ErrorIs(t, err, store.ErrTooLate)

	row := backend.get("appointments", "soon")
	assert.Equal(t, models.StatusAvailable, row["status"])
	assert.Nil(t, row["booked_by"])
}

func TestBookConcurrentSingleWinner(t *testing.T) {
	st, backend := newTestStore(t)
	backend.insert("appointments", slotAt("contested", 72*time.Hour, models.StatusAvailable, nil))

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, uid := range []string{"u1", "u2"} {
		wg.Add(1)
		go func(uid string) {
			defer wg.Done()
			_, err := st.Book("contested", models.BookedBy{UID: uid, Name: uid, Phone: "+972501234567"})
			results <- err
		}(uid)
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		switch {
		case err == nil:
			wins++
		default:
			assert.ErrorIs(t, err, store.ErrAlreadyBooked)
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)

	row := backend.get("appointments", "contested")
	assert.Equal(t, models.StatusBooked, row["status"])
	require.NotNil(t, row["booked_by"])
}

func TestCancelResetsSlot(t *testing.T) {
	st, backend := newTestStore(t)
	backend.insert("appointments", slotAt("slot1", 72*time.Hour, models.StatusBooked, &models.BookedBy{UID: "u1", Name: "Dana", Phone: "+972501234567"}))

	require.NoError(t, st.Cancel("slot1"))

	appointment, err := st.Get("slot1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAvailable, appointment.Status)
	assert.Nil(t, appointment.BookedBy)
	assert.Nil(t, appointment.BookedAt)

	// the slot is bookable again
	available, err := st.ListAvailable()
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "slot1", available[0].ID)
}

func TestCancelNotFound(t *testing.T) {
	st, _ := newTestStore(t)
	assert.ErrorIs(t, st.Cancel("missing"), store.ErrNotFound)
}

func TestBookingLifecycle(t *testing.T) {
	st, _ := newTestStore(t)

	at := time.Now().UTC().Add(72 * time.Hour)
	created, err := st.Create(models.CreateAppointmentRequest{Date: at.Format("2006-01-02"), Time: "14:00", Duration: 60})
	require.NoError(t, err)

	available, err := st.ListAvailable()
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, created.ID, available[0].ID)

	by := models.BookedBy{UID: "u1", Name: "Dana", Phone: "+972501234567"}
	_, err = st.Book(created.ID, by)
	require.NoError(t, err)

	available, err = st.ListAvailable()
	require.NoError(t, err)
	assert.Empty(t, available)

	mine, err := st.ListForUser("u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, created.ID, mine[0].ID)

	require.NoError(t, st.Cancel(created.ID))

	available, err = st.ListAvailable()
	require.NoError(t, err)
	require.Len(t, available, 1)

	mine, err = st.ListForUser("u1")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestCreateAndDelete(t *testing.T) {
	st, _ := newTestStore(t)

	date := time.Now().UTC().Add(96 * time.Hour).Format("2006-01-02")
	appointment, err := st.Create(models.CreateAppointmentRequest{Date: date, Time: "14:00", Duration: 60})
	require.NoError(t, err)

	assert.NotEmpty(t, appointment.ID)
	assert.Equal(t, models.StatusAvailable, appointment.Status)
	assert.Equal(t, date, appointment.Date)
	assert.Equal(t, "14:00", appointment.Time)
	assert.Equal(t, 60, appointment.Duration)

	require.NoError(t, st.Delete(appointment.ID))
	_, err = st.Get(appointment.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// deleting again is a no-op
	require.NoError(t, st.Delete(appointment.ID))
}
