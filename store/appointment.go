package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"

	"github.com/Gilad-Weinberger/netta-nails/models"
)

// Store is the sole authority over appointment and user records. It talks to
// a Supabase (PostgREST) collection and enforces the booking invariant with a
// conditional update, never with read-then-write.
type Store struct {
	supabase *supa.Client
	loc      *time.Location
	cutoff   time.Duration
}

func New(supabase *supa.Client, loc *time.Location, cutoff time.Duration) *Store {
	return &Store{supabase: supabase, loc: loc, cutoff: cutoff}
}

func (s *Store) today() string {
	return time.Now().In(s.loc).Format("2006-01-02")
}

var orderAsc = &postgrest.OrderOpts{Ascending: true}

// ListAvailable returns upcoming open slots ordered by date then time.
// HH:MM is zero-padded, so lexical order on the pair is chronological.
func (s *Store) ListAvailable() ([]models.Appointment, error) {
	data, _, err := s.supabase.From("appointments").
		Select("*", "", false).
		Eq("status", models.StatusAvailable).
		Gte("date", s.today()).
		Order("date", orderAsc).
		Order("time", orderAsc).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list available: %w", err)
	}
	return decodeAppointments(data)
}

// ListAll returns every upcoming slot regardless of status. The admin role
// check is the workflow layer's job, not the store's.
func (s *Store) ListAll() ([]models.Appointment, error) {
	data, _, err := s.supabase.From("appointments").
		Select("*", "", false).
		Gte("date", s.today()).
		Order("date", orderAsc).
		Order("time", orderAsc).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list all: %w", err)
	}
	return decodeAppointments(data)
}

// ListForUser returns the upcoming slots booked by the given user.
func (s *Store) ListForUser(uid string) ([]models.Appointment, error) {
	data, _, err := s.supabase.From("appointments").
		Select("*", "", false).
		Eq("booked_by->>uid", uid).
		Gte("date", s.today()).
		Order("date", orderAsc).
		Order("time", orderAsc).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list for user: %w", err)
	}
	return decodeAppointments(data)
}

func (s *Store) Get(id string) (*models.Appointment, error) {
	data, _, err := s.supabase.From("appointments").
		Select("*", "", false).
		Eq("id", id).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	appts, err := decodeAppointments(data)
	if err != nil {
		return nil, err
	}
	if len(appts) == 0 {
		return nil, ErrNotFound
	}
	return &appts[0], nil
}

// Book transitions an available slot to booked for the given user. The status
// check and the write happen as one conditional update keyed on the current
// status, so of two concurrent callers at most one can succeed; the loser
// gets ErrAlreadyBooked.
func (s *Store) Book(id string, by models.BookedBy) (*models.Appointment, error) {
	appt, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if appt.Status != models.StatusAvailable {
		return nil, ErrAlreadyBooked
	}

	startsAt, err := appt.StartsAt(s.loc)
	if err == nil && time.Until(startsAt) < s.cutoff {
		return nil, ErrTooLate
	}

	now := time.Now().UTC()
	data, _, err := s.supabase.From("appointments").
		Update(map[string]interface{}{
			"status":    models.StatusBooked,
			"booked_by": by,
			"booked_at": now.Format(time.RFC3339),
		}, "", "").
		Eq("id", id).
		Eq("status", models.StatusAvailable).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("book appointment: %w", err)
	}

	appts, err := decodeAppointments(data)
	if err != nil {
		return nil, err
	}
	if len(appts) == 0 {
		// The conditional update matched nothing: a concurrent booking won.
		return nil, ErrAlreadyBooked
	}
	return &appts[0], nil
}

// Cancel resets a booked slot to bookable state, clearing the booking
// snapshot. Cancelled slots are reset, never deleted. The update is
// conditional on the slot still being booked, so a concurrent cancel loses
// cleanly. Cutoff re-validation is the workflow layer's responsibility.
func (s *Store) Cancel(id string) error {
	data, _, err := s.supabase.From("appointments").
		Update(map[string]interface{}{
			"status":    models.StatusAvailable,
			"booked_by": nil,
			"booked_at": nil,
		}, "", "").
		Eq("id", id).
		Eq("status", models.StatusBooked).
		Execute()
	if err != nil {
		return fmt.Errorf("cancel appointment: %w", err)
	}
	appts, err := decodeAppointments(data)
	if err != nil {
		return err
	}
	if len(appts) == 0 {
		return ErrNotFound
	}
	return nil
}

// Create inserts a new open slot. Input validation happens at the request
// boundary; the store only stamps id, status and created_at.
func (s *Store) Create(req models.CreateAppointmentRequest) (*models.Appointment, error) {
	row := map[string]interface{}{
		"id":         uuid.New().String(),
		"date":       req.Date,
		"time":       req.Time,
		"duration":   req.Duration,
		"status":     models.StatusAvailable,
		"created_at": time.Now().UTC().Format(time.RFC3339),
	}

	data, _, err := s.supabase.From("appointments").
		Insert(row, false, "", "", "").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("create appointment: %w", err)
	}

	appts, err := decodeAppointments(data)
	if err != nil {
		return nil, err
	}
	if len(appts) == 0 {
		return nil, fmt.Errorf("create appointment: no row returned")
	}
	return &appts[0], nil
}

// Delete removes a slot. Deleting an id that does not exist is a no-op.
func (s *Store) Delete(id string) error {
	_, _, err := s.supabase.From("appointments").
		Delete("", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	return nil
}

func decodeAppointments(data []byte) ([]models.Appointment, error) {
	var appts []models.Appointment
	if err := json.Unmarshal(data, &appts); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	return appts, nil
}
