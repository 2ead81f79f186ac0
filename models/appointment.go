package models

import (
	"fmt"
	"time"
)

const (
	StatusAvailable = "available"
	StatusBooked    = "booked"
)

// BookedBy is a denormalized snapshot of the booking user. Deleting the user
// account does not cascade into appointments.
type BookedBy struct {
	UID   string `json:"uid"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// Appointment is one bookable time slot. BookedBy is non-nil exactly when
// Status is "booked"; every write site in the store keeps the two in step.
type Appointment struct {
	ID        string     `json:"id" db:"id"`
	Date      string     `json:"date" db:"date"`
	Time      string     `json:"time" db:"time"`
	Duration  int        `json:"duration" db:"duration"`
	Status    string     `json:"status" db:"status"`
	BookedBy  *BookedBy  `json:"booked_by,omitempty" db:"booked_by"`
	BookedAt  *time.Time `json:"booked_at,omitempty" db:"booked_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

// StartsAt parses the slot's civil date and time in the salon's timezone.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", a.Date+" "+a.Time, loc)
}

const DefaultDurationMinutes = 90

type CreateAppointmentRequest struct {
	Date     string `json:"date" binding:"required"`
	Time     string `json:"time" binding:"required"`
	Duration int    `json:"duration"`
}

// Validate checks the admin slot form rules: a real future-or-today date,
// a time inside the operating window, and a duration of at least 30 minutes
// in 15-minute steps (defaulting to 90). The store itself never validates.
func (r *CreateAppointmentRequest) Validate(loc *time.Location, opening, closing string) error {
	d, err := time.ParseInLocation("2006-01-02", r.Date, loc)
	if err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD")
	}
	today := time.Now().In(loc).Format("2006-01-02")
	if d.Format("2006-01-02") < today {
		return fmt.Errorf("date must not be in the past")
	}

	t, err := time.Parse("15:04", r.Time)
	if err != nil || t.Format("15:04") != r.Time {
		return fmt.Errorf("time must be HH:MM")
	}
	if r.Time < opening || r.Time > closing {
		return fmt.Errorf("time must be between %s and %s", opening, closing)
	}

	if r.Duration == 0 {
		r.Duration = DefaultDurationMinutes
	}
	if r.Duration < 30 {
		return fmt.Errorf("duration must be at least 30 minutes")
	}
	if r.Duration%15 != 0 {
		return fmt.Errorf("duration must be a multiple of 15 minutes")
	}
	return nil
}
