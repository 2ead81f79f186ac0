package store

import "errors"

var (
	// ErrNotFound means the referenced appointment does not exist.
	ErrNotFound = errors.New("appointment not found")
	// ErrAlreadyBooked means the slot was taken, possibly by a concurrent
	// booking that won the conditional update.
	ErrAlreadyBooked = errors.New("appointment is already booked")
	// ErrTooLate means the slot starts within the booking cutoff window.
	ErrTooLate = errors.New("appointment starts within the cutoff window")
)
