package services

// SendResult reports the outcome of one delivery attempt. Failures are
// values, never panics: callers fold them into a degraded status message.
type SendResult struct {
	Success   bool
	MessageID string
	Err       error
	// NotOptedIn marks the provider signal that the recipient cannot
	// receive messages, so the caller can show a more specific reason.
	NotOptedIn bool
}

// Notifier delivers a human-readable appointment message to a phone number.
// It never mutates appointment state.
type Notifier interface {
	Send(phone, name, date, timeOfDay string, isCancellation bool) SendResult
}
