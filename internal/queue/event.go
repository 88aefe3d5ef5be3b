// Package queue defines message payloads exchanged over the message broker.
package queue

// RegistrationQueueName is the durable queue carrying confirmed registrations.
const RegistrationQueueName = "registration.confirmed"

// RegistrationConfirmedEvent is published when a performance slot has been
// claimed.  It carries everything the confirmation mailer needs so that
// consumers never have to read the schedule themselves.
type RegistrationConfirmedEvent struct {
	EventID     string `json:"event_id"`
	Date        string `json:"date"`
	Label       string `json:"label,omitempty"`
	Line        int    `json:"line"`
	Name        string `json:"name"`
	Email       string `json:"email,omitempty"`
	Instrument  string `json:"instrument"`
	Piece       string `json:"piece"`
	Duration    string `json:"duration"`
	Remarks     string `json:"remarks,omitempty"`
	ConfirmedAt string `json:"confirmed_at"`
}
