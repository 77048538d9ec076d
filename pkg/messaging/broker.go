package messaging

import (
	"context"
	"time"
)

// ChannelAppointments carries calendar invalidation events
const ChannelAppointments = "appointments"

// Event types published on ChannelAppointments
const (
	EventAppointmentCreated       = "appointment.created"
	EventAppointmentUpdated       = "appointment.updated"
	EventAppointmentDeleted       = "appointment.deleted"
	EventAppointmentStatusChanged = "appointment.status_changed"
	EventAppointmentRescheduled   = "appointment.rescheduled"
	EventBookingRequested         = "booking.requested"
)

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Event is the payload published on ChannelAppointments
type Event struct {
	Type          string                 `json:"type"`
	AppointmentID string                 `json:"appointment_id,omitempty"`
	Actor         string                 `json:"actor,omitempty"`
	Reload        bool                   `json:"reload"`
	OccurredAt    time.Time              `json:"occurred_at"`
	Data          map[string]interface{} `json:"data,omitempty"`
}
