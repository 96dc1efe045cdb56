package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Webhook is a subscription to appointment lifecycle notifications.
type Webhook struct {
	Base
	Name        string `db:"name" json:"name"`
	EndpointURL string `db:"endpoint_url" json:"endpoint_url"`
	Active      bool   `db:"active" json:"active"`
}

type CreateWebhookRequest struct {
	Name        string `json:"name" binding:"required,notblank,max=50"`
	EndpointURL string `json:"endpoint_url" binding:"required,url,max=280"`
	Active      bool   `json:"active"`
}

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Appointment event types carried through the outbox.
const (
	EventAppointmentCreated = "appointment.created"
	EventAppointmentUpdated = "appointment.updated"
	EventAppointmentDeleted = "appointment.deleted"
)

// OutboxEvent is a pending notification recorded alongside the appointment
// change it describes.
type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processed_at,omitempty"`
}

// WebhookNotification is the body POSTed to each active subscription.
type WebhookNotification struct {
	Data          json.RawMessage `json:"data"`
	Type          string          `json:"type"`
	Timestamp     time.Time       `json:"timestamp"`
	Authorization string          `json:"authorization"`
}
