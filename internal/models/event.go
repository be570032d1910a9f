package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a tenant-scoped event that visitors register for.
type Event struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"ownerId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"startsAt"`
	EndsAt      *time.Time `json:"endsAt,omitempty"`
	CreatedBy   uuid.UUID  `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// FormField is one field in an admin-built registration form.
type FormField struct {
	ID       string   `json:"id"`       // key for storing the response, e.g. "company"
	Label    string   `json:"label"`    // display label, e.g. "Company name"
	Type     string   `json:"type"`     // "text", "email", "number", "textarea", "select"
	Required bool     `json:"required"`
	Options  []string `json:"options,omitempty"` // for "select"
}

// Form is a registration form template attached to an event.
type Form struct {
	ID        uuid.UUID   `json:"id"`
	OwnerID   uuid.UUID   `json:"ownerId"`
	EventID   uuid.UUID   `json:"eventId"`
	Title     string      `json:"title"`
	Fields    []FormField `json:"fields"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// Badge is a tenant-scoped badge template referencing an event. ImageKey is
// the S3 object key of the artwork; ImageURL its s3:// locator.
type Badge struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"ownerId"`
	EventID   uuid.UUID `json:"eventId"`
	BadgeName string    `json:"badgeName"`
	ImageKey  string    `json:"imageKey,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MessageLog records one outbound email to a visitor.
type MessageLog struct {
	ID             uuid.UUID  `json:"id"`
	OwnerID        uuid.UUID  `json:"ownerId"`
	EventID        *uuid.UUID `json:"eventId,omitempty"`
	VisitorID      *uuid.UUID `json:"visitorId,omitempty"`
	MessageType    string     `json:"messageType"`
	RecipientEmail string     `json:"recipientEmail"`
	Subject        string     `json:"subject,omitempty"`
	Status         string     `json:"status"` // queued | sent | failed
	SentAt         *time.Time `json:"sentAt,omitempty"`
	ErrorMessage   string     `json:"errorMessage,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}
