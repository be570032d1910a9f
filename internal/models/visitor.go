package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// EntryType classifies how a visit was recorded. Values are canonical: the
// historical synonym soup ("Manual", "QR Code", "qrcode", ...) is collapsed by
// NormalizeEntryType before anything is written.
type EntryType string

const (
	EntryManual EntryType = "manual"
	EntryQR     EntryType = "qr"
)

// VisitorStatus is the lifecycle state of a visitor record.
type VisitorStatus string

const (
	StatusRegistration VisitorStatus = "Registration"
	StatusVisited      VisitorStatus = "Visited"
)

// entryTypeSynonyms maps every historical spelling to its canonical value.
// Keys are lowercased before lookup.
var entryTypeSynonyms = map[string]EntryType{
	"manual":  EntryManual,
	"qr":      EntryQR,
	"qr code": EntryQR,
	"qrcode":  EntryQR,
}

// NormalizeEntryType resolves an entry-type string (any historical casing or
// synonym) to its canonical value. ok is false for unrecognized values such
// as "Email"; those are never written as an entry type.
func NormalizeEntryType(s string) (EntryType, bool) {
	t, ok := entryTypeSynonyms[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

// Visitor is a tenant-scoped visitor record: created at registration or
// import, mutated on check-in.
type Visitor struct {
	ID            uuid.UUID       `json:"id"`
	OwnerID       uuid.UUID       `json:"ownerId"`
	EventID       *uuid.UUID      `json:"eventId,omitempty"`
	FullName      string          `json:"fullName"`
	Email         string          `json:"email"`
	PhoneNumber   string          `json:"phoneNumber"`
	Company       string          `json:"company"`
	Location      string          `json:"location"`
	Designation   string          `json:"designation"`
	Status        VisitorStatus   `json:"status"`
	EntryType     EntryType       `json:"entryType,omitempty"`
	CheckedInAt   *time.Time      `json:"checkedInAt,omitempty"`
	FormResponses json.RawMessage `json:"formResponses,omitempty"`
	Source        string          `json:"source"` // registration | import
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// DatasetRecord is a reusable visitor profile in the tenant's dataset,
// populated by hand or by bulk import.
type DatasetRecord struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	FullName    string    `json:"fullName"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phoneNumber"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Designation string    `json:"designation"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
