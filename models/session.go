package models

import "time"

// BookingState tracks how far a session has progressed towards a
// confirmed appointment.
type BookingState string

const (
	StateCollecting BookingState = "COLLECTING"
	StateReady      BookingState = "READY"
	StateConfirmed  BookingState = "CONFIRMED"
)

// Booking field names. The required subset is configuration; every name
// used in config must appear here.
const (
	FieldName          = "name"
	FieldPhone         = "phone"
	FieldPreferredDate = "preferred_date"
	FieldPreferredTime = "preferred_time"
	FieldReason        = "reason"
	FieldEmail         = "email"
)

// KnownFields lists every booking field the system understands.
var KnownFields = []string{
	FieldName,
	FieldPhone,
	FieldPreferredDate,
	FieldPreferredTime,
	FieldReason,
	FieldEmail,
}

// BookingRecord is the partial set of appointment fields collected from
// conversation. An empty string means the field is unset.
type BookingRecord struct {
	Name          string `json:"name,omitempty"`
	Phone         string `json:"phone,omitempty"`
	PreferredDate string `json:"preferred_date,omitempty"`
	PreferredTime string `json:"preferred_time,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Email         string `json:"email,omitempty"`
}

// Get returns the value of a field by name, empty if unset or unknown.
func (r *BookingRecord) Get(field string) string {
	switch field {
	case FieldName:
		return r.Name
	case FieldPhone:
		return r.Phone
	case FieldPreferredDate:
		return r.PreferredDate
	case FieldPreferredTime:
		return r.PreferredTime
	case FieldReason:
		return r.Reason
	case FieldEmail:
		return r.Email
	}
	return ""
}

// Set stores a value for a field by name. Returns false for unknown fields.
func (r *BookingRecord) Set(field, value string) bool {
	switch field {
	case FieldName:
		r.Name = value
	case FieldPhone:
		r.Phone = value
	case FieldPreferredDate:
		r.PreferredDate = value
	case FieldPreferredTime:
		r.PreferredTime = value
	case FieldReason:
		r.Reason = value
	case FieldEmail:
		r.Email = value
	default:
		return false
	}
	return true
}

// Missing returns the subset of required fields that are still unset.
func (r *BookingRecord) Missing(required []string) []string {
	var missing []string
	for _, f := range required {
		if r.Get(f) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// IsComplete reports whether every required field holds a value.
func (r *BookingRecord) IsComplete(required []string) bool {
	return len(r.Missing(required)) == 0
}

// Turn is a single conversation message.
type Turn struct {
	Role string    `json:"role"` // "user" or "assistant"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Session holds per-user conversational and booking state, keyed by an
// opaque token minted at the web boundary.
type Session struct {
	Token     string        `json:"token"`
	History   []Turn        `json:"history"`
	Record    BookingRecord `json:"record"`
	State     BookingState  `json:"state"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// SessionSnapshot is the read-only view returned by GET /session.
type SessionSnapshot struct {
	Token     string        `json:"token"`
	Record    BookingRecord `json:"record"`
	State     BookingState  `json:"state"`
	Missing   []string      `json:"missing,omitempty"`
	TurnCount int           `json:"turnCount"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
