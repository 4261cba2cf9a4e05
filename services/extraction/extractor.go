// Package extraction turns free-text chat messages into validated
// booking-field candidates. It is pure: no session state is touched here.
package extraction

import (
	"sort"
	"time"

	"medibook/models"
)

// Recognizer finds and validates one booking field in a message.
type Recognizer struct {
	Field string

	// Match scans the message for a candidate value. missing reports
	// whether the field is still unset in the session, letting loose
	// patterns stay quiet once the field is filled.
	Match func(text string, missing bool) (string, bool)

	// Validate canonicalizes the candidate or rejects it.
	Validate func(raw string, now time.Time) (string, bool)
}

// Result is the outcome of one extraction pass.
type Result struct {
	// Candidates maps field name to a validated, canonical value.
	Candidates map[string]string
	// Clarify lists fields that were mentioned but failed validation,
	// so the reply can ask the user to repeat them.
	Clarify []string
}

// Extractor applies a fixed table of field recognizers to a message.
type Extractor struct {
	recognizers []Recognizer
	now         func() time.Time
}

// New builds an extractor with the default recognizer table.
func New() *Extractor {
	return &Extractor{
		recognizers: defaultRecognizers(),
		now:         time.Now,
	}
}

// WithClock overrides the extractor's clock, for date validation in tests.
func (e *Extractor) WithClock(now func() time.Time) *Extractor {
	e.now = now
	return e
}

// Fields returns the field names the extractor can recognize.
func (e *Extractor) Fields() []string {
	fields := make([]string, 0, len(e.recognizers))
	for _, r := range e.recognizers {
		fields = append(fields, r.Field)
	}
	return fields
}

// Valid reports whether value is an acceptable canonical value for the
// named field. Unknown fields are never valid.
func (e *Extractor) Valid(field, value string) bool {
	for _, r := range e.recognizers {
		if r.Field == field {
			_, ok := r.Validate(value, e.now())
			return ok
		}
	}
	return false
}

// Knows reports whether a recognizer exists for the named field.
func (e *Extractor) Knows(field string) bool {
	for _, r := range e.recognizers {
		if r.Field == field {
			return true
		}
	}
	return false
}

// Extract scans the message with every recognizer. A message may yield
// zero, one or several candidates. Unparseable text never errors; it
// simply yields nothing for that field.
func (e *Extractor) Extract(message string, missing []string) Result {
	missingSet := make(map[string]bool, len(missing))
	for _, f := range missing {
		missingSet[f] = true
	}

	res := Result{Candidates: make(map[string]string)}
	now := e.now()

	for _, r := range e.recognizers {
		raw, ok := r.Match(message, missingSet[r.Field])
		if !ok {
			continue
		}
		value, valid := r.Validate(raw, now)
		if !valid {
			res.Clarify = append(res.Clarify, r.Field)
			continue
		}
		res.Candidates[r.Field] = value
	}

	sort.Strings(res.Clarify)
	return res
}

func defaultRecognizers() []Recognizer {
	return []Recognizer{
		{Field: models.FieldName, Match: matchName, Validate: validateName},
		{Field: models.FieldPhone, Match: matchPhone, Validate: validatePhone},
		{Field: models.FieldEmail, Match: matchEmail, Validate: validateEmail},
		{Field: models.FieldPreferredDate, Match: matchDate, Validate: validateDate},
		{Field: models.FieldPreferredTime, Match: matchTime, Validate: validateTime},
		{Field: models.FieldReason, Match: matchReason, Validate: validateReason},
	}
}
