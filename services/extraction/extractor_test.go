package extraction

import (
	"testing"
	"time"

	"medibook/models"
)

// Tuesday, so "Tuesday" in a message must resolve a full week ahead.
var testNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func testExtractor() *Extractor {
	return New().WithClock(func() time.Time { return testNow })
}

func allFields() []string {
	return append([]string(nil), models.KnownFields...)
}

func TestExtractName(t *testing.T) {
	e := testExtractor()

	res := e.Extract("My name is Alex", allFields())
	if got := res.Candidates[models.FieldName]; got != "Alex" {
		t.Fatalf("expected name Alex, got %q", got)
	}

	res = e.Extract("my name is dr. jane o'brien", allFields())
	if got := res.Candidates[models.FieldName]; got != "Dr. Jane O'brien" {
		t.Fatalf("expected canonicalized name, got %q", got)
	}
}

func TestExtractNameIgnoresNonNames(t *testing.T) {
	e := testExtractor()

	// "I am looking" must not become a name candidate.
	res := e.Extract("I am looking for an appointment", allFields())
	if _, ok := res.Candidates[models.FieldName]; ok {
		t.Fatalf("expected no name candidate, got %q", res.Candidates[models.FieldName])
	}

	// Loose patterns stay quiet once the name is already set.
	res = e.Extract("I'm Bob", []string{models.FieldPhone})
	if _, ok := res.Candidates[models.FieldName]; ok {
		t.Fatal("expected loose name pattern to be skipped when name is not missing")
	}
}

func TestExtractPhone(t *testing.T) {
	e := testExtractor()

	res := e.Extract("call me at 555-123-4567", allFields())
	if got := res.Candidates[models.FieldPhone]; got != "555-123-4567" {
		t.Fatalf("expected phone 555-123-4567, got %q", got)
	}

	res = e.Extract("you can reach me on +1 (212) 555 0147", allFields())
	if _, ok := res.Candidates[models.FieldPhone]; !ok {
		t.Fatal("expected a phone candidate for formatted number")
	}
}

func TestExtractPhoneInvalidYieldsClarify(t *testing.T) {
	e := testExtractor()

	res := e.Extract("call me at abc", allFields())
	if _, ok := res.Candidates[models.FieldPhone]; ok {
		t.Fatalf("expected no phone candidate, got %q", res.Candidates[models.FieldPhone])
	}
	if len(res.Clarify) != 1 || res.Clarify[0] != models.FieldPhone {
		t.Fatalf("expected clarify [phone], got %v", res.Clarify)
	}
}

func TestExtractPhoneDoesNotEatDates(t *testing.T) {
	e := testExtractor()

	res := e.Extract("how about 2026-09-08", allFields())
	if _, ok := res.Candidates[models.FieldPhone]; ok {
		t.Fatal("ISO date must not be read as a phone number")
	}
	if got := res.Candidates[models.FieldPreferredDate]; got != "2026-09-08" {
		t.Fatalf("expected date candidate, got %q", got)
	}
}

func TestExtractEmail(t *testing.T) {
	e := testExtractor()

	res := e.Extract("my email is Alex.Smith@Example.COM.", allFields())
	if got := res.Candidates[models.FieldEmail]; got != "alex.smith@example.com" {
		t.Fatalf("expected lowered email, got %q", got)
	}

	res = e.Extract("my email is not-an-email", allFields())
	if _, ok := res.Candidates[models.FieldEmail]; ok {
		t.Fatal("expected invalid email to be rejected")
	}
	if len(res.Clarify) == 0 || res.Clarify[0] != models.FieldEmail {
		t.Fatalf("expected clarify [email], got %v", res.Clarify)
	}
}

func TestExtractDate(t *testing.T) {
	e := testExtractor()

	cases := map[string]string{
		"can I come on 2026-10-01":  "2026-10-01",
		"how about 15/10/2026":      "2026-10-15",
		"tomorrow would be great":   "2026-09-02",
		"today if possible":         "2026-09-01",
		"I'd like next Friday":      "2026-09-04",
		"Tuesday works for me":      "2026-09-08",
	}
	for msg, want := range cases {
		res := e.Extract(msg, allFields())
		if got := res.Candidates[models.FieldPreferredDate]; got != want {
			t.Errorf("%q: expected date %s, got %q", msg, want, got)
		}
	}
}

func TestExtractDateRejectsPast(t *testing.T) {
	e := testExtractor()

	res := e.Extract("it was on 2020-01-01", allFields())
	if _, ok := res.Candidates[models.FieldPreferredDate]; ok {
		t.Fatal("expected past date to be rejected")
	}
	if len(res.Clarify) == 0 || res.Clarify[0] != models.FieldPreferredDate {
		t.Fatalf("expected clarify [preferred_date], got %v", res.Clarify)
	}
}

func TestExtractTime(t *testing.T) {
	e := testExtractor()

	cases := map[string]string{
		"at 3pm please":      "15:00",
		"around 9:30 am":     "09:30",
		"say 14:45":          "14:45",
		"12am works":         "00:00",
		"noon, so 12pm":      "12:00",
	}
	for msg, want := range cases {
		res := e.Extract(msg, allFields())
		if got := res.Candidates[models.FieldPreferredTime]; got != want {
			t.Errorf("%q: expected time %s, got %q", msg, want, got)
		}
	}
}

func TestExtractReason(t *testing.T) {
	e := testExtractor()

	res := e.Extract("I'd like to come in for a checkup on Tuesday", allFields())
	if got := res.Candidates[models.FieldReason]; got != "checkup" {
		t.Fatalf("expected reason checkup, got %q", got)
	}

	res = e.Extract("reason is severe back pain", allFields())
	if got := res.Candidates[models.FieldReason]; got != "severe back pain" {
		t.Fatalf("expected reason 'severe back pain', got %q", got)
	}

	// The loose pattern is biased off once reason is filled.
	res = e.Extract("thanks for everything", []string{models.FieldPhone})
	if _, ok := res.Candidates[models.FieldReason]; ok {
		t.Fatalf("expected no reason candidate, got %q", res.Candidates[models.FieldReason])
	}
}

func TestExtractMultipleFieldsInOneTurn(t *testing.T) {
	e := testExtractor()

	res := e.Extract("I'd like Tuesday at 3pm for a checkup", allFields())
	if got := res.Candidates[models.FieldPreferredDate]; got != "2026-09-08" {
		t.Errorf("expected date 2026-09-08, got %q", got)
	}
	if got := res.Candidates[models.FieldPreferredTime]; got != "15:00" {
		t.Errorf("expected time 15:00, got %q", got)
	}
	if got := res.Candidates[models.FieldReason]; got != "checkup" {
		t.Errorf("expected reason checkup, got %q", got)
	}
	if len(res.Clarify) != 0 {
		t.Errorf("expected nothing to clarify, got %v", res.Clarify)
	}
}

func TestValidAcceptsCanonicalValues(t *testing.T) {
	e := testExtractor()

	valid := map[string]string{
		models.FieldName:          "Alex Smith",
		models.FieldPhone:         "555-123-4567",
		models.FieldEmail:         "alex@example.com",
		models.FieldPreferredDate: "2026-09-08",
		models.FieldPreferredTime: "15:00",
		models.FieldReason:        "checkup",
	}
	for field, value := range valid {
		if !e.Valid(field, value) {
			t.Errorf("Valid(%s, %q) = false, want true", field, value)
		}
	}

	invalid := map[string]string{
		models.FieldName:          "4l3x",
		models.FieldPhone:         "abc",
		models.FieldEmail:         "not-an-email",
		models.FieldPreferredDate: "2020-01-01",
		models.FieldPreferredTime: "25:99",
		models.FieldReason:        "x",
	}
	for field, value := range invalid {
		if e.Valid(field, value) {
			t.Errorf("Valid(%s, %q) = true, want false", field, value)
		}
	}

	if e.Valid("favourite_colour", "blue") {
		t.Error("unknown fields must never validate")
	}
}

func TestExtractNeverErrorsOnGarbage(t *testing.T) {
	e := testExtractor()

	for _, msg := range []string{"", "??!!", "ééé ms 😀", "<script>alert(1)</script>"} {
		res := e.Extract(msg, allFields())
		if res.Candidates == nil {
			t.Fatalf("candidates map must never be nil for %q", msg)
		}
	}
}
