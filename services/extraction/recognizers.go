package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var fieldValidator = validator.New()

// --- name ---

var (
	nameStrongRe = regexp.MustCompile(`(?i)\bmy name is\s+([A-Za-z][A-Za-z .'-]*)`)
	nameLooseRe  = regexp.MustCompile(`(?i)\b(?:i am|i'm|this is|call me)\s+([A-Za-z][A-Za-z .'-]*)`)

	// Words that follow "I am ..." without introducing a name.
	nameStoplist = map[string]bool{
		"at": true, "looking": true, "trying": true, "calling": true,
		"going": true, "interested": true, "wondering": true, "feeling": true,
		"here": true, "not": true, "sorry": true, "fine": true, "ok": true,
		"okay": true, "sick": true, "unwell": true, "available": true,
	}
)

func matchName(text string, missing bool) (string, bool) {
	if m := nameStrongRe.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if !missing {
		return "", false
	}
	if m := nameLooseRe.FindStringSubmatch(text); m != nil {
		first := strings.ToLower(strings.Fields(m[1])[0])
		if nameStoplist[first] {
			return "", false
		}
		return m[1], true
	}
	return "", false
}

func validateName(raw string, _ time.Time) (string, bool) {
	words := strings.Fields(strings.Trim(raw, " .,!?"))
	if len(words) == 0 || len(words) > 4 {
		return "", false
	}
	for i, w := range words {
		if strings.ContainsAny(w, "0123456789@") {
			return "", false
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	name := strings.Join(words, " ")
	if len(name) < 2 || len(name) > 60 {
		return "", false
	}
	return name, true
}

// --- phone ---

var (
	phoneValueRe  = regexp.MustCompile(`\+?\d[\d\s().-]{5,}\d`)
	phoneIntentRe = regexp.MustCompile(`(?i)\b(?:call me (?:at|on)|my (?:phone|cell|mobile)(?: number)? is|phone number is|reach me at)\s+([^\s,!?]+)`)
	dateShapedRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$|^\d{1,2}/\d{1,2}/\d{2,4}$`)
)

func matchPhone(text string, _ bool) (string, bool) {
	if m := phoneValueRe.FindString(text); m != "" {
		candidate := strings.TrimSpace(m)
		// A bare ISO/slash date is not a phone number.
		if !dateShapedRe.MatchString(candidate) {
			return candidate, true
		}
	}
	if m := phoneIntentRe.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

func validatePhone(raw string, _ time.Time) (string, bool) {
	digits := 0
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.' || r == '+':
		default:
			return "", false
		}
	}
	if digits < 7 || digits > 15 {
		return "", false
	}
	return strings.TrimSpace(raw), true
}

// --- email ---

var (
	emailValueRe  = regexp.MustCompile(`[^\s@]+@[^\s@]+\.[A-Za-z0-9]+`)
	emailIntentRe = regexp.MustCompile(`(?i)\bmy email(?: address)? is\s+(\S+)`)
)

func matchEmail(text string, _ bool) (string, bool) {
	if m := emailValueRe.FindString(text); m != "" {
		return strings.Trim(m, ".,"), true
	}
	if m := emailIntentRe.FindStringSubmatch(text); m != nil {
		return strings.Trim(m[1], ".,"), true
	}
	return "", false
}

func validateEmail(raw string, _ time.Time) (string, bool) {
	if err := fieldValidator.Var(raw, "email"); err != nil {
		return "", false
	}
	return strings.ToLower(raw), true
}

// --- preferred date ---

var (
	isoDateRe   = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	slashDateRe = regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`)
	dayWordRe   = regexp.MustCompile(`(?i)\b(?:next\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday|today|tomorrow)\b`)
)

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
}

func matchDate(text string, _ bool) (string, bool) {
	if m := isoDateRe.FindString(text); m != "" {
		return m, true
	}
	if m := slashDateRe.FindString(text); m != "" {
		return m, true
	}
	if m := dayWordRe.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1]), true
	}
	return "", false
}

func validateDate(raw string, now time.Time) (string, bool) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var day time.Time
	switch {
	case raw == "today":
		day = today
	case raw == "tomorrow":
		day = today.AddDate(0, 0, 1)
	case weekdaysContain(raw):
		// Resolve to the next occurrence of that weekday, always in
		// the future.
		offset := (int(weekdays[raw]) - int(today.Weekday()) + 7) % 7
		if offset == 0 {
			offset = 7
		}
		day = today.AddDate(0, 0, offset)
	case isoDateRe.MatchString(raw):
		parsed, err := time.ParseInLocation("2006-01-02", raw, now.Location())
		if err != nil {
			return "", false
		}
		day = parsed
	case slashDateRe.MatchString(raw):
		parsed, err := time.ParseInLocation("2/1/2006", raw, now.Location())
		if err != nil {
			// Tolerate month-first input.
			parsed, err = time.ParseInLocation("1/2/2006", raw, now.Location())
			if err != nil {
				return "", false
			}
		}
		day = parsed
	default:
		return "", false
	}

	if day.Before(today) {
		return "", false
	}
	return day.Format("2006-01-02"), true
}

func weekdaysContain(raw string) bool {
	_, ok := weekdays[raw]
	return ok
}

// --- preferred time ---

var (
	clockTimeRe = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(am|pm)?\b`)
	hourOnlyRe  = regexp.MustCompile(`(?i)\b(\d{1,2})\s*(am|pm)\b`)
)

func matchTime(text string, _ bool) (string, bool) {
	if m := clockTimeRe.FindString(text); m != "" {
		return strings.ToLower(strings.TrimSpace(m)), true
	}
	if m := hourOnlyRe.FindString(text); m != "" {
		return strings.ToLower(strings.TrimSpace(m)), true
	}
	return "", false
}

func validateTime(raw string, _ time.Time) (string, bool) {
	var hour, minute int
	var meridiem string

	if m := clockTimeRe.FindStringSubmatch(raw); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		meridiem = strings.ToLower(m[3])
	} else if m := hourOnlyRe.FindStringSubmatch(raw); m != nil {
		hour, _ = strconv.Atoi(m[1])
		meridiem = strings.ToLower(m[2])
	} else {
		return "", false
	}

	if meridiem == "pm" && hour < 12 {
		hour += 12
	}
	if meridiem == "am" && hour == 12 {
		hour = 0
	}
	if hour > 23 || minute > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), true
}

// --- reason for visit ---

var (
	reasonStrongRe = regexp.MustCompile(`(?i)\breason (?:is|:)\s*(.+)$`)
	reasonLooseRe  = regexp.MustCompile(`(?i)\b(?:for|because of|due to)\s+(?:a |an |my |some )?([a-z][a-z' -]{2,60})`)

	// Words that end a reason phrase rather than belong to it.
	reasonCutoff = map[string]bool{
		"on": true, "at": true, "next": true, "this": true,
		"today": true, "tomorrow": true, "monday": true, "tuesday": true,
		"wednesday": true, "thursday": true, "friday": true,
		"saturday": true, "sunday": true, "and": true, "please": true,
	}
)

func matchReason(text string, missing bool) (string, bool) {
	if m := reasonStrongRe.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	if !missing {
		return "", false
	}
	if m := reasonLooseRe.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

func validateReason(raw string, _ time.Time) (string, bool) {
	words := strings.Fields(strings.ToLower(strings.Trim(raw, " .,!?")))
	var kept []string
	for _, w := range words {
		if reasonCutoff[w] {
			break
		}
		kept = append(kept, w)
	}
	reason := strings.Join(kept, " ")
	if len(reason) < 3 || len(reason) > 60 {
		return "", false
	}
	if strings.ContainsAny(reason, "0123456789") {
		return "", false
	}
	return reason, true
}
