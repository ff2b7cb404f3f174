package forms

import (
	"regexp"
	"strings"
	"unicode"
)

// Field validators are pure: they map a raw input to a normalized value and an
// error message ("" when valid). Callers own all state mutation.

type FieldKind string

const (
	KindName     FieldKind = "name"
	KindPhone    FieldKind = "phone"
	KindEmail    FieldKind = "email"
	KindRequired FieldKind = "required"
)

const (
	nameMinLen  = 4
	nameMaxLen  = 20
	emailMinLen = 5
	emailMaxLen = 254
	localMaxLen = 64
	phoneDigits = 10
)

var (
	multiSpaceRe = regexp.MustCompile(` {2,}`)
	nameRe       = regexp.MustCompile(`^[a-zA-Z ]+$`)
	digitRe      = regexp.MustCompile(`[0-9]`)
	emailRe      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// FilterName removes everything except letters and spaces, drops leading
// spaces, collapses space runs and title-cases each word. Applied on every
// keystroke; idempotent, so re-filtering stored values is safe.
func FilterName(input string) string {
	if input == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	s := strings.TrimLeft(b.String(), " ")
	s = multiSpaceRe.ReplaceAllString(s, " ")
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// ValidateName checks a (possibly unfiltered) name and reports the first
// violated rule. Empty message means valid.
func ValidateName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "Name is required"
	}
	if len(trimmed) < nameMinLen {
		return "Name must be at least 4 characters long"
	}
	if len(trimmed) > nameMaxLen {
		return "Name must not exceed 20 characters"
	}
	if !nameRe.MatchString(trimmed) {
		if digitRe.MatchString(trimmed) {
			return "Numbers are not allowed in name"
		}
		return "Only letters and spaces are allowed"
	}
	if multiSpaceRe.MatchString(trimmed) {
		return "Multiple consecutive spaces not allowed"
	}
	return ""
}

// NormalizeMobile strips non-digits and truncates to ten digits. Normalization
// happens before validation, never after.
func NormalizeMobile(mobile string) string {
	var b strings.Builder
	for _, r := range mobile {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > phoneDigits {
		digits = digits[:phoneDigits]
	}
	return digits
}

// ValidateMobile reports a cause-specific error for an Indian mobile number:
// wrong length vs. wrong leading digit. checkRequired controls whether an
// empty value is an error (step gate) or silently fine (mid-typing).
func ValidateMobile(mobile string, checkRequired bool) string {
	if strings.TrimSpace(mobile) == "" {
		if checkRequired {
			return "Mobile number is required"
		}
		return ""
	}
	var digits strings.Builder
	for _, r := range mobile {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	switch {
	case len(d) == 0:
		return "Please enter a valid mobile number"
	case len(d) < phoneDigits:
		return "Mobile number must be 10 digits"
	case len(d) > phoneDigits:
		return "Mobile number cannot exceed 10 digits"
	}
	if d[0] < '6' || d[0] > '9' {
		return "Mobile number must start with 6, 7, 8, or 9"
	}
	return ""
}

// NormalizeEmail trims and lowercases.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail applies the RFC-ish ruleset: length 5..254, shape regexp, no
// consecutive dots, local part <=64 chars not starting/ending with a dot,
// domain contains a dot, no spaces anywhere.
func ValidateEmail(email string, checkRequired bool) string {
	if strings.TrimSpace(email) == "" {
		if checkRequired {
			return "Email is required"
		}
		return ""
	}
	e := NormalizeEmail(email)
	if strings.Contains(e, " ") {
		return "Email cannot contain spaces"
	}
	if len(e) < emailMinLen {
		return "Email is too short (minimum 5 characters)"
	}
	if len(e) > emailMaxLen {
		return "Email is too long (maximum 254 characters)"
	}
	if !emailRe.MatchString(e) {
		return "Please enter a valid email address"
	}
	if strings.Contains(e, "..") {
		return "Consecutive dots are not allowed in email"
	}
	parts := strings.Split(e, "@")
	if len(parts) != 2 {
		return "Email must contain exactly one @ symbol"
	}
	local, domain := parts[0], parts[1]
	if len(local) > localMaxLen {
		return "Email local part (before @) is too long"
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") {
		return "Email cannot start or end with a dot"
	}
	if !strings.Contains(domain, ".") || len(domain) < 3 {
		return "Please enter a valid domain name"
	}
	return ""
}

// ValidateRequired is the generic non-empty-after-trim check.
func ValidateRequired(label, value string) string {
	if strings.TrimSpace(value) == "" {
		return label + " is required"
	}
	return ""
}

// ValidateField normalizes raw per the field kind and returns the normalized
// value along with an error message ("" when valid).
func ValidateField(kind FieldKind, label, raw string) (string, string) {
	switch kind {
	case KindName:
		v := FilterName(raw)
		return v, ValidateName(v)
	case KindPhone:
		v := NormalizeMobile(raw)
		return v, ValidateMobile(v, true)
	case KindEmail:
		v := NormalizeEmail(raw)
		return v, ValidateEmail(v, true)
	default:
		return raw, ValidateRequired(label, raw)
	}
}
