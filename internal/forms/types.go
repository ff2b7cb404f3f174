package forms

import "time"

// RespondentType selects which of the two wizards a session belongs to.
type RespondentType string

const (
	RespondentOwner  RespondentType = "owner"
	RespondentSeeker RespondentType = "seeker"
)

// Valid reports whether t is one of the two known wizards.
func (t RespondentType) Valid() bool {
	return t == RespondentOwner || t == RespondentSeeker
}

// Steps returns the number of wizard steps for the respondent type.
func (t RespondentType) Steps() int {
	if t == RespondentOwner {
		return ownerSteps
	}
	return seekerSteps
}

const (
	ownerSteps  = 6
	seekerSteps = 5

	// Satisfaction score bounds (1..10 slider, default 5).
	ScoreMin     = 1
	ScoreMax     = 10
	ScoreDefault = 5
)

// Answers is the answer record for one session. Scalars hold free text and
// single-choice option identifiers; Sets hold ordered, duplicate-free
// multi-choice identifier lists; Score is the 1-10 recommendation value.
type Answers struct {
	Scalars map[string]string   `json:"scalars,omitempty"`
	Sets    map[string][]string `json:"sets,omitempty"`
	Score   int                 `json:"score"`
}

// NewAnswers returns an empty record with the default score.
func NewAnswers() Answers {
	return Answers{
		Scalars: map[string]string{},
		Sets:    map[string][]string{},
		Score:   ScoreDefault,
	}
}

// Str returns the scalar value for field ("" when unset).
func (a Answers) Str(field string) string { return a.Scalars[field] }

// Set returns the option-identifier list for field (nil when unset).
func (a Answers) Set(field string) []string { return a.Sets[field] }

// HasOption reports whether id is currently selected in the set field.
func (a Answers) HasOption(field, id string) bool {
	for _, v := range a.Sets[field] {
		if v == id {
			return true
		}
	}
	return false
}

// Session is the single mutable source of truth for one active wizard run on
// one device. All mutation goes through the Manager.
type Session struct {
	ID        string         `json:"id"`
	DeviceID  string         `json:"device_id"`
	Type      RespondentType `json:"type"`
	Locale    string         `json:"locale"`
	Step      int            `json:"step"`
	Answers   Answers        `json:"answers"`
	StartedAt time.Time      `json:"started_at"`

	// Errors is the per-field error map for the current step; cleared on
	// retreat and repopulated on a refused advance.
	Errors map[string]string `json:"errors,omitempty"`

	submitting bool
}

// Identity captures the respondent identity carried by a submission lock and
// the confirmation redirect.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Identity extracts the identity fields from the session answers.
func (s *Session) Identity() Identity {
	return Identity{
		Name:  s.Answers.Str("name"),
		Email: s.Answers.Str("email"),
		Phone: s.Answers.Str("phone"),
	}
}

// HasIdentity reports whether at least one identity field is filled; drafts
// are not persisted before this to avoid storing empty noise.
func (s *Session) HasIdentity() bool {
	id := s.Identity()
	return id.Name != "" || id.Email != "" || id.Phone != ""
}

// DeviceInfo is opportunistic metadata recorded on a submission lock.
type DeviceInfo struct {
	UserAgent string `json:"user_agent,omitempty"`
	Language  string `json:"language,omitempty"`
}

// Lock is the device-scoped record of a completed submission. While younger
// than the guard window it blocks a new session for the same respondent type.
type Lock struct {
	SubmittedAt time.Time      `json:"submitted_at"`
	Type        RespondentType `json:"type"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	ContactKey  string         `json:"contact_key,omitempty"`
	Device      DeviceInfo     `json:"device,omitempty"`
}

// DraftRecord is the serialized form of an in-progress session: the three
// logical draft keys (answers blob, step, last-saved stamp) plus the locale.
type DraftRecord struct {
	Answers Answers   `json:"answers"`
	Step    int       `json:"step"`
	Locale  string    `json:"locale"`
	SavedAt time.Time `json:"saved_at"`

	StartedAt time.Time `json:"started_at"`
}
