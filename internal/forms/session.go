package forms

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager owns the active sessions, one per device and respondent type. It is
// the only writer of session state; handlers and timers never touch a Session
// directly. The guard is consulted before any draft restore, so a locked
// device is redirected instead of shown the form.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	catalog *Catalog
	drafts  *DraftStore
	guard   *Guard
	now     func() time.Time
	idGen   func() string
}

func NewManager(catalog *Catalog, drafts *DraftStore, guard *Guard) *Manager {
	return &Manager{
		sessions: map[string]*Session{},
		catalog:  catalog,
		drafts:   drafts,
		guard:    guard,
		now:      func() time.Time { return time.Now().UTC() },
		idGen:    func() string { return shortID(12) },
	}
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

func sessionKey(device string, t RespondentType) string {
	return device + "|" + string(t)
}

// StartResult reports how a session start resolved: blocked by a submission
// lock, restored from a fresh draft, or started empty.
type StartResult struct {
	Session  *Session
	Restored bool
	Lock     *Lock
}

// Start begins (or resumes) a session for the device. Order matters: the
// submission guard is checked first; only then is a draft considered.
func (m *Manager) Start(device string, t RespondentType, locale string) (*StartResult, error) {
	if strings.TrimSpace(device) == "" {
		return nil, NewInvalidError("device id required")
	}
	if !t.Valid() {
		return nil, NewInvalidError("unknown respondent type")
	}

	if lock := m.guard.ActiveLock(device, t); lock != nil {
		return &StartResult{Lock: lock}, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[sessionKey(device, t)]; ok {
		return &StartResult{Session: s}, nil
	}

	if rec := m.drafts.Load(device, t); rec != nil {
		s := &Session{
			ID:        m.idGen(),
			DeviceID:  device,
			Type:      t,
			Locale:    rec.Locale,
			Step:      rec.Step,
			Answers:   rec.Answers,
			StartedAt: rec.StartedAt,
			Errors:    map[string]string{},
		}
		if s.Locale == "" {
			s.Locale = locale
		}
		if s.Step < 1 || s.Step > t.Steps() {
			s.Step = 1
		}
		if s.StartedAt.IsZero() {
			s.StartedAt = m.now()
		}
		normalizeAnswers(&s.Answers)
		m.sessions[sessionKey(device, t)] = s
		return &StartResult{Session: s, Restored: true}, nil
	}

	s := &Session{
		ID:        m.idGen(),
		DeviceID:  device,
		Type:      t,
		Locale:    locale,
		Step:      1,
		Answers:   NewAnswers(),
		StartedAt: m.now(),
		Errors:    map[string]string{},
	}
	m.sessions[sessionKey(device, t)] = s
	return &StartResult{Session: s}, nil
}

func normalizeAnswers(a *Answers) {
	if a.Scalars == nil {
		a.Scalars = map[string]string{}
	}
	if a.Sets == nil {
		a.Sets = map[string][]string{}
	}
	if a.Score < ScoreMin || a.Score > ScoreMax {
		a.Score = ScoreDefault
	}
}

func (m *Manager) get(device string, t RespondentType) (*Session, error) {
	s, ok := m.sessions[sessionKey(device, t)]
	if !ok {
		return nil, NewNotFoundError("no active session for device")
	}
	if s.submitting {
		return nil, ErrSubmitInFlight
	}
	return s, nil
}

// SetField applies keystroke-level normalization and validation to a scalar
// field and schedules a debounced draft save. The returned session carries the
// filtered value and the current per-field error state.
func (m *Manager) SetField(device string, t RespondentType, field, raw string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.get(device, t)
	if err != nil {
		return nil, err
	}
	def, ok := FieldsFor(t)[field]
	if !ok {
		return nil, NewInvalidError("unknown field: " + field)
	}
	if def.Multi {
		return nil, NewInvalidError(field + " is a multi-choice field; toggle options instead")
	}

	value := raw
	msg := ""
	switch def.Kind {
	case KindName:
		value = FilterName(raw)
		if value != "" {
			msg = ValidateName(value)
		}
	case KindPhone:
		value = NormalizeMobile(raw)
		if value != "" {
			msg = ValidateMobile(value, false)
		}
	case KindEmail:
		value = NormalizeEmail(raw)
		if value != "" {
			msg = ValidateEmail(value, false)
		}
	default:
		if def.Category != "" && value != "" && !m.catalog.Has(def.Category, value) {
			return nil, NewInvalidError("unknown option for " + field)
		}
	}

	s.Answers.Scalars[field] = value
	if msg != "" {
		s.Errors[field] = msg
	} else {
		delete(s.Errors, field)
	}
	m.drafts.Schedule(s)
	return s, nil
}

// ToggleOption adds or removes an option identifier in a multi-choice field,
// preserving selection order and forbidding duplicates.
func (m *Manager) ToggleOption(device string, t RespondentType, field, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.get(device, t)
	if err != nil {
		return nil, err
	}
	def, ok := FieldsFor(t)[field]
	if !ok || !def.Multi {
		return nil, NewInvalidError("unknown multi-choice field: " + field)
	}
	if !m.catalog.Has(def.Category, id) {
		return nil, NewInvalidError("unknown option for " + field)
	}

	set := s.Answers.Sets[field]
	found := false
	for i, v := range set {
		if v == id {
			set = append(set[:i], set[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		set = append(set, id)
	}
	s.Answers.Sets[field] = set
	m.drafts.Schedule(s)
	return s, nil
}

// SetScore stores the 1-10 recommendation score, clamping out-of-range input.
func (m *Manager) SetScore(device string, t RespondentType, score int) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.get(device, t)
	if err != nil {
		return nil, err
	}
	if score < ScoreMin {
		score = ScoreMin
	}
	if score > ScoreMax {
		score = ScoreMax
	}
	s.Answers.Score = score
	m.drafts.Schedule(s)
	return s, nil
}

// SetLocale switches the UI language. Stored answers are identifiers, so no
// re-validation or re-mapping happens here.
func (m *Manager) SetLocale(device string, t RespondentType, locale string) (*Session, error) {
	supported := false
	for _, l := range Locales {
		if l == locale {
			supported = true
			break
		}
	}
	if !supported {
		return nil, NewInvalidError("unsupported locale: " + locale)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.get(device, t)
	if err != nil {
		return nil, err
	}
	s.Locale = locale
	return s, nil
}

// AdvanceResult reports the outcome of an attempted step advance.
type AdvanceResult struct {
	Session *Session
	// Refused means the gate failed; the session error map holds the reasons
	// and the step did not change.
	Refused bool
	// Terminal means the advance was requested from the last step; the caller
	// should run the submission pipeline instead of incrementing.
	Terminal bool
}

// Advance moves to the next step iff the current step is complete. The draft
// is flushed immediately on a successful advance.
func (m *Manager) Advance(device string, t RespondentType) (*AdvanceResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.get(device, t)
	if err != nil {
		return nil, err
	}
	errs := ValidateStep(s, s.Step)
	if len(errs) > 0 {
		s.Errors = errs
		return &AdvanceResult{Session: s, Refused: true}, nil
	}
	if s.Step >= t.Steps() {
		return &AdvanceResult{Session: s, Terminal: true}, nil
	}
	s.Errors = map[string]string{}
	s.Step++
	m.drafts.Flush(s)
	return &AdvanceResult{Session: s}, nil
}

// Retreat steps back one step and clears the error map; going back never
// carries validation noise forward. At step 1 it is a no-op.
func (m *Manager) Retreat(device string, t RespondentType) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.get(device, t)
	if err != nil {
		return nil, err
	}
	if s.Step > 1 {
		s.Step--
	}
	s.Errors = map[string]string{}
	return s, nil
}

// Submit runs the pipeline for the session's terminal step. While the network
// call is outstanding the session is marked busy and every other operation is
// refused; on success the session is destroyed.
func (m *Manager) Submit(ctx context.Context, device string, t RespondentType, p *Pipeline, info DeviceInfo) (*Outcome, error) {
	m.mu.Lock()
	s, err := m.get(device, t)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if s.Step != t.Steps() {
		// every Advance gate must have been passed before a submit
		s.Errors = ValidateStep(s, s.Step)
		m.mu.Unlock()
		return nil, NewInvalidError("session has not reached the final step")
	}
	s.submitting = true
	m.mu.Unlock()

	out, err := p.Submit(ctx, s, info)

	m.mu.Lock()
	s.submitting = false
	if err == nil {
		delete(m.sessions, sessionKey(device, t))
	} else if sub, ok := AsServiceError(err); ok && sub.Code == ErrorInvalid {
		// terminal re-validation failed; surface the errors on the session
		s.Errors = ValidateStep(s, t.Steps())
	}
	m.mu.Unlock()
	return out, err
}

// Peek returns the active session, if any, without mutating anything.
func (m *Manager) Peek(device string, t RespondentType) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sessionKey(device, t)]
}
