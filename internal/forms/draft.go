package forms

import (
	"log"
	"sync"
	"time"
)

// DraftStorage abstracts the durable draft keys for one device and wizard.
type DraftStorage interface {
	GetDraft(device string, t RespondentType) (*DraftRecord, error)
	PutDraft(device string, t RespondentType, rec *DraftRecord) error
	DeleteDraft(device string, t RespondentType) error
}

const (
	defaultDraftTTL     = 24 * time.Hour
	defaultSaveDebounce = time.Second
)

// DraftStore persists in-progress sessions so a reload can resume them.
// Saves are debounced (bursts of keystrokes collapse into one write) and
// skipped entirely until an identity field has a value. Stale drafts are
// discarded on load, never restored. Storage failures are logged and the
// session continues in memory only.
type DraftStore struct {
	storage  DraftStorage
	ttl      time.Duration
	debounce time.Duration
	now      func() time.Time

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewDraftStore(storage DraftStorage) *DraftStore {
	return &DraftStore{
		storage:  storage,
		ttl:      defaultDraftTTL,
		debounce: defaultSaveDebounce,
		now:      func() time.Time { return time.Now().UTC() },
		timers:   map[string]*time.Timer{},
	}
}

// SetDebounce overrides the save debounce window (config/test hook).
func (d *DraftStore) SetDebounce(window time.Duration) {
	if window > 0 {
		d.debounce = window
	}
}

// SetTTL overrides the draft freshness window (config/test hook).
func (d *DraftStore) SetTTL(ttl time.Duration) {
	if ttl > 0 {
		d.ttl = ttl
	}
}

func (d *DraftStore) record(s *Session) *DraftRecord {
	return &DraftRecord{
		Answers:   copyAnswers(s.Answers),
		Step:      s.Step,
		Locale:    s.Locale,
		SavedAt:   d.now(),
		StartedAt: s.StartedAt,
	}
}

func copyAnswers(a Answers) Answers {
	out := Answers{
		Scalars: make(map[string]string, len(a.Scalars)),
		Sets:    make(map[string][]string, len(a.Sets)),
		Score:   a.Score,
	}
	for k, v := range a.Scalars {
		out.Scalars[k] = v
	}
	for k, v := range a.Sets {
		out.Sets[k] = append([]string(nil), v...)
	}
	return out
}

// Schedule queues a debounced save of the session. Each new mutation cancels
// and reschedules the single pending write for that device+wizard.
func (d *DraftStore) Schedule(s *Session) {
	if !s.HasIdentity() {
		return
	}
	rec := d.record(s)
	device, t := s.DeviceID, s.Type

	d.mu.Lock()
	defer d.mu.Unlock()
	key := sessionKey(device, t)
	if timer, ok := d.timers[key]; ok {
		timer.Stop()
	}
	d.timers[key] = time.AfterFunc(d.debounce, func() {
		d.mu.Lock()
		delete(d.timers, key)
		d.mu.Unlock()
		d.write(device, t, rec)
	})
}

// Flush writes the draft immediately, cancelling any pending debounce.
func (d *DraftStore) Flush(s *Session) {
	if !s.HasIdentity() {
		return
	}
	rec := d.record(s)
	d.cancel(s.DeviceID, s.Type)
	d.write(s.DeviceID, s.Type, rec)
}

func (d *DraftStore) cancel(device string, t RespondentType) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := sessionKey(device, t)
	if timer, ok := d.timers[key]; ok {
		timer.Stop()
		delete(d.timers, key)
	}
}

func (d *DraftStore) write(device string, t RespondentType, rec *DraftRecord) {
	if err := d.storage.PutDraft(device, t, rec); err != nil {
		log.Printf("draft store: save failed for %s/%s: %v", device, t, err)
	}
}

// Load returns a restorable draft or nil. Drafts older than the freshness
// window are deleted and reported as absent; corrupt or unreadable drafts are
// likewise treated as absent, never surfaced as errors.
func (d *DraftStore) Load(device string, t RespondentType) *DraftRecord {
	rec, err := d.storage.GetDraft(device, t)
	if err != nil {
		log.Printf("draft store: load failed for %s/%s: %v", device, t, err)
		return nil
	}
	if rec == nil {
		return nil
	}
	if d.now().Sub(rec.SavedAt) >= d.ttl {
		if err := d.storage.DeleteDraft(device, t); err != nil {
			log.Printf("draft store: stale delete failed for %s/%s: %v", device, t, err)
		}
		return nil
	}
	normalizeAnswers(&rec.Answers)
	return rec
}

// Clear removes the draft keys after a successful submission.
func (d *DraftStore) Clear(device string, t RespondentType) {
	d.cancel(device, t)
	if err := d.storage.DeleteDraft(device, t); err != nil {
		log.Printf("draft store: clear failed for %s/%s: %v", device, t, err)
	}
}
