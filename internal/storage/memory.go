package storage

import (
	"sync"

	"github.com/roomsathi/feedback/internal/forms"
)

// MemoryStore keeps drafts, locks, and the submission archive in process
// memory. Used by tests and deployments that accept losing state on restart.
type MemoryStore struct {
	mu          sync.Mutex
	drafts      map[string]*forms.DraftRecord
	locks       map[string]*forms.Lock
	submissions []*forms.SubmissionRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		drafts: map[string]*forms.DraftRecord{},
		locks:  map[string]*forms.Lock{},
	}
}

func memKey(device string, t forms.RespondentType) string {
	return device + "|" + string(t)
}

func (m *MemoryStore) GetDraft(device string, t forms.RespondentType) (*forms.DraftRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.drafts[memKey(device, t)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *MemoryStore) PutDraft(device string, t forms.RespondentType, rec *forms.DraftRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.drafts[memKey(device, t)] = &cp
	return nil
}

func (m *MemoryStore) DeleteDraft(device string, t forms.RespondentType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, memKey(device, t))
	return nil
}

func (m *MemoryStore) GetLock(device string, t forms.RespondentType) (*forms.Lock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[memKey(device, t)]
	if !ok {
		return nil, nil
	}
	cp := *lock
	return &cp, nil
}

func (m *MemoryStore) PutLock(device string, t forms.RespondentType, lock *forms.Lock) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *lock
	m.locks[memKey(device, t)] = &cp
	return nil
}

func (m *MemoryStore) DeleteLock(device string, t forms.RespondentType) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, memKey(device, t))
	return nil
}

func (m *MemoryStore) SaveSubmission(rec *forms.SubmissionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rec
	m.submissions = append(m.submissions, &cp)
	return nil
}

func (m *MemoryStore) ListSubmissions(t forms.RespondentType) ([]*forms.SubmissionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*forms.SubmissionRecord
	for _, rec := range m.submissions {
		if rec.Type == t {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}
