package forms

import (
	"errors"
	"testing"
	"time"
)

type stubLockStorage struct {
	locks  map[string]*Lock
	getErr error
}

func newStubLockStorage() *stubLockStorage {
	return &stubLockStorage{locks: map[string]*Lock{}}
}

func (s *stubLockStorage) GetLock(device string, t RespondentType) (*Lock, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.locks[device+"|"+string(t)], nil
}

func (s *stubLockStorage) PutLock(device string, t RespondentType, lock *Lock) error {
	s.locks[device+"|"+string(t)] = lock
	return nil
}

func (s *stubLockStorage) DeleteLock(device string, t RespondentType) error {
	delete(s.locks, device+"|"+string(t))
	return nil
}

func TestGuardWindowBoundaries(t *testing.T) {
	storage := newStubLockStorage()
	g := NewGuard(storage, []byte("test-key"))
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	storage.locks["d1|owner"] = &Lock{SubmittedAt: base, Type: RespondentOwner, Name: "Asha Verma"}

	g.now = func() time.Time { return base.Add(29 * 24 * time.Hour) }
	if lock := g.ActiveLock("d1", RespondentOwner); lock == nil {
		t.Fatalf("29-day-old lock must still block")
	}

	g.now = func() time.Time { return base.Add(31 * 24 * time.Hour) }
	if lock := g.ActiveLock("d1", RespondentOwner); lock != nil {
		t.Fatalf("31-day-old lock must not block")
	}
	if storage.locks["d1|owner"] != nil {
		t.Fatalf("expired lock should be lazily deleted")
	}
}

func TestGuardPerRespondentType(t *testing.T) {
	storage := newStubLockStorage()
	g := NewGuard(storage, []byte("test-key"))
	if err := g.Acquire("d1", RespondentOwner, Identity{Name: "Asha Verma", Email: "a@b.co"}, DeviceInfo{}); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if g.ActiveLock("d1", RespondentOwner) == nil {
		t.Fatalf("owner lock should be active")
	}
	if g.ActiveLock("d1", RespondentSeeker) != nil {
		t.Fatalf("seeker must not be blocked by an owner lock")
	}
}

func TestGuardReadErrorsDegradeToAbsent(t *testing.T) {
	storage := newStubLockStorage()
	storage.getErr = errors.New("corrupt record")
	g := NewGuard(storage, []byte("test-key"))
	if g.ActiveLock("d1", RespondentOwner) != nil {
		t.Fatalf("unreadable lock must look absent")
	}
}

func TestContactFingerprintStableAndNormalized(t *testing.T) {
	g := NewGuard(newStubLockStorage(), []byte("test-key"))
	a := g.ContactFingerprint(Identity{Email: "Asha@Example.COM ", Phone: "+91 98765 43210"})
	b := g.ContactFingerprint(Identity{Email: "asha@example.com", Phone: "9198765432"})
	if a == "" || a != b {
		t.Fatalf("normalized contacts must fingerprint equally: %q vs %q", a, b)
	}
	c := g.ContactFingerprint(Identity{Email: "other@example.com", Phone: "9198765432"})
	if c == a {
		t.Fatalf("different contacts must not collide")
	}
}
