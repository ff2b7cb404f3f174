package forms

import (
	"encoding/hex"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
)

// LockStorage abstracts the durable submission-lock record per device+wizard.
type LockStorage interface {
	GetLock(device string, t RespondentType) (*Lock, error)
	PutLock(device string, t RespondentType, lock *Lock) error
	DeleteLock(device string, t RespondentType) error
}

const defaultLockWindow = 30 * 24 * time.Hour

// Guard blocks a device from starting a new session for a respondent type
// while a completed submission is younger than the cooldown window. The lock
// lives in device-scoped storage, so it is a UX nudge against accidental
// resubmission, not a security control; the contact fingerprint recorded on
// each lock is what a server-side dedup would key on.
type Guard struct {
	storage LockStorage
	window  time.Duration
	key     []byte
	now     func() time.Time
}

func NewGuard(storage LockStorage, fingerprintKey []byte) *Guard {
	return &Guard{
		storage: storage,
		window:  defaultLockWindow,
		key:     fingerprintKey,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetWindow overrides the cooldown window (config/test hook).
func (g *Guard) SetWindow(window time.Duration) {
	if window > 0 {
		g.window = window
	}
}

// ActiveLock returns the blocking lock for the device+wizard, or nil. Expired
// locks are deleted lazily here, never swept proactively; unreadable or
// corrupt records count as absent.
func (g *Guard) ActiveLock(device string, t RespondentType) *Lock {
	lock, err := g.storage.GetLock(device, t)
	if err != nil {
		log.Printf("submission guard: lock read failed for %s/%s: %v", device, t, err)
		return nil
	}
	if lock == nil {
		return nil
	}
	if g.now().Sub(lock.SubmittedAt) >= g.window {
		if err := g.storage.DeleteLock(device, t); err != nil {
			log.Printf("submission guard: expired lock delete failed for %s/%s: %v", device, t, err)
		}
		return nil
	}
	return lock
}

// Acquire records a completed submission, overwriting any expired lock.
func (g *Guard) Acquire(device string, t RespondentType, id Identity, info DeviceInfo) error {
	lock := &Lock{
		SubmittedAt: g.now(),
		Type:        t,
		Name:        id.Name,
		Email:       id.Email,
		ContactKey:  g.ContactFingerprint(id),
		Device:      info,
	}
	return g.storage.PutLock(device, t, lock)
}

// ContactFingerprint derives a stable keyed digest of the normalized contact
// fields. Equal contacts collide across devices, which is exactly what a
// server-side dedup check needs, without storing the raw contact pair.
func (g *Guard) ContactFingerprint(id Identity) string {
	h, err := blake2b.New256(g.key)
	if err != nil {
		// only possible with a key longer than 64 bytes
		log.Printf("submission guard: fingerprint init failed: %v", err)
		return ""
	}
	h.Write([]byte(strings.ToLower(strings.TrimSpace(id.Email))))
	h.Write([]byte("|"))
	h.Write([]byte(NormalizeMobile(id.Phone)))
	return hex.EncodeToString(h.Sum(nil))
}
