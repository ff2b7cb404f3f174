package forms

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type stubSink struct {
	mu       sync.Mutex
	err      error
	payloads []map[string]any
	types    []RespondentType
	block    chan struct{}
}

func (s *stubSink) Send(_ context.Context, t RespondentType, payload map[string]any) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.payloads = append(s.payloads, payload)
	s.types = append(s.types, t)
	return nil
}

type stubArchive struct {
	recs []*SubmissionRecord
}

func (a *stubArchive) SaveSubmission(rec *SubmissionRecord) error {
	a.recs = append(a.recs, rec)
	return nil
}

func (a *stubArchive) ListSubmissions(t RespondentType) ([]*SubmissionRecord, error) {
	var out []*SubmissionRecord
	for _, r := range a.recs {
		if r.Type == t {
			out = append(out, r)
		}
	}
	return out, nil
}

func completedOwnerSession() *Session {
	s := ownerSession()
	fillOwnerProfile(s)
	s.Answers.Scalars["biggestChallenge"] = "RENT_COLLECTION"
	s.Answers.Sets["switchReasons"] = []string{"SAVE_TIME", "AUTOMATION"}
	s.Answers.Sets["topFeatures"] = []string{"PROPERTY_LISTING", "MOBILE_APP", "COMMUNICATION", "SMART_NOTIFICATIONS"}
	s.Answers.Scalars["readyToPay"] = "WILLING_TO_PAY_YES"
	s.Answers.Scalars["marketingSpend"] = "5K_15K"
	s.Answers.Scalars["timing"] = "URGENCY_IMMEDIATE"
	s.Answers.Scalars["referralSource"] = "FRIEND_REFERRAL"
	s.Answers.Scalars["friendName"] = "Ravi Kumar"
	s.Answers.Score = 9
	s.Step = ownerSteps
	s.StartedAt = time.Now().UTC().Add(-90 * time.Second)
	return s
}

func newTestPipeline(sink Sink) (*Pipeline, *stubDraftStorage, *stubLockStorage, *stubArchive) {
	ds := newStubDraftStorage()
	ls := newStubLockStorage()
	archive := &stubArchive{}
	drafts := NewDraftStore(ds)
	guard := NewGuard(ls, []byte("test-key"))
	signer := func(name, rtype, lang string) (string, error) { return "tok-" + name + "-" + rtype + "-" + lang, nil }
	p := NewPipeline(NewCatalog(), guard, drafts, sink, archive, signer)
	return p, ds, ls, archive
}

// Successful submit acquires the lock, clears the draft and hands back a
// redirect carrying name, type and locale.
func TestSubmitSuccess(t *testing.T) {
	sink := &stubSink{}
	p, ds, ls, archive := newTestPipeline(sink)
	s := completedOwnerSession()
	ds.recs["d1|owner"] = &DraftRecord{Answers: copyAnswers(s.Answers), Step: s.Step, SavedAt: time.Now().UTC()}

	out, err := p.Submit(context.Background(), s, DeviceInfo{UserAgent: "test-agent", Language: "en-IN"})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if out.Redirect.Name != "Asha Verma" || out.Redirect.Type != "owner" || out.Redirect.Lang != LocaleHinglish {
		t.Fatalf("redirect mismatch: %+v", out.Redirect)
	}
	if out.Redirect.Token == "" {
		t.Fatalf("redirect should carry a signed token")
	}
	lock := ls.locks["d1|owner"]
	if lock == nil || lock.Name != "Asha Verma" || lock.ContactKey == "" {
		t.Fatalf("guard lock not acquired: %+v", lock)
	}
	if lock.Device.UserAgent != "test-agent" {
		t.Fatalf("device info not recorded on lock")
	}
	if ds.recs["d1|owner"] != nil {
		t.Fatalf("draft keys must be cleared after success")
	}
	if len(archive.recs) != 1 {
		t.Fatalf("submission should be archived")
	}
}

// Failed sink hand-off mutates nothing: no lock, draft untouched, session
// intact for a retry.
func TestSubmitSinkFailureMutatesNothing(t *testing.T) {
	sink := &stubSink{err: errors.New("connection refused")}
	p, ds, ls, archive := newTestPipeline(sink)
	s := completedOwnerSession()
	draft := &DraftRecord{Answers: copyAnswers(s.Answers), Step: s.Step, SavedAt: time.Now().UTC()}
	ds.recs["d1|owner"] = draft

	if _, err := p.Submit(context.Background(), s, DeviceInfo{}); err == nil {
		t.Fatalf("sink failure must surface")
	}
	if ls.locks["d1|owner"] != nil {
		t.Fatalf("no lock may be acquired on failure")
	}
	if ds.recs["d1|owner"] != draft {
		t.Fatalf("draft must stay untouched on failure")
	}
	if len(archive.recs) != 0 {
		t.Fatalf("nothing should be archived on failure")
	}
	if s.Step != ownerSteps {
		t.Fatalf("session must remain on the final step")
	}

	// retry after the sink recovers
	sink.err = nil
	if _, err := p.Submit(context.Background(), s, DeviceInfo{}); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
}

func TestSubmitRefusesInvalidTerminalStep(t *testing.T) {
	sink := &stubSink{}
	p, _, _, _ := newTestPipeline(sink)
	s := completedOwnerSession()
	s.Answers.Scalars["friendName"] = "" // break the terminal step

	_, err := p.Submit(context.Background(), s, DeviceInfo{})
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorInvalid {
		t.Fatalf("invalid session must be refused, got %v", err)
	}
	if len(sink.payloads) != 0 {
		t.Fatalf("nothing may reach the sink for an invalid session")
	}
}

// A session whose terminal step validates but whose earlier steps were never
// completed must be refused: re-validation covers every step, so a gap in the
// profile cannot ride through on valid referral fields.
func TestSubmitRefusesIncompleteEarlierSteps(t *testing.T) {
	sink := &stubSink{}
	p, _, ls, _ := newTestPipeline(sink)
	s := completedOwnerSession()
	s.Answers.Scalars["name"] = ""
	s.Answers.Scalars["email"] = ""

	_, err := p.Submit(context.Background(), s, DeviceInfo{})
	se, ok := AsServiceError(err)
	if !ok || se.Code != ErrorInvalid {
		t.Fatalf("session with an incomplete earlier step must be refused, got %v", err)
	}
	if len(sink.payloads) != 0 {
		t.Fatalf("empty identity must never reach the sink")
	}
	if ls.locks["d1|owner"] != nil {
		t.Fatalf("no lock may be acquired for a refused submission")
	}
}

func TestResolveCanonicalText(t *testing.T) {
	sink := &stubSink{}
	p, _, _, _ := newTestPipeline(sink)
	s := completedOwnerSession()
	s.Locale = LocaleHindi // resolution must ignore the UI locale

	payload := p.Resolve(s)
	if payload["biggestChallenge"] != "💰 Rent collection delays" {
		t.Fatalf("single choice not canonical: %v", payload["biggestChallenge"])
	}
	reasons, _ := payload["switchReasons"].([]string)
	if len(reasons) != 2 || reasons[0] != "⏱️ Save 5+ hours per week" {
		t.Fatalf("multi choice not canonical: %v", payload["switchReasons"])
	}
	if payload["friendName"] != "Ravi Kumar" {
		t.Fatalf("free text must pass through untouched")
	}
	if payload["recommendation"] != 9 {
		t.Fatalf("score must pass through: %v", payload["recommendation"])
	}
	if payload["language"] != LocaleHindi {
		t.Fatalf("locale tag missing: %v", payload["language"])
	}
	ct, _ := payload["completionTime"].(float64)
	if ct < 89 || ct > 300 {
		t.Fatalf("completionTime should measure elapsed seconds, got %v", ct)
	}
}

func TestResolveOtherCityUsesFreeText(t *testing.T) {
	sink := &stubSink{}
	p, _, _, _ := newTestPipeline(sink)
	s := completedOwnerSession()
	s.Answers.Scalars["city"] = "OTHER"
	s.Answers.Scalars["otherCity"] = "Nagpur"

	payload := p.Resolve(s)
	if payload["city"] != "Nagpur" {
		t.Fatalf("OTHER city must resolve to the free-text value, got %v", payload["city"])
	}
}

// While a submit is outstanding every other operation on the session is
// refused, and a second submit cannot start.
func TestManagerSubmitInFlightBlocksOperations(t *testing.T) {
	m, _, _ := newTestManager()
	res, _ := m.Start("d1", RespondentOwner, LocaleHinglish)
	src := completedOwnerSession()
	*res.Session = *src
	res.Session.DeviceID = "d1"

	sink := &stubSink{block: make(chan struct{})}
	p, _, _, _ := newTestPipeline(sink)

	done := make(chan error, 1)
	go func() {
		_, err := m.Submit(context.Background(), "d1", RespondentOwner, p, DeviceInfo{})
		done <- err
	}()

	// wait until the submit goroutine has marked the session busy
	deadline := time.Now().Add(time.Second)
	for {
		if _, err := m.Advance("d1", RespondentOwner); errors.Is(err, ErrSubmitInFlight) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("session never became busy")
		}
		time.Sleep(time.Millisecond)
	}
	if _, err := m.SetField("d1", RespondentOwner, "name", "x"); !errors.Is(err, ErrSubmitInFlight) {
		t.Fatalf("field mutation during submit must be refused, got %v", err)
	}

	close(sink.block)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if m.Peek("d1", RespondentOwner) != nil {
		t.Fatalf("session must be destroyed after a successful submit")
	}
}
