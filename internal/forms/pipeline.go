package forms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Sink is the opaque remote service that receives a resolved submission.
// Exactly one send per user-initiated submit; no automatic retry.
type Sink interface {
	Send(ctx context.Context, t RespondentType, payload map[string]any) error
}

// HTTPClient mirrors the subset of http.Client the sink needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPSink posts submissions to the remote feedback endpoints.
type HTTPSink struct {
	base   string
	client HTTPClient
}

func NewHTTPSink(base string, client HTTPClient) *HTTPSink {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSink{base: strings.TrimRight(base, "/"), client: client}
}

func (s *HTTPSink) endpoint(t RespondentType) string {
	if t == RespondentOwner {
		return s.base + "/api/owner-feedback"
	}
	return s.base + "/api/user-feedback"
}

func (s *HTTPSink) Send(ctx context.Context, t RespondentType, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return NewInvalidError(err.Error())
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint(t), bytes.NewReader(body))
	if err != nil {
		return NewInvalidError(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return NewBadGatewayError(err.Error())
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return NewBadGatewayError(fmt.Sprintf("sink returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b))))
	}
	return nil
}

// SubmissionRecord is the archived copy of a resolved submission.
type SubmissionRecord struct {
	ID          string         `json:"id"`
	Type        RespondentType `json:"type"`
	Payload     map[string]any `json:"payload"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// Archive keeps resolved submissions locally; read-only consumers (the
// dashboard) query it, the pipeline only appends. Best effort.
type Archive interface {
	SaveSubmission(rec *SubmissionRecord) error
	ListSubmissions(t RespondentType) ([]*SubmissionRecord, error)
}

// TokenSigner issues the signed confirmation token carried by the redirect.
type TokenSigner func(name, respondentType, lang string) (string, error)

// Redirect is the navigation target handed to the shell after a successful
// submission or a guard-blocked start: enough to render the confirmation view
// without re-querying the session.
type Redirect struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Lang  string `json:"lang"`
	Token string `json:"token,omitempty"`
}

// Outcome reports a successful submission.
type Outcome struct {
	Redirect Redirect
	Record   *SubmissionRecord
}

// Pipeline orchestrates final validation, identifier-to-canonical-text
// resolution, the single network hand-off, and post-success cleanup of the
// draft and guard state. On any failure before cleanup, nothing is mutated
// and the session stays intact for a retry.
type Pipeline struct {
	catalog   *Catalog
	guard     *Guard
	drafts    *DraftStore
	sink      Sink
	archive   Archive
	signToken TokenSigner
	now       func() time.Time
	idGen     func() string
}

func NewPipeline(catalog *Catalog, guard *Guard, drafts *DraftStore, sink Sink, archive Archive, signer TokenSigner) *Pipeline {
	return &Pipeline{
		catalog:   catalog,
		guard:     guard,
		drafts:    drafts,
		sink:      sink,
		archive:   archive,
		signToken: signer,
		now:       func() time.Time { return time.Now().UTC() },
		idGen:     func() string { return shortID(12) },
	}
}

// Submit runs the full submission workflow for a session sitting on its
// terminal step.
func (p *Pipeline) Submit(ctx context.Context, s *Session, info DeviceInfo) (*Outcome, error) {
	// defense in depth: a caller must never hand over an invalid session,
	// so every step is re-validated, not just the terminal one
	for step := 1; step <= s.Type.Steps(); step++ {
		if errs := ValidateStep(s, step); len(errs) > 0 {
			return nil, NewInvalidError("session has validation errors")
		}
	}

	payload := p.Resolve(s)
	if err := p.sink.Send(ctx, s.Type, payload); err != nil {
		return nil, err
	}

	id := s.Identity()
	if err := p.guard.Acquire(s.DeviceID, s.Type, id, info); err != nil {
		log.Printf("submission pipeline: lock acquire failed for %s/%s: %v", s.DeviceID, s.Type, err)
	}
	p.drafts.Clear(s.DeviceID, s.Type)

	rec := &SubmissionRecord{
		ID:          p.idGen(),
		Type:        s.Type,
		Payload:     payload,
		SubmittedAt: p.now(),
	}
	if p.archive != nil {
		if err := p.archive.SaveSubmission(rec); err != nil {
			log.Printf("submission pipeline: archive save failed: %v", err)
		}
	}

	redirect := Redirect{Name: id.Name, Type: string(s.Type), Lang: s.Locale}
	if p.signToken != nil {
		token, err := p.signToken(id.Name, string(s.Type), s.Locale)
		if err != nil {
			log.Printf("submission pipeline: redirect token sign failed: %v", err)
		} else {
			redirect.Token = token
		}
	}
	return &Outcome{Redirect: redirect, Record: rec}, nil
}

// Resolve converts the identifier-based answer record into the sink payload:
// option identifiers become canonical display text, free-text and numeric
// fields pass through untouched, and locale plus timing metadata is attached.
func (p *Pipeline) Resolve(s *Session) map[string]any {
	a := s.Answers
	out := map[string]any{}

	for field, def := range FieldsFor(s.Type) {
		if def.Multi {
			ids := a.Set(field)
			texts := make([]string, 0, len(ids))
			for _, id := range ids {
				texts = append(texts, p.catalog.CanonicalText(def.Category, id))
			}
			out[field] = texts
			continue
		}
		value := a.Str(field)
		if def.Category != "" && value != "" {
			if def.Category == "city" && value == "OTHER" {
				value = a.Str("otherCity")
			} else {
				value = p.catalog.CanonicalText(def.Category, value)
			}
		}
		out[field] = value
	}

	out["recommendation"] = a.Score
	out["language"] = s.Locale
	out["completionTime"] = p.now().Sub(s.StartedAt).Seconds()
	out["submittedAt"] = p.now().Format(time.RFC3339)
	return out
}
