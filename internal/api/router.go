// Package api exposes the wizard session engine over HTTP. Every session
// endpoint identifies the caller by the X-Device-ID header; the body only
// carries the respondent type and the operation's arguments.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/roomsathi/feedback/internal/forms"
	"github.com/roomsathi/feedback/internal/token"
	"github.com/roomsathi/feedback/internal/utils"
)

const deviceHeader = "X-Device-ID"

// defaultLocale matches the wizard's shipped default language.
const defaultLocale = forms.LocaleHinglish

type Router struct {
	manager  *forms.Manager
	pipeline *forms.Pipeline
	catalog  *forms.Catalog
	archive  forms.Archive
	secret   []byte
}

func NewRouter(manager *forms.Manager, pipeline *forms.Pipeline, catalog *forms.Catalog, archive forms.Archive, secret []byte) *Router {
	return &Router{
		manager:  manager,
		pipeline: pipeline,
		catalog:  catalog,
		archive:  archive,
		secret:   secret,
	}
}

func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/session/start", rt.handleStart)     // POST
	mux.HandleFunc("/api/session/field", rt.handleField)     // POST
	mux.HandleFunc("/api/session/option", rt.handleOption)   // POST
	mux.HandleFunc("/api/session/score", rt.handleScore)     // POST
	mux.HandleFunc("/api/session/locale", rt.handleLocale)   // POST
	mux.HandleFunc("/api/session/advance", rt.handleAdvance) // POST
	mux.HandleFunc("/api/session/retreat", rt.handleRetreat) // POST
	mux.HandleFunc("/api/session/submit", rt.handleSubmit)   // POST
	mux.HandleFunc("/api/device", rt.handleDevice)           // GET
	mux.HandleFunc("/api/catalog", rt.handleCatalog)         // GET
	mux.HandleFunc("/api/confirmation", rt.handleConfirmation) // GET
	mux.HandleFunc("/api/submissions", rt.handleSubmissions) // GET
	mux.HandleFunc("/health", rt.handleHealth)               // GET
}

// sessionView is the wire shape of a session: the answers plus enough step
// metadata for the shell to render progress without hardcoding counts.
type sessionView struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	Locale     string            `json:"locale"`
	Step       int               `json:"step"`
	TotalSteps int               `json:"total_steps"`
	StepName   string            `json:"step_name"`
	Answers    forms.Answers     `json:"answers"`
	Errors     map[string]string `json:"errors"`
}

func viewOf(s *forms.Session) *sessionView {
	names := forms.StepNames(s.Type)
	name := ""
	if s.Step >= 1 && s.Step <= len(names) {
		name = names[s.Step-1]
	}
	return &sessionView{
		ID:         s.ID,
		Type:       string(s.Type),
		Locale:     s.Locale,
		Step:       s.Step,
		TotalSteps: s.Type.Steps(),
		StepName:   name,
		Answers:    s.Answers,
		Errors:     s.Errors,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	if se, ok := forms.AsServiceError(err); ok {
		writeJSON(w, statusFor(se.Code), map[string]string{"error": se.Message})
		return
	}
	if errors.Is(err, forms.ErrSubmitInFlight) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	log.Printf("api: internal error: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func statusFor(code forms.ErrorCode) int {
	switch code {
	case forms.ErrorInvalid:
		return http.StatusBadRequest
	case forms.ErrorNotFound:
		return http.StatusNotFound
	case forms.ErrorConflict:
		return http.StatusConflict
	case forms.ErrorLocked:
		return http.StatusLocked
	case forms.ErrorBadGateway:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// sessionRequest pulls the device id and respondent type every session
// endpoint needs. A missing device id is a client bug, not a validation state.
func (rt *Router) sessionRequest(w http.ResponseWriter, r *http.Request, body any) (device string, ok bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return "", false
	}
	device = strings.TrimSpace(r.Header.Get(deviceHeader))
	if device == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "X-Device-ID header required"})
		return "", false
	}
	if body != nil {
		if err := json.NewDecoder(r.Body).Decode(body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return "", false
		}
	}
	return device, true
}

// POST /api/session/start
func (rt *Router) handleStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type   string `json:"type"`
		Locale string `json:"locale"`
	}
	device, ok := rt.sessionRequest(w, r, &req)
	if !ok {
		return
	}
	locale := utils.DetermineLocale(req.Locale, r.Header.Get("Accept-Language"), forms.Locales, defaultLocale)
	res, err := rt.manager.Start(device, forms.RespondentType(req.Type), locale)
	if err != nil {
		writeError(w, err)
		return
	}
	if res.Lock != nil {
		// Already submitted within the guard window: hand back the redirect
		// instead of a session.
		writeJSON(w, http.StatusOK, map[string]any{
			"locked": true,
			"redirect": forms.Redirect{
				Name: res.Lock.Name,
				Type: string(res.Lock.Type),
				Lang: locale,
			},
		})
		return
	}
	out := map[string]any{
		"locked":   false,
		"restored": res.Restored,
		"session":  viewOf(res.Session),
	}
	if res.Restored {
		out["notification"] = utils.T(res.Session.Locale, "draft.restored")
	}
	writeJSON(w, http.StatusOK, out)
}

// POST /api/session/field
func (rt *Router) handleField(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type  string `json:"type"`
		Field string `json:"field"`
		Value string `json:"value"`
	}
	device, ok := rt.sessionRequest(w, r, &req)
	if !ok {
		return
	}
	s, err := rt.manager.SetField(device, forms.RespondentType(req.Type), req.Field, req.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

// POST /api/session/option
func (rt *Router) handleOption(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type  string `json:"type"`
		Field string `json:"field"`
		ID    string `json:"id"`
	}
	device, ok := rt.sessionRequest(w, r, &req)
	if !ok {
		return
	}
	s, err := rt.manager.ToggleOption(device, forms.RespondentType(req.Type), req.Field, req.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

// POST /api/session/score
func (rt *Router) handleScore(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type  string `json:"type"`
		Score int    `json:"score"`
	}
	device, ok := rt.sessionRequest(w, r, &req)
	if !ok {
		return
	}
	s, err := rt.manager.SetScore(device, forms.RespondentType(req.Type), req.Score)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

// POST /api/session/locale
func (rt *Router) handleLocale(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type   string `json:"type"`
		Locale string `json:"locale"`
	}
	device, ok := rt.sessionRequest(w, r, &req)
	if !ok {
		return
	}
	s, err := rt.manager.SetLocale(device, forms.RespondentType(req.Type), req.Locale)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

// POST /api/session/advance
func (rt *Router) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	device, ok := rt.sessionRequest(w, r, &req)
	if !ok {
		return
	}
	res, err := rt.manager.Advance(device, forms.RespondentType(req.Type))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"refused":  res.Refused,
		"terminal": res.Terminal,
		"session":  viewOf(res.Session),
	})
}

// POST /api/session/retreat
func (rt *Router) handleRetreat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	device, ok := rt.sessionRequest(w, r, &req)
	if !ok {
		return
	}
	s, err := rt.manager.Retreat(device, forms.RespondentType(req.Type))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(s))
}

// POST /api/session/submit
func (rt *Router) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type string `json:"type"`
	}
	device, ok := rt.sessionRequest(w, r, &req)
	if !ok {
		return
	}
	info := forms.DeviceInfo{
		UserAgent: r.UserAgent(),
		Language:  r.Header.Get("Accept-Language"),
	}
	outcome, err := rt.manager.Submit(r.Context(), device, forms.RespondentType(req.Type), rt.pipeline, info)
	if err != nil {
		if se, ok := forms.AsServiceError(err); ok && se.Code == forms.ErrorBadGateway {
			writeJSON(w, http.StatusBadGateway, map[string]string{
				"error":        se.Message,
				"notification": utils.T(localeOf(rt.manager, device, req.Type), "submit.error"),
			})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"redirect":     outcome.Redirect,
		"notification": utils.T(outcome.Redirect.Lang, "submit.success"),
	})
}

func localeOf(m *forms.Manager, device, respondentType string) string {
	if s := m.Peek(device, forms.RespondentType(respondentType)); s != nil {
		return s.Locale
	}
	return defaultLocale
}

// GET /api/device mints a device identifier for first-run clients.
func (rt *Router) handleDevice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"device_id": uuid.NewString()})
}

// GET /api/catalog?type=owner&lang=xx
func (rt *Router) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	locale := utils.DetermineLocale(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), forms.Locales, defaultLocale)
	type outOption struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}
	categories := map[string][]outOption{}
	for _, name := range rt.catalog.Categories() {
		ids := rt.catalog.IDs(name)
		opts := make([]outOption, 0, len(ids))
		for _, id := range ids {
			opts = append(opts, outOption{ID: id, Text: rt.catalog.Display(name, id, locale)})
		}
		categories[name] = opts
	}
	out := map[string]any{"locale": locale, "categories": categories}
	if t := forms.RespondentType(r.URL.Query().Get("type")); t.Valid() {
		type outField struct {
			Kind     string `json:"kind"`
			Label    string `json:"label"`
			Category string `json:"category,omitempty"`
			Multi    bool   `json:"multi,omitempty"`
		}
		fields := map[string]outField{}
		for name, def := range forms.FieldsFor(t) {
			fields[name] = outField{
				Kind:     string(def.Kind),
				Label:    def.Label,
				Category: def.Category,
				Multi:    def.Multi,
			}
		}
		out["type"] = string(t)
		out["steps"] = forms.StepNames(t)
		out["fields"] = fields
	}
	writeJSON(w, http.StatusOK, out)
}

// GET /api/confirmation?token=xx
func (rt *Router) handleConfirmation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	claims, err := token.Parse(rt.secret, r.URL.Query().Get("token"))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid confirmation token"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"name": claims.Name,
		"type": claims.Type,
		"lang": claims.Lang,
	})
}

// GET /api/submissions?type=owner
func (rt *Router) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	t := forms.RespondentType(r.URL.Query().Get("type"))
	if !t.Valid() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown respondent type"})
		return
	}
	recs, err := rt.archive.ListSubmissions(t)
	if err != nil {
		log.Printf("api: list submissions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if recs == nil {
		recs = []*forms.SubmissionRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"submissions": recs})
}

// GET /health
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	locale := utils.DetermineLocale(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), forms.Locales, forms.LocaleEnglish)
	writeJSON(w, http.StatusOK, map[string]string{"status": utils.T(locale, "health.ok")})
}
