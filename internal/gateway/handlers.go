// ABOUTME: HTTP handlers for the session API (create/destroy/get/set/list)
// ABOUTME: JSON request/response framing; variable names travel in bodies and query params

package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/2389/coven-vars/internal/audit"
	"github.com/2389/coven-vars/internal/vars"
)

// CreateSessionRequest is the JSON request body for POST /v1/sessions.
type CreateSessionRequest struct {
	// ConfigDir holds the directory containing variables.json; empty
	// selects the daemon's default store path.
	ConfigDir string `json:"config_dir,omitempty"`
}

// CreateSessionResponse is the JSON response for POST /v1/sessions.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	StorePath string `json:"store_path"`
}

// GetVarResponse is the JSON response for GET /v1/sessions/{id}/vars?name=N.
type GetVarResponse struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Found bool   `json:"found"`
}

// SetVarRequest is the JSON request body for PUT /v1/sessions/{id}/vars.
type SetVarRequest struct {
	Name string `json:"name"`
	// Value is the literal text; it goes through the same coercion as
	// an assignment typed at the REPL.
	Value string `json:"value"`
}

// SetVarResponse is the JSON response for PUT /v1/sessions/{id}/vars.
type SetVarResponse struct {
	OK bool `json:"ok"`
}

// ProcessRequest is the JSON request body for POST /v1/sessions/{id}/process.
type ProcessRequest struct {
	Line string `json:"line"`
}

// ProcessResponse is the JSON response for POST /v1/sessions/{id}/process.
type ProcessResponse struct {
	Text     string `json:"text"`
	Assigned bool   `json:"assigned"`
}

// handleHealth handles GET /healthz.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": g.sessions.count(),
	})
}

// handleCreateSession handles POST /v1/sessions. Creation never fails:
// a missing or unreadable store file yields an empty session store.
func (g *Gateway) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := decodeJSONBody(r.Body, &req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	s := g.sessions.create(req.ConfigDir)
	g.logger.Info("session created", "session_id", s.id, "path", s.store.Path())
	g.record(r.Context(), audit.Entry{
		Action:    audit.ActionCreateSession,
		SessionID: s.id,
		Target:    s.store.Path(),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(CreateSessionResponse{
		SessionID: s.id,
		StorePath: s.store.Path(),
	})
}

// handleDestroySession handles DELETE /v1/sessions/{id}. Destroying an
// unknown handle is a successful no-op.
func (g *Gateway) handleDestroySession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	g.sessions.destroy(id)
	g.record(r.Context(), audit.Entry{
		Action:    audit.ActionDestroySession,
		SessionID: id,
	})
	w.WriteHeader(http.StatusNoContent)
}

// handleVars handles GET /v1/sessions/{id}/vars. With a name query
// parameter it returns that variable's rendered value (empty for absent
// names); without one it returns the full store as a raw JSON object.
func (g *Gateway) handleVars(w http.ResponseWriter, r *http.Request) {
	s := g.sessions.get(r.PathValue("id"))
	if s == nil {
		g.sendJSONError(w, http.StatusNotFound, "unknown session")
		return
	}

	query := r.URL.Query()
	if !query.Has("name") {
		g.listVars(w, s)
		return
	}

	name := query.Get("name")
	resp := GetVarResponse{Name: name}
	if v, ok := s.store.Get(name); ok {
		resp.Value = v.Render()
		resp.Found = true
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// listVars writes the store content in its persisted form.
func (g *Gateway) listVars(w http.ResponseWriter, s *session) {
	data, err := s.store.JSON()
	if err != nil {
		g.sendJSONError(w, http.StatusInternalServerError, "encoding variables")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// handleSetVar handles PUT /v1/sessions/{id}/vars. The in-memory write
// always succeeds for a live session; a persistence failure is logged
// and does not change the reported outcome.
func (g *Gateway) handleSetVar(w http.ResponseWriter, r *http.Request) {
	s := g.sessions.get(r.PathValue("id"))
	if s == nil {
		g.sendJSONError(w, http.StatusNotFound, "unknown session")
		return
	}

	var req SetVarRequest
	if err := decodeJSONBody(r.Body, &req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.Set(req.Name, vars.Coerce(req.Value)); err != nil {
		g.logger.Warn("variable not persisted", "session_id", s.id, "name", req.Name, "error", err)
	}
	g.record(r.Context(), audit.Entry{
		Action:    audit.ActionSetVariable,
		SessionID: s.id,
		Target:    req.Name,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SetVarResponse{OK: true})
}

// handleProcess handles POST /v1/sessions/{id}/process, funneling a
// free-form line through the same processor the REPL uses.
func (g *Gateway) handleProcess(w http.ResponseWriter, r *http.Request) {
	s := g.sessions.get(r.PathValue("id"))
	if s == nil {
		g.sendJSONError(w, http.StatusNotFound, "unknown session")
		return
	}

	var req ProcessRequest
	if err := decodeJSONBody(r.Body, &req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	res := s.processor.Process(req.Line)
	if res.Assigned {
		g.record(r.Context(), audit.Entry{
			Action:    audit.ActionSetVariable,
			SessionID: s.id,
			Target:    res.Name,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ProcessResponse{Text: res.Text, Assigned: res.Assigned})
}

// decodeJSONBody parses a JSON request body. An empty body decodes to
// the zero value.
func decodeJSONBody(body io.Reader, dst any) error {
	err := json.NewDecoder(body).Decode(dst)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// sendJSONError writes a JSON error response.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
