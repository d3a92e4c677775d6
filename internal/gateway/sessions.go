// ABOUTME: Session registry mapping opaque handles to variable stores
// ABOUTME: Each session owns an independent store; no process-wide singleton

package gateway

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/2389/coven-vars/internal/interp"
	"github.com/2389/coven-vars/internal/vars"
)

// session binds one handle to one store instance.
type session struct {
	id        string
	store     *vars.Store
	processor *interp.Processor
	createdAt time.Time
}

// sessionRegistry tracks live sessions. Creating a session always
// succeeds: a missing or corrupt store file yields an empty store.
type sessionRegistry struct {
	mu          sync.Mutex
	sessions    map[string]*session
	defaultPath string
}

func newSessionRegistry(defaultPath string) *sessionRegistry {
	return &sessionRegistry{
		sessions:    make(map[string]*session),
		defaultPath: defaultPath,
	}
}

// create binds a new session to configDir/variables.json, or to the
// registry's default path when configDir is empty.
func (r *sessionRegistry) create(configDir string) *session {
	path := r.defaultPath
	if configDir != "" {
		path = filepath.Join(configDir, vars.StoreFileName)
	}

	store := vars.Open(path)
	s := &session{
		id:        uuid.NewString(),
		store:     store,
		processor: interp.New(store),
		createdAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()
	return s
}

// get returns the session for id, or nil when the handle is unknown.
func (r *sessionRegistry) get(id string) *session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

// destroy releases the session. Unknown handles are a no-op, so the
// operation is idempotent.
func (r *sessionRegistry) destroy(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// destroyAll releases every session.
func (r *sessionRegistry) destroyAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.sessions)
}

// count returns the number of live sessions.
func (r *sessionRegistry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
