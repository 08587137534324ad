package websocket

import (
	"sync"

	"go.uber.org/zap"

	"github.com/khaliya-ai/callbridge/domain/entities"
)

// Registry tracks the set of live call sessions. Calls share nothing but
// this read-mostly index; each session is owned by exactly one stream
// handler.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entities.CallSession
	logger   *zap.Logger
}

// NewRegistry creates an empty call registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*entities.CallSession),
		logger:   logger,
	}
}

// Register adds a live call session.
func (r *Registry) Register(call *entities.CallSession) {
	r.mu.Lock()
	r.sessions[call.CallSID] = call
	r.mu.Unlock()
	r.logger.Info("Call registered", zap.String("call_sid", call.CallSID))
}

// Unregister removes a call session once its socket closes.
func (r *Registry) Unregister(callSID string) {
	r.mu.Lock()
	delete(r.sessions, callSID)
	r.mu.Unlock()
	r.logger.Info("Call unregistered", zap.String("call_sid", callSID))
}

// Get returns the live session for a call identifier, if any.
func (r *Registry) Get(callSID string) (*entities.CallSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	call, ok := r.sessions[callSID]
	return call, ok
}

// Count returns the number of live calls.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
