// Package mock provides test doubles for mesa interfaces using function fields.
package mock

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mesabot/mesa"
)

// Interface compliance checks.
var (
	_ mesa.Provider         = (*Provider)(nil)
	_ mesa.ToolExecutor     = (*ToolExecutor)(nil)
	_ mesa.ReservationStore = (*ReservationStore)(nil)
	_ mesa.SessionStore     = (*SessionStore)(nil)
)

// Provider is a test double for mesa.Provider.
// Set ChatFn before calling Chat.
type Provider struct {
	ChatFn func(ctx context.Context, req mesa.Request) (mesa.AssistantMessage, error)
}

// Chat delegates to ChatFn.
func (p *Provider) Chat(ctx context.Context, req mesa.Request) (mesa.AssistantMessage, error) {
	return p.ChatFn(ctx, req)
}

// ToolExecutor is a test double for mesa.ToolExecutor.
// Set ExecuteFn before calling Execute.
type ToolExecutor struct {
	ExecuteFn func(ctx context.Context, name string, args json.RawMessage) (*mesa.ToolResult, error)
}

// Execute delegates to ExecuteFn.
func (e *ToolExecutor) Execute(ctx context.Context, name string, args json.RawMessage) (*mesa.ToolResult, error) {
	return e.ExecuteFn(ctx, name, args)
}

// ReservationStore is a test double for mesa.ReservationStore.
// Set the function fields for the operations you need.
type ReservationStore struct {
	CreateFn func(ctx context.Context, req mesa.ReservationRequest) (*mesa.Reservation, error)
	UpdateFn func(ctx context.Context, id string, patch mesa.ReservationPatch) (*mesa.Reservation, error)
	CancelFn func(ctx context.Context, id string, note string) (*mesa.Reservation, error)
}

// Create delegates to CreateFn.
func (s *ReservationStore) Create(ctx context.Context, req mesa.ReservationRequest) (*mesa.Reservation, error) {
	return s.CreateFn(ctx, req)
}

// Update delegates to UpdateFn.
func (s *ReservationStore) Update(ctx context.Context, id string, patch mesa.ReservationPatch) (*mesa.Reservation, error) {
	return s.UpdateFn(ctx, id, patch)
}

// Cancel delegates to CancelFn.
func (s *ReservationStore) Cancel(ctx context.Context, id string, note string) (*mesa.Reservation, error) {
	return s.CancelFn(ctx, id, note)
}

// SessionStore is an in-memory test double for mesa.SessionStore. The
// zero value is usable; GetFn/PutFn override the map-backed behavior.
// The map-backed behavior is safe for concurrent use.
type SessionStore struct {
	GetFn func(ctx context.Context, id string) (*mesa.Session, error)
	PutFn func(ctx context.Context, s *mesa.Session) error

	mu       sync.Mutex
	Sessions map[string]*mesa.Session
}

// Get delegates to GetFn when set, otherwise reads the Sessions map.
func (s *SessionStore) Get(ctx context.Context, id string) (*mesa.Session, error) {
	if s.GetFn != nil {
		return s.GetFn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.Sessions[id]
	if !ok {
		return nil, mesa.ErrSessionNotFound
	}
	return sess, nil
}

// Put delegates to PutFn when set, otherwise writes the Sessions map.
func (s *SessionStore) Put(ctx context.Context, sess *mesa.Session) error {
	if s.PutFn != nil {
		return s.PutFn(ctx, sess)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Sessions == nil {
		s.Sessions = make(map[string]*mesa.Session)
	}
	s.Sessions[sess.ID] = sess
	return nil
}
