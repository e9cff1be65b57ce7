// Package scope owns the single "currently selected subject" that gates the
// scoped dashboard views. The Scope store is its only writer; dependents read
// consistent copies and subscribe to changes.
package scope

import (
	"sync"

	"github.com/rs/zerolog/log"

	"insightwatch/internal/api"
)

// Subject is the monitored user a detail view is scoped to.
type Subject struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name,omitempty"`
	Department  string `json:"department,omitempty"`
	DeviceID    string `json:"device_id,omitempty"`
	RoleKey     string `json:"role_key,omitempty"`
}

// CanonicalKey picks the identifier all scoped queries must use: the
// normalized form when present, else the raw form. Using anything else
// produces scope mismatches from case/format differences.
func CanonicalKey(normalized, raw string) string {
	if normalized != "" {
		return normalized
	}
	return raw
}

// SubjectFromUser builds a Subject from a backend user record.
func SubjectFromUser(u *api.UserPayload) Subject {
	if u == nil {
		return Subject{}
	}
	deviceID := u.UserMacID
	if deviceID == "" {
		deviceID = u.ID
	}
	return Subject{
		Key:         CanonicalKey(u.CompanyUsernameNorm, u.CompanyUsername),
		DisplayName: u.FullName,
		Department:  u.Department,
		DeviceID:    deviceID,
		RoleKey:     u.RoleKey,
	}
}

// Scope holds at most one active Subject process-wide. Set replaces it
// atomically; readers never observe a half-updated subject.
type Scope struct {
	mu        sync.RWMutex
	subject   *Subject
	listeners []func()
}

func New() *Scope {
	return &Scope{}
}

// OnChange registers a listener fired whenever the selection actually
// changes. Reselecting the same canonical key does not fire it, so identical
// reselection never triggers a redundant refetch downstream.
func (s *Scope) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Get returns a copy of the active subject, or nil when none is selected.
func (s *Scope) Get() *Subject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.subject == nil {
		return nil
	}
	sub := *s.subject
	return &sub
}

// Key returns the active canonical key, or "".
func (s *Scope) Key() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.subject == nil {
		return ""
	}
	return s.subject.Key
}

// HasSelection reports whether a subject is active.
func (s *Scope) HasSelection() bool {
	return s.Key() != ""
}

// Set replaces the active subject. Comparison is by canonical key, not
// object identity: setting the same key twice is a silent no-op.
func (s *Scope) Set(subject Subject) {
	s.mu.Lock()
	if s.subject != nil && s.subject.Key == subject.Key {
		s.mu.Unlock()
		return
	}
	s.subject = &subject
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()

	log.Debug().Str("subject", subject.Key).Msg("Selected subject changed")
	for _, fn := range listeners {
		fn()
	}
}

// Clear drops the active subject.
func (s *Scope) Clear() {
	s.mu.Lock()
	if s.subject == nil {
		s.mu.Unlock()
		return
	}
	s.subject = nil
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()

	log.Debug().Msg("Selected subject cleared")
	for _, fn := range listeners {
		fn()
	}
}
