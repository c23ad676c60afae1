package internal

import "sync"

// SessionState is a snapshot of the authentication state
type SessionState struct {
	User            *User
	IsAuthenticated bool
	IsInitialized   bool
}

// Session holds the process-wide authentication state. IsInitialized turns
// true on the first SetUser or ClearAuth and never reverts.
type Session struct {
	mu          sync.RWMutex
	state       SessionState
	subscribers []func(SessionState)
}

// NewSession returns an uninitialized, unauthenticated session.
func NewSession() *Session {
	return &Session{}
}

// SetUser marks the session authenticated as user. A nil user is treated as ClearAuth.
func (s *Session) SetUser(user *User) {
	if user == nil {
		s.ClearAuth()
		return
	}
	u := *user
	s.transition(SessionState{User: &u, IsAuthenticated: true, IsInitialized: true})
}

// ClearAuth drops the user and marks the session unauthenticated.
func (s *Session) ClearAuth() {
	s.transition(SessionState{IsInitialized: true})
}

func (s *Session) transition(next SessionState) {
	s.mu.Lock()
	s.state = next
	subs := make([]func(SessionState), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	// subscribers run outside the lock so they may read the session
	for _, fn := range subs {
		fn(next)
	}
}

// State returns a copy of the current state.
func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

// User returns the current user or nil.
func (s *Session) User() *User {
	return s.State().User
}

// IsAuthenticated reports whether a user is set.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated
}

// IsInitialized reports whether startup validation has resolved.
func (s *Session) IsInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsInitialized
}

// Subscribe registers fn to be called after every transition.
func (s *Session) Subscribe(fn func(SessionState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}
