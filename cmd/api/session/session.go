package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"car-passion/cmd/api/clients/authclient"
	"car-passion/cmd/api/clients/carclient"
	"car-passion/cmd/api/httpclient"
	"car-passion/logger"
)

// State is the gateway's knowledge of the dealership session.
type State int

const (
	// StateUnknown means the session has not been checked yet.
	StateUnknown State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

var (
	// ErrSessionConflict is returned when the API reports an active session
	// on login but check-session cannot confirm it for this visitor.
	ErrSessionConflict = errors.New("session: another session is already active")
	// ErrLoginRejected is returned when login answers 2xx without success.
	ErrLoginRejected = errors.New("session: login rejected")
	// ErrUserUnconfirmed is joined onto ErrLoginRejected when login reports
	// success without a user and check-session does not confirm one.
	ErrUserUnconfirmed = errors.New("session: login succeeded without a confirmed user")
)

// Session is one visitor. It owns a Remote Data Client whose cookie jar
// holds the visitor's dealership credentials.
type Session struct {
	ID   string
	API  *httpclient.BaseClient
	Cars *carclient.Client
	auth *authclient.Client

	mu       sync.Mutex
	state    State
	user     *authclient.User
	lastSeen time.Time
}

func New(id string, api *httpclient.BaseClient) *Session {
	return &Session{
		ID:       id,
		API:      api,
		Cars:     carclient.New(api),
		auth:     authclient.New(api),
		state:    StateUnknown,
		lastSeen: time.Now(),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *authclient.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) set(state State, user *authclient.User) {
	s.mu.Lock()
	s.state = state
	s.user = user
	s.mu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) seenAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Resolve asks the API whether the session is active and who it belongs to.
// Any failure resolves to StateAnonymous.
func (s *Session) Resolve(ctx context.Context) State {
	active, err := s.auth.CheckSession(ctx)
	if err != nil || !active {
		if err != nil {
			logger.DebugWithFields("session check failed", logger.Fields{"session_id": s.ID, "error": err.Error()})
		}
		s.set(StateAnonymous, nil)
		return StateAnonymous
	}
	user, err := s.auth.Me(ctx)
	if err != nil {
		logger.DebugWithFields("session me failed", logger.Fields{"session_id": s.ID, "error": err.Error()})
		s.set(StateAnonymous, nil)
		return StateAnonymous
	}
	s.set(StateAuthenticated, &user)
	return StateAuthenticated
}

// LoginResult reports a successful login.
type LoginResult struct {
	User *authclient.User
	// AlreadyActive is set when the API answered 409 and the existing
	// session was confirmed to belong to this visitor.
	AlreadyActive bool
}

func (s *Session) Login(ctx context.Context, username, password string) (LoginResult, error) {
	out, err := s.auth.Login(ctx, username, password)
	if errors.Is(err, authclient.ErrSessionAlreadyActive) {
		if s.Resolve(ctx) == StateAuthenticated {
			return LoginResult{User: s.User(), AlreadyActive: true}, nil
		}
		return LoginResult{}, ErrSessionConflict
	}
	if err != nil {
		s.set(StateAnonymous, nil)
		return LoginResult{}, err
	}
	if !out.Success {
		s.set(StateAnonymous, nil)
		if out.Message != "" {
			return LoginResult{}, errors.Join(ErrLoginRejected, errors.New(out.Message))
		}
		return LoginResult{}, ErrLoginRejected
	}

	user := out.User
	if user == nil {
		// some deployments omit the user on login
		if s.Resolve(ctx) == StateAuthenticated {
			return LoginResult{User: s.User()}, nil
		}
		s.set(StateAnonymous, nil)
		return LoginResult{}, errors.Join(ErrLoginRejected, ErrUserUnconfirmed)
	}
	s.set(StateAuthenticated, user)
	return LoginResult{User: s.User()}, nil
}

// Logout ends the remote session. State is only changed if the call succeeds.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.auth.Logout(ctx); err != nil {
		return err
	}
	s.set(StateAnonymous, nil)
	return nil
}
