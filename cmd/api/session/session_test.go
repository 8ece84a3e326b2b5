package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"car-passion/cmd/api/httpclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dealer fakes the auth endpoints. loginStatus controls POST /auth/login and
// active controls check-session.
type dealer struct {
	loginStatus int
	active      bool
	meFails     bool
	// omitUser answers login with success but no user and no session cookie.
	omitUser bool
}

func (d *dealer) handler(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/auth/login":
		if d.loginStatus != http.StatusOK {
			w.WriteHeader(d.loginStatus)
			_, _ = w.Write([]byte(`{"message":"login failed here"}`))
			return
		}
		if d.omitUser {
			_, _ = w.Write([]byte(`{"success":true}`))
			return
		}
		d.active = true
		_, _ = w.Write([]byte(`{"success":true,"user":{"username":"admin","role":"admin"}}`))
	case "/api/auth/logout":
		d.active = false
		_, _ = w.Write([]byte(`{"success":true}`))
	case "/api/auth/check-session":
		if d.active {
			_, _ = w.Write([]byte(`{"activeSession":true}`))
			return
		}
		_, _ = w.Write([]byte(`{"activeSession":false}`))
	case "/api/auth/me":
		if d.meFails {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"user":{"username":"admin","role":"admin"}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newSession(t *testing.T, d *dealer) *Session {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(d.handler))
	t.Cleanup(srv.Close)
	api := httpclient.NewBaseClient(srv.URL+"/api", httpclient.Config{Timeout: time.Second, RetryDelay: time.Millisecond})
	return New("sid", api)
}

func TestResolve(t *testing.T) {
	d := &dealer{active: false}
	s := newSession(t, d)
	assert.Equal(t, StateUnknown, s.State())

	assert.Equal(t, StateAnonymous, s.Resolve(context.Background()))
	assert.Nil(t, s.User())

	d.active = true
	assert.Equal(t, StateAuthenticated, s.Resolve(context.Background()))
	require.NotNil(t, s.User())
	assert.Equal(t, "admin", s.User().Username)

	d.meFails = true
	assert.Equal(t, StateAnonymous, s.Resolve(context.Background()))
}

func TestLoginAndLogout(t *testing.T) {
	d := &dealer{loginStatus: http.StatusOK}
	s := newSession(t, d)

	res, err := s.Login(context.Background(), "admin", "pw")
	require.NoError(t, err)
	assert.False(t, res.AlreadyActive)
	assert.Equal(t, StateAuthenticated, s.State())

	require.NoError(t, s.Logout(context.Background()))
	assert.Equal(t, StateAnonymous, s.State())
}

func TestLoginWithoutUserStaysAnonymous(t *testing.T) {
	d := &dealer{loginStatus: http.StatusOK, omitUser: true}
	s := newSession(t, d)

	res, err := s.Login(context.Background(), "admin", "pw")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoginRejected))
	assert.True(t, errors.Is(err, ErrUserUnconfirmed))
	assert.Nil(t, res.User)
	assert.Equal(t, StateAnonymous, s.State())
	assert.Nil(t, s.User())
}

func TestLoginWithoutUserConfirmedBySession(t *testing.T) {
	d := &dealer{loginStatus: http.StatusOK, omitUser: true, active: true}
	s := newSession(t, d)

	res, err := s.Login(context.Background(), "admin", "pw")
	require.NoError(t, err)
	require.NotNil(t, res.User)
	assert.Equal(t, "admin", res.User.Username)
	assert.Equal(t, StateAuthenticated, s.State())
}

func TestLoginConflictConfirmed(t *testing.T) {
	d := &dealer{loginStatus: http.StatusConflict, active: true}
	s := newSession(t, d)

	res, err := s.Login(context.Background(), "admin", "pw")
	require.NoError(t, err)
	assert.True(t, res.AlreadyActive)
	assert.Equal(t, StateAuthenticated, s.State())
}

func TestLoginConflictNotConfirmed(t *testing.T) {
	d := &dealer{loginStatus: http.StatusConflict, active: false}
	s := newSession(t, d)

	_, err := s.Login(context.Background(), "admin", "pw")
	assert.True(t, errors.Is(err, ErrSessionConflict))
	assert.Equal(t, StateAnonymous, s.State())
}

func TestLoginRejectedCarriesServerMessage(t *testing.T) {
	d := &dealer{loginStatus: http.StatusUnauthorized}
	s := newSession(t, d)

	_, err := s.Login(context.Background(), "admin", "bad")
	require.Error(t, err)
	assert.Equal(t, "login failed here", httpclient.Message(err))
	assert.Equal(t, StateAnonymous, s.State())
}

func TestLogoutFailureKeepsState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			_, _ = w.Write([]byte(`{"success":true,"user":{"username":"admin"}}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()
	s := New("sid", httpclient.NewBaseClient(srv.URL+"/api", httpclient.Config{Timeout: time.Second}))

	_, err := s.Login(context.Background(), "admin", "pw")
	require.NoError(t, err)
	assert.Error(t, s.Logout(context.Background()))
	assert.Equal(t, StateAuthenticated, s.State())
}
