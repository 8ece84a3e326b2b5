package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"car-passion/cmd/api/dto"
	"car-passion/cmd/api/session"
)

func authEngine(t *testing.T, routes map[string]http.HandlerFunc) (*dealer, *session.Session, http.Handler) {
	d := newDealer(t, routes)
	sess := newVisitor(d.srv.URL)
	r := newEngine(sess)
	r.POST("/auth/login", LoginHandler())
	r.POST("/auth/logout", LogoutHandler())
	r.GET("/auth/session", SessionHandler())
	return d, sess, r
}

func TestLoginHandler(t *testing.T) {
	testCases := []struct {
		name       string
		routes     map[string]http.HandlerFunc
		body       string
		wantStatus int
		wantError  string
		wantState  session.State
	}{
		{
			name: "success",
			routes: map[string]http.HandlerFunc{
				"POST /auth/login": jsonReply(http.StatusOK, `{"success":true,"user":{"_id":"u1","username":"admin","role":"admin"}}`),
			},
			body:       `{"username":"admin","password":"pw"}`,
			wantStatus: http.StatusOK,
			wantState:  session.StateAuthenticated,
		},
		{
			name:       "missing credentials",
			body:       `{"username":"  "}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Please enter username and password",
			wantState:  session.StateUnknown,
		},
		{
			name: "wrong password keeps server message",
			routes: map[string]http.HandlerFunc{
				"POST /auth/login": jsonReply(http.StatusUnauthorized, `{"message":"Invalid credentials"}`),
			},
			body:       `{"username":"admin","password":"bad"}`,
			wantStatus: http.StatusUnauthorized,
			wantError:  "Invalid credentials",
			wantState:  session.StateAnonymous,
		},
		{
			name: "rejected without error status",
			routes: map[string]http.HandlerFunc{
				"POST /auth/login": jsonReply(http.StatusOK, `{"success":false,"message":"Account locked"}`),
			},
			body:       `{"username":"admin","password":"pw"}`,
			wantStatus: http.StatusUnauthorized,
			wantError:  "Account locked",
			wantState:  session.StateAnonymous,
		},
		{
			name: "success without user and no session",
			routes: map[string]http.HandlerFunc{
				"POST /auth/login":        jsonReply(http.StatusOK, `{"success":true}`),
				"GET /auth/check-session": jsonReply(http.StatusOK, `{"activeSession":false}`),
			},
			body:       `{"username":"admin","password":"pw"}`,
			wantStatus: http.StatusUnauthorized,
			wantError:  "Login could not be confirmed",
			wantState:  session.StateAnonymous,
		},
		{
			name: "conflict not confirmed",
			routes: map[string]http.HandlerFunc{
				"POST /auth/login":        jsonReply(http.StatusConflict, `{"message":"Session already active"}`),
				"GET /auth/check-session": jsonReply(http.StatusOK, `{"activeSession":false}`),
			},
			body:       `{"username":"admin","password":"pw"}`,
			wantStatus: http.StatusConflict,
			wantState:  session.StateAnonymous,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, sess, r := authEngine(t, tc.routes)

			w := do(r, http.MethodPost, "/auth/login", "application/json", []byte(tc.body))
			require.Equal(t, tc.wantStatus, w.Code, w.Body.String())
			if tc.wantError != "" {
				assert.Equal(t, tc.wantError, decode[dto.ErrorResponseDTO](t, w).Error)
			}
			assert.Equal(t, tc.wantState, sess.State())
		})
	}
}

func TestLoginHandlerConfirmedConflict(t *testing.T) {
	_, sess, r := authEngine(t, map[string]http.HandlerFunc{
		"POST /auth/login":        jsonReply(http.StatusConflict, `{"message":"Session already active"}`),
		"GET /auth/check-session": jsonReply(http.StatusOK, `{"activeSession":true}`),
		"GET /auth/me":            jsonReply(http.StatusOK, `{"user":{"_id":"u1","username":"admin"}}`),
	})

	w := do(r, http.MethodPost, "/auth/login", "application/json", []byte(`{"username":"admin","password":"pw"}`))
	require.Equal(t, http.StatusOK, w.Code)

	out := decode[dto.LoginResponseDTO](t, w)
	assert.True(t, out.Success)
	assert.True(t, out.AlreadyActive)
	require.NotNil(t, out.User)
	assert.Equal(t, "admin", out.User.Username)
	assert.Equal(t, session.StateAuthenticated, sess.State())
}

func TestSessionHandlerResolvesOnce(t *testing.T) {
	d, _, r := authEngine(t, map[string]http.HandlerFunc{
		"GET /auth/check-session": jsonReply(http.StatusOK, `{"activeSession":false}`),
	})

	w := do(r, http.MethodGet, "/auth/session", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	out := decode[dto.SessionDTO](t, w)
	assert.Equal(t, "anonymous", out.State)
	assert.False(t, out.Authenticated)
	assert.Nil(t, out.User)

	w = do(r, http.MethodGet, "/auth/session", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, d.count())
}

func TestLogoutHandler(t *testing.T) {
	_, sess, r := authEngine(t, map[string]http.HandlerFunc{
		"POST /auth/login":  jsonReply(http.StatusOK, `{"success":true,"user":{"username":"admin"}}`),
		"POST /auth/logout": jsonReply(http.StatusOK, `{"success":true}`),
	})

	require.Equal(t, http.StatusOK, do(r, http.MethodPost, "/auth/login", "application/json", []byte(`{"username":"admin","password":"pw"}`)).Code)
	require.Equal(t, session.StateAuthenticated, sess.State())

	w := do(r, http.MethodPost, "/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session.StateAnonymous, sess.State())
}

func TestRejectionMessage(t *testing.T) {
	assert.Equal(t, "Login failed", rejectionMessage(session.ErrLoginRejected))
	assert.Equal(t, "nope", rejectionMessage(errors.Join(session.ErrLoginRejected, errors.New("nope"))))
	assert.Equal(t, "Login could not be confirmed",
		rejectionMessage(errors.Join(session.ErrLoginRejected, session.ErrUserUnconfirmed)))
}
