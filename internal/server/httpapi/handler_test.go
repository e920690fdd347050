package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avolkovs/healthtrack/internal/common"
	"github.com/avolkovs/healthtrack/internal/logging"
	"github.com/avolkovs/healthtrack/internal/server/auth"
	"github.com/avolkovs/healthtrack/internal/server/models"
	"github.com/avolkovs/healthtrack/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSessions struct {
	registerFn func(ctx context.Context, p services.RegisterParams) (*services.AuthResult, error)
	loginFn    func(ctx context.Context, email, password string) (*services.AuthResult, error)
	refreshFn  func(ctx context.Context, refreshToken string) (*services.AuthResult, error)
	logoutFn   func(ctx context.Context, subjectEmail string) error
}

func (s *stubSessions) Register(ctx context.Context, p services.RegisterParams) (*services.AuthResult, error) {
	return s.registerFn(ctx, p)
}

func (s *stubSessions) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubSessions) Refresh(ctx context.Context, refreshToken string) (*services.AuthResult, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubSessions) Logout(ctx context.Context, subjectEmail string) error {
	return s.logoutFn(ctx, subjectEmail)
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testAuthResult(email string) *services.AuthResult {
	return &services.AuthResult{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    common.TokenTypeBearer,
		ExpiresIn:    900,
		User:         &models.User{ID: "u1", Email: email},
	}
}

func newTestServer(t *testing.T, sessions SessionManager) (*httptest.Server, *auth.TokenCodec) {
	t.Helper()

	codec := auth.NewTokenCodec([]byte("secret"), 15*time.Minute)
	s, err := NewServer(":0", testLogger(), sessions, codec)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts, codec
}

func postJSON(t *testing.T, url string, body any, header http.Header) *http.Response {
	t.Helper()

	buf, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(buf))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, vv := range header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeResponse(t *testing.T, resp *http.Response) apiResponse {
	t.Helper()
	defer resp.Body.Close()

	var body apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHandleRegister(t *testing.T) {
	var got services.RegisterParams
	sessions := &stubSessions{
		registerFn: func(_ context.Context, p services.RegisterParams) (*services.AuthResult, error) {
			got = p
			return testAuthResult(p.Email), nil
		},
	}
	ts, _ := newTestServer(t, sessions)

	resp := postJSON(t, ts.URL+"/api/v1/auth/register", map[string]string{
		"name":        "Alice",
		"email":       "alice@example.com",
		"password":    "s3cret",
		"phoneNumber": "+371200000",
		"dateOfBirth": "1990-04-01",
		"gender":      "female",
	}, nil)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	body := decodeResponse(t, resp)
	assert.True(t, body.Success)

	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, "Alice", got.Name)
	require.NotNil(t, got.DateOfBirth)
	assert.Equal(t, 1990, got.DateOfBirth.Year())

	data, ok := body.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "access", data["accessToken"])
	assert.Equal(t, "refresh", data["refreshToken"])
	assert.Equal(t, common.TokenTypeBearer, data["tokenType"])

	user, ok := data["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", user["email"])
}

func TestHandleRegisterValidation(t *testing.T) {
	sessions := &stubSessions{
		registerFn: func(_ context.Context, p services.RegisterParams) (*services.AuthResult, error) {
			t.Error("service must not be called")
			return nil, common.ErrorInternal
		},
	}
	ts, _ := newTestServer(t, sessions)

	tests := []struct {
		name string
		body map[string]string
	}{
		{name: "missing email", body: map[string]string{"password": "x"}},
		{name: "missing password", body: map[string]string{"email": "a@b.c"}},
		{name: "bad date", body: map[string]string{"email": "a@b.c", "password": "x", "dateOfBirth": "April 1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/v1/auth/register", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decodeResponse(t, resp)
			assert.False(t, body.Success)
		})
	}
}

func TestHandleRegisterDuplicateEmail(t *testing.T) {
	sessions := &stubSessions{
		registerFn: func(_ context.Context, p services.RegisterParams) (*services.AuthResult, error) {
			return nil, common.ErrDuplicateEmail
		},
	}
	ts, _ := newTestServer(t, sessions)

	resp := postJSON(t, ts.URL+"/api/v1/auth/register",
		map[string]string{"email": "a@b.c", "password": "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeResponse(t, resp)
	assert.False(t, body.Success)
	assert.Equal(t, common.ErrDuplicateEmail.Error(), body.Message)
}

func TestHandleLogin(t *testing.T) {
	sessions := &stubSessions{
		loginFn: func(_ context.Context, email, password string) (*services.AuthResult, error) {
			if email == "alice@example.com" && password == "s3cret" {
				return testAuthResult(email), nil
			}
			return nil, common.ErrInvalidCredentials
		},
	}
	ts, _ := newTestServer(t, sessions)

	resp := postJSON(t, ts.URL+"/api/v1/auth/login",
		map[string]string{"email": "alice@example.com", "password": "s3cret"}, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeResponse(t, resp).Success)

	resp = postJSON(t, ts.URL+"/api/v1/auth/login",
		map[string]string{"email": "alice@example.com", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, decodeResponse(t, resp).Success)
}

func TestHandleRefresh(t *testing.T) {
	sessions := &stubSessions{
		refreshFn: func(_ context.Context, refreshToken string) (*services.AuthResult, error) {
			switch refreshToken {
			case "live":
				return testAuthResult("alice@example.com"), nil
			case "revoked":
				return nil, common.ErrTokenRevoked
			case "expired":
				return nil, common.ErrTokenExpired
			default:
				return nil, common.ErrInvalidToken
			}
		},
	}
	ts, _ := newTestServer(t, sessions)

	tests := []struct {
		token      string
		wantStatus int
	}{
		{token: "live", wantStatus: http.StatusOK},
		{token: "revoked", wantStatus: http.StatusUnauthorized},
		{token: "expired", wantStatus: http.StatusUnauthorized},
		{token: "unknown", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			resp := postJSON(t, ts.URL+"/api/v1/auth/refresh",
				map[string]string{"refreshToken": tt.token}, nil)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}

	// empty token is rejected before the service is reached
	resp := postJSON(t, ts.URL+"/api/v1/auth/refresh", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleLogout(t *testing.T) {
	var loggedOut string
	sessions := &stubSessions{
		logoutFn: func(_ context.Context, subjectEmail string) error {
			loggedOut = subjectEmail
			return nil
		},
	}
	ts, codec := newTestServer(t, sessions)

	access, err := codec.Issue("alice@example.com", nil)
	require.NoError(t, err)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+access)

	resp := postJSON(t, ts.URL+"/api/v1/auth/logout", map[string]string{}, header)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeResponse(t, resp).Success)
	assert.Equal(t, "alice@example.com", loggedOut)
}

func TestHandleLogoutUnknownUser(t *testing.T) {
	sessions := &stubSessions{
		logoutFn: func(_ context.Context, subjectEmail string) error {
			return common.ErrUserNotFound
		},
	}
	ts, codec := newTestServer(t, sessions)

	access, err := codec.Issue("ghost@example.com", nil)
	require.NoError(t, err)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+access)

	resp := postJSON(t, ts.URL+"/api/v1/auth/logout", map[string]string{}, header)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleHealth(t *testing.T) {
	ts, _ := newTestServer(t, &stubSessions{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeResponse(t, resp).Success)
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, &stubSessions{})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
