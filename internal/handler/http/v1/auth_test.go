package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shenikar/incident_assistant/internal/models"
	"github.com/shenikar/incident_assistant/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func responseCookies(w *httptest.ResponseRecorder) map[string]*http.Cookie {
	cookies := make(map[string]*http.Cookie)
	for _, cookie := range w.Result().Cookies() {
		cookies[cookie.Name] = cookie
	}
	return cookies
}

func TestRegister_Success(t *testing.T) {
	_, _, mockAuth, router := newTestHandler(t)

	mockAuth.EXPECT().
		Register(gomock.Any(), service.RegisterInput{
			Email:    "new@plant.local",
			Password: "pa55word",
			Name:     "Новый",
		}).
		Return(&models.User{ID: 3, Email: "new@plant.local", Role: models.RoleOperator}, nil).Times(1)

	body := `{"email":"new@plant.local","password":"pa55word","name":"Новый"}`
	w := makeRequest(router, http.MethodPost, "/auth/register", bytes.NewBufferString(body))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"user created"}`, w.Body.String())
}

func TestRegister_WithRole(t *testing.T) {
	_, _, mockAuth, router := newTestHandler(t)

	mockAuth.EXPECT().
		Register(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, input service.RegisterInput) (*models.User, error) {
			assert.Equal(t, models.RoleAdmin, input.Role)
			return &models.User{ID: 4, Role: models.RoleAdmin}, nil
		}).Times(1)

	body := `{"email":"boss@plant.local","password":"pa55word","name":"Главный","role":"admin"}`
	w := makeRequest(router, http.MethodPost, "/auth/register", bytes.NewBufferString(body))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRegister_Conflict(t *testing.T) {
	_, _, mockAuth, router := newTestHandler(t)

	mockAuth.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, models.ErrUserExists).Times(1)

	body := `{"email":"taken@plant.local","password":"pa55word","name":"Дубль"}`
	w := makeRequest(router, http.MethodPost, "/auth/register", bytes.NewBufferString(body))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "user already exists", decodeError(t, w))
}

func TestRegister_ValidationError(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad email", `{"email":"not-an-email","password":"pa55word","name":"x"}`},
		{"short password", `{"email":"a@plant.local","password":"123","name":"x"}`},
		{"unknown role", `{"email":"a@plant.local","password":"pa55word","name":"x","role":"root"}`},
		{"missing name", `{"email":"a@plant.local","password":"pa55word"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, mockAuth, router := newTestHandler(t)

			mockAuth.EXPECT().Register(gomock.Any(), gomock.Any()).Times(0)

			w := makeRequest(router, http.MethodPost, "/auth/register", bytes.NewBufferString(tt.body))

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegister_PasswordTooLongInBytes(t *testing.T) {
	_, _, mockAuth, router := newTestHandler(t)

	mockAuth.EXPECT().Register(gomock.Any(), gomock.Any()).Times(0)

	body := `{"email":"a@plant.local","password":"` + strings.Repeat("я", 40) + `","name":"Иван"}`
	w := makeRequest(router, http.MethodPost, "/auth/register", bytes.NewBufferString(body))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "password is too long", decodeError(t, w))
}

func TestLogin_Success(t *testing.T) {
	_, _, mockAuth, router := newTestHandler(t)
	pair := &service.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"}

	mockAuth.EXPECT().
		Login(gomock.Any(), "operator@plant.local", "pa55word").
		Return(testOperator, pair, nil).Times(1)

	body := `{"email":"operator@plant.local","password":"pa55word"}`
	w := makeRequest(router, http.MethodPost, "/auth/login", bytes.NewBufferString(body))

	require.Equal(t, http.StatusOK, w.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "new-access", resp.AccessToken)
	assert.Equal(t, "new-refresh", resp.RefreshToken)

	cookies := responseCookies(w)
	require.Contains(t, cookies, AccessTokenCookie)
	require.Contains(t, cookies, RefreshTokenCookie)
	assert.Equal(t, "new-access", cookies[AccessTokenCookie].Value)
	assert.Equal(t, "new-refresh", cookies[RefreshTokenCookie].Value)
	assert.True(t, cookies[AccessTokenCookie].HttpOnly)
	assert.True(t, cookies[RefreshTokenCookie].HttpOnly)
	assert.Equal(t, 7*24*60*60, cookies[RefreshTokenCookie].MaxAge)
}

func TestLogin_UnknownEmail(t *testing.T) {
	_, _, mockAuth, router := newTestHandler(t)

	mockAuth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil, models.ErrUserNotFound).Times(1)

	body := `{"email":"ghost@plant.local","password":"pa55word"}`
	w := makeRequest(router, http.MethodPost, "/auth/login", bytes.NewBufferString(body))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "user not found", decodeError(t, w))
	assert.Empty(t, responseCookies(w))
}

func TestLogin_WrongPassword(t *testing.T) {
	_, _, mockAuth, router := newTestHandler(t)

	mockAuth.EXPECT().Login(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil, service.ErrInvalidCredentials).Times(1)

	body := `{"email":"operator@plant.local","password":"wrong"}`
	w := makeRequest(router, http.MethodPost, "/auth/login", bytes.NewBufferString(body))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, responseCookies(w))
}

func TestLogout_ClearsBothCookies(t *testing.T) {
	_, _, mockAuth, router := newTestHandler(t)

	mockAuth.EXPECT().Logout(gomock.Any(), "old-refresh").Return(nil).Times(1)

	w := makeRequest(router, http.MethodPost, "/auth/logout", nil, map[string]string{
		"Cookie": AccessTokenCookie + "=old-access; " + RefreshTokenCookie + "=old-refresh",
	})

	require.Equal(t, http.StatusOK, w.Code)
	cookies := responseCookies(w)
	require.Contains(t, cookies, AccessTokenCookie)
	require.Contains(t, cookies, RefreshTokenCookie)
	assert.Empty(t, cookies[AccessTokenCookie].Value)
	assert.Empty(t, cookies[RefreshTokenCookie].Value)
	assert.Less(t, cookies[AccessTokenCookie].MaxAge, 0)
	assert.Less(t, cookies[RefreshTokenCookie].MaxAge, 0)
}

func TestLogout_RevocationFails(t *testing.T) {
	_, _, mockAuth, router := newTestHandler(t)

	mockAuth.EXPECT().Logout(gomock.Any(), "old-refresh").Return(errors.New("redis down")).Times(1)

	w := makeRequest(router, http.MethodPost, "/auth/logout", nil, map[string]string{
		"Cookie": RefreshTokenCookie + "=old-refresh",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, responseCookies(w), RefreshTokenCookie)
}

func TestMe_Success(t *testing.T) {
	_, _, mockAuth, router := newTestHandler(t)

	mockAuth.EXPECT().
		ResolveSession(gomock.Any(), service.Credentials{AccessToken: "access-token"}).
		Return(&service.Session{User: testOperator}, nil).Times(1)

	w := makeRequest(router, http.MethodGet, "/auth/me", nil, sessionCookie)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":7,"email":"operator@plant.local","name":"Оператор","role":"operator"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "hashed_password")
}

func TestMe_BearerFallback(t *testing.T) {
	_, _, mockAuth, router := newTestHandler(t)

	mockAuth.EXPECT().
		ResolveSession(gomock.Any(), service.Credentials{AccessToken: "header-token"}).
		Return(&service.Session{User: testOperator}, nil).Times(1)

	w := makeRequest(router, http.MethodGet, "/auth/me", nil, map[string]string{"Authorization": "Bearer header-token"})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMe_CookieWinsOverHeader(t *testing.T) {
	_, _, mockAuth, router := newTestHandler(t)

	mockAuth.EXPECT().
		ResolveSession(gomock.Any(), service.Credentials{AccessToken: "cookie-token", RefreshToken: "refresh-token"}).
		Return(&service.Session{User: testOperator}, nil).Times(1)

	w := makeRequest(router, http.MethodGet, "/auth/me", nil, map[string]string{
		"Authorization": "Bearer header-token",
		"Cookie":        AccessTokenCookie + "=cookie-token; " + RefreshTokenCookie + "=refresh-token",
	})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMe_Unauthenticated(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"no token", service.ErrAuthRequired, "authorization required"},
		{"access expired without refresh", service.ErrTokenExpired, "token expired"},
		{"refresh expired", service.ErrRefreshExpired, "refresh token expired"},
		{"user gone", service.ErrSessionUserNotFound, "user not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, mockAuth, router := newTestHandler(t)

			mockAuth.EXPECT().ResolveSession(gomock.Any(), gomock.Any()).Return(nil, tt.err).Times(1)

			w := makeRequest(router, http.MethodGet, "/auth/me", nil, sessionCookie)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, tt.message, decodeError(t, w))
		})
	}
}

func TestSession_RotatedTokensSetAsCookies(t *testing.T) {
	_, _, mockAuth, router := newTestHandler(t)

	mockAuth.EXPECT().
		ResolveSession(gomock.Any(), service.Credentials{AccessToken: "expired-access", RefreshToken: "valid-refresh"}).
		Return(&service.Session{
			User:    testOperator,
			Renewed: &service.TokenPair{AccessToken: "rotated-access", RefreshToken: "rotated-refresh"},
		}, nil).Times(1)

	w := makeRequest(router, http.MethodGet, "/auth/me", nil, map[string]string{
		"Cookie": AccessTokenCookie + "=expired-access; " + RefreshTokenCookie + "=valid-refresh",
	})

	require.Equal(t, http.StatusOK, w.Code)
	cookies := responseCookies(w)
	require.Contains(t, cookies, AccessTokenCookie)
	require.Contains(t, cookies, RefreshTokenCookie)
	assert.Equal(t, "rotated-access", cookies[AccessTokenCookie].Value)
	assert.Equal(t, "rotated-refresh", cookies[RefreshTokenCookie].Value)
}

func TestSession_NoRotationNoCookies(t *testing.T) {
	_, _, mockAuth, router := newTestHandler(t)

	expectSession(mockAuth, testOperator)

	w := makeRequest(router, http.MethodGet, "/auth/me", nil, sessionCookie)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, responseCookies(w))
}

func TestSession_ResolverFailure(t *testing.T) {
	_, _, mockAuth, router := newTestHandler(t)

	mockAuth.EXPECT().ResolveSession(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis down")).Times(1)

	w := makeRequest(router, http.MethodGet, "/auth/me", nil, sessionCookie)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decodeError(t, w))
}

func TestListUsers_Admin(t *testing.T) {
	_, _, mockAuth, router := newTestHandler(t)

	expectSession(mockAuth, testAdmin)
	mockAuth.EXPECT().ListUsers(gomock.Any(), 0, 100).Return([]*models.User{testAdmin, testOperator}, nil).Times(1)

	w := makeRequest(router, http.MethodGet, "/auth/users", nil, sessionCookie)

	require.Equal(t, http.StatusOK, w.Code)
	var resp []UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestListUsers_NonAdminForbidden(t *testing.T) {
	_, _, mockAuth, router := newTestHandler(t)

	expectSession(mockAuth, testOperator)
	mockAuth.EXPECT().ListUsers(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	w := makeRequest(router, http.MethodGet, "/auth/users", nil, sessionCookie)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "insufficient permissions", decodeError(t, w))
}

func TestRequestIDMiddleware(t *testing.T) {
	_, _, _, router := newTestHandler(t)

	generated := makeRequest(router, http.MethodGet, "/system/health", nil)
	assert.NotEmpty(t, generated.Header().Get(RequestIDHeader))

	preserved := makeRequest(router, http.MethodGet, "/system/health", nil, map[string]string{RequestIDHeader: "req-123"})
	assert.Equal(t, "req-123", preserved.Header().Get(RequestIDHeader))
}
