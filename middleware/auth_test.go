package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/competition-engine/models"
)

const secret = "middleware-secret"

func protected(t *testing.T, roles ...models.UserRole) http.Handler {
	t.Helper()
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		require.True(t, ok)
		w.Header().Set("X-User-ID", strconv.Itoa(claims.UserID))
		w.Header().Set("X-User-Role", string(claims.Role))
		w.WriteHeader(http.StatusNoContent)
	})
	return Authenticate(secret)(Authorize(roles...)(final))
}

func call(h http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateAndAuthorize(t *testing.T) {
	h := protected(t, models.RoleAdmin, models.RoleOrganizer)

	organizer, err := IssueToken(secret, 200, models.RoleOrganizer, time.Hour)
	require.NoError(t, err)
	viewer, err := IssueToken(secret, 201, models.RoleViewer, time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken(secret, 200, models.RoleOrganizer, -time.Minute)
	require.NoError(t, err)
	foreign, err := IssueToken("another-secret", 200, models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"organizer", "Bearer " + organizer, http.StatusNoContent},
		{"viewer", "Bearer " + viewer, http.StatusForbidden},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"foreign secret", "Bearer " + foreign, http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
		{"basic scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, call(h, tt.header).Code)
		})
	}
}

func TestAuthenticateRejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"user_id": 1,
		"role":    string(models.RoleAdmin),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, call(protected(t, models.RoleAdmin), "Bearer "+signed).Code)
}

func TestAuthorizeRejectsUnknownRole(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"role":    "player",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, call(protected(t, models.RoleAdmin), "Bearer "+signed).Code)
}

func TestAuthenticateStoresTypedClaims(t *testing.T) {
	token, err := IssueToken(secret, 200, models.RoleOrganizer, time.Hour)
	require.NoError(t, err)

	rec := call(protected(t, models.RoleOrganizer), "Bearer "+token)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "200", rec.Header().Get("X-User-ID"))
	assert.Equal(t, string(models.RoleOrganizer), rec.Header().Get("X-User-Role"))
}

func TestAuthenticateRejectsMissingUserID(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": string(models.RoleAdmin),
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, call(protected(t, models.RoleAdmin), "Bearer "+signed).Code)
}

func TestGetUserIDFromContext(t *testing.T) {
	_, err := GetUserIDFromContext(context.Background())
	assert.Error(t, err)

	ctx := context.WithValue(context.Background(), userContextKey, &Claims{UserID: 7, Role: models.RoleAdmin})
	userID, err := GetUserIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, userID)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "upstream-id")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "upstream-id", seen)
	assert.Equal(t, "upstream-id", rec.Header().Get(RequestIDHeader))
}
