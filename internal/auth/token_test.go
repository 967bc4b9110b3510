package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-reservations/internal/auth"
)

const testSecret = "test-signing-secret"

func TestIssueAndVerifyStaffToken(t *testing.T) {
	token, err := auth.IssueStaffToken("staff-42", testSecret, time.Hour)
	require.NoError(t, err)

	sub, err := auth.VerifyStaffToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "staff-42", sub)
}

func TestVerifyStaffTokenWrongSecret(t *testing.T) {
	token, err := auth.IssueStaffToken("staff-42", testSecret, time.Hour)
	require.NoError(t, err)

	_, err = auth.VerifyStaffToken(token, "some-other-secret")
	assert.Error(t, err)
}

func TestVerifyStaffTokenExpired(t *testing.T) {
	token, err := auth.IssueStaffToken("staff-42", testSecret, -time.Minute)
	require.NoError(t, err)

	_, err = auth.VerifyStaffToken(token, testSecret)
	assert.Error(t, err)
}

func TestVerifyStaffTokenMissingRole(t *testing.T) {
	claims := jwt.MapClaims{
		"sub": "staff-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = auth.VerifyStaffToken(token, testSecret)
	assert.Error(t, err)
}

func TestVerifyStaffTokenWrongRole(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":  "guest-1",
		"role": "attendee",
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = auth.VerifyStaffToken(token, testSecret)
	assert.Error(t, err)
}

func TestExtractTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer abc123")

	token, err := auth.ExtractTokenFromRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)
}

func TestExtractTokenFromRequestMissingHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	_, err := auth.ExtractTokenFromRequest(r)
	assert.Error(t, err)
}

func TestExtractTokenFromRequestBadFormat(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Token abc123")

	_, err := auth.ExtractTokenFromRequest(r)
	assert.Error(t, err)
}

func TestStaffOnlyMiddleware(t *testing.T) {
	var gotStaffID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStaffID = auth.StaffID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := auth.StaffOnly(testSecret)(next)

	token, err := auth.IssueStaffToken("staff-42", testSecret, time.Hour)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/checkin", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "staff-42", gotStaffID)
}

func TestStaffOnlyMiddlewareRejectsMissingToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	})
	handler := auth.StaffOnly(testSecret)(next)

	r := httptest.NewRequest(http.MethodPost, "/checkin", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
