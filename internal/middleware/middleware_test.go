package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityEcho(t *testing.T, got *Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		require.True(t, ok)
		*got = id
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestIdentifyBearerToken(t *testing.T) {
	var got Identity
	h := Identify(map[string]string{"user-1": "tok-1"}, false)(identityEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, got.Authenticated)
	assert.Equal(t, "user-1", got.UserID)
}

func TestIdentifyRejectsUnknownToken(t *testing.T) {
	var got Identity
	h := Identify(map[string]string{"user-1": "tok-1"}, false)(identityEcho(t, &got))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentifyIssuesSessionCookie(t *testing.T) {
	var got Identity
	h := Identify(nil, false)(identityEcho(t, &got))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, got.Authenticated)
	require.NoError(t, ValidateSessionToken(got.SessionToken))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.Equal(t, got.SessionToken, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestIdentifyReusesSessionHeader(t *testing.T) {
	var got Identity
	h := Identify(nil, false)(identityEcho(t, &got))

	const sid = "5b0c3a62-4ad4-4bb3-9a52-3f0f1b0b9c11"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, sid)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, sid, got.SessionToken)
	assert.Empty(t, rec.Result().Cookies())
}

func TestRequireUser(t *testing.T) {
	h := Identify(map[string]string{"u": "t"}, false)(RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer t")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(2, 0)
	h := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

func TestSweepDropsIdleBuckets(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	limiter.Allow("a")
	limiter.sweep(time.Now().Add(time.Hour), 10*time.Minute)
	assert.Empty(t, limiter.buckets)
}

func TestHealthHandler(t *testing.T) {
	h := HealthHandler(map[string]HealthChecker{
		"db":    CheckerFunc(func(context.Context) error { return nil }),
		"redis": CheckerFunc(func(context.Context) error { return errors.New("down") }),
	})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"down"`)
}

func TestValidateMIME(t *testing.T) {
	assert.NoError(t, ValidateMIME("image/PNG"))
	assert.NoError(t, ValidateMIME("application/pdf; charset=binary"))
	assert.Error(t, ValidateMIME("image/gif"))
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "lab.png", SanitizeFileName("../../etc/lab.png"))
	assert.Equal(t, "scan.pdf", SanitizeFileName(`C:\docs\scan.pdf`))
	assert.Equal(t, "upload", SanitizeFileName(""))
}

func TestSanitizeFileNameKeepsCharactersWhole(t *testing.T) {
	long := strings.Repeat("é", 300) + ".png"
	got := SanitizeFileName(long)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, MaxFileNameLength, utf8.RuneCountInString(got))
	assert.Equal(t, strings.Repeat("é", MaxFileNameLength), got)

	assert.Equal(t, "lab.png", SanitizeFileName("la\xffb.png"))
}

func TestUnauthorizedResponsesAreJSON(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := Identify(map[string]string{"u": "t"}, false)(RequireUser(ok))

	for name, auth := range map[string]string{"anonymous": "", "unknown token": "Bearer nope"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"), name)
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), name)
		assert.NotEmpty(t, body.Message, name)
	}
}
