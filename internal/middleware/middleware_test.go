package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xZoluGames/InventarioApp-sub001/internal/service"
	"github.com/xZoluGames/InventarioApp-sub001/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func init() { gin.SetMode(gin.TestMode) }

func signToken(t *testing.T, role, typ string, exp time.Time) string {
	t.Helper()
	claims := service.TokenClaims{
		UserID: uuid.NewString(), Username: "ana", Role: role, TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func protectedRouter(roles ...string) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	g := r.Group("/", JWTAuth(secret))
	if len(roles) > 0 {
		g.Use(RequireRole(roles...))
	}
	g.GET("/me", func(c *gin.Context) {
		sess, _ := GetSession(c)
		fromCtx, ok := session.From(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"role": sess.Role, "ctx": ok && fromCtx.Username == sess.Username})
	})
	return r
}

func get(r http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	r := protectedRouter()
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"garbage", "abc.def.ghi", http.StatusUnauthorized},
		{"expired", signToken(t, session.RoleOwner, service.TokenAccess, time.Now().Add(-time.Minute)), http.StatusUnauthorized},
		{"refresh token", signToken(t, session.RoleOwner, service.TokenRefresh, future), http.StatusUnauthorized},
		{"valid", signToken(t, session.RoleEmployee, service.TokenAccess, future), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, "/me", tt.token)
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		})
	}

	w := get(r, "/me", signToken(t, session.RoleEmployee, service.TokenAccess, future))
	assert.JSONEq(t, `{"role":"employee","ctx":true}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	r := protectedRouter(session.RoleOwner)
	future := time.Now().Add(time.Hour)

	assert.Equal(t, http.StatusForbidden, get(r, "/me", signToken(t, session.RoleEmployee, service.TokenAccess, future)).Code)
	assert.Equal(t, http.StatusOK, get(r, "/me", signToken(t, session.RoleOwner, service.TokenAccess, future)).Code)
}

func TestRequestID_ReusesHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestRecoveryAndErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Recovery(), ErrorHandler())
	r.GET("/panic", func(*gin.Context) { panic("boom") })
	r.GET("/err", func(c *gin.Context) { _ = c.Error(assert.AnError) })

	w := get(r, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"internal server error"}`, w.Body.String())

	w = get(r, "/err", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), assert.AnError.Error())
}

func TestLimiter_Window(t *testing.T) {
	l := newLimiter("test", 2, time.Minute)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	ok, _ := l.allow("1.1.1.1")
	assert.True(t, ok)
	ok, _ = l.allow("1.1.1.1")
	assert.True(t, ok)
	ok, _ = l.allow("1.1.1.1")
	assert.False(t, ok)
	ok, _ = l.allow("2.2.2.2")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = l.allow("1.1.1.1")
	assert.True(t, ok)
	l.purgeExpired()
	assert.Len(t, l.clients, 1)
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS("https://shop.example"))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://shop.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
