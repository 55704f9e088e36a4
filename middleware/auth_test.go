// file: middleware/auth_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a test router with session middleware
func setupAuthTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()

	store := cookie.NewStore([]byte("secret"))
	router.Use(sessions.Sessions("testsession", store))

	// helper route to set the session uid
	router.GET("/set-session", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(SessionUserKey, c.Query("uid"))
		if err := session.Save(); err != nil {
			c.String(http.StatusInternalServerError, "session save failed")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	router.GET("/protected", AuthRequired, func(c *gin.Context) {
		c.String(http.StatusOK, "uid="+SessionUID(c))
	})

	return router
}

// sessionCookie logs a uid into the session and returns the cookie
func sessionCookie(t *testing.T, router *gin.Engine, uid string) *http.Cookie {
	t.Helper()
	req, _ := http.NewRequest("GET", "/set-session?uid="+uid, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == "testsession" {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

// Test: Unauthenticated users should be redirected to `/login`
func TestAuthRequired_Unauthenticated(t *testing.T) {
	router := setupAuthTestRouter()

	req, _ := http.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code, "Expected 302 Redirect")
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

// Test: Authenticated users should access the protected route
func TestAuthRequired_Authenticated(t *testing.T) {
	router := setupAuthTestRouter()
	cookie := sessionCookie(t, router, "u1")

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "uid=u1", w.Body.String())
}

// Test: an empty uid in the session is still unauthenticated
func TestAuthRequired_EmptyUID(t *testing.T) {
	router := setupAuthTestRouter()
	cookie := sessionCookie(t, router, "")

	req, _ := http.NewRequest("GET", "/protected", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
}
