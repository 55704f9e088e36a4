// file: controllers/test_helpers.go
//go:build unit
// +build unit

package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"athproof/docstore"
	"athproof/identity"
	"athproof/middleware"
	"athproof/models"
	"athproof/services"
	"athproof/store"
)

// setupTestRouter creates a Gin engine with session middleware, minimal HTML
// templates and a fresh site store over temp-dir sqlite services. The store
// is registered with the controllers package and returned for seeding.
func setupTestRouter(t *testing.T) (*gin.Engine, *store.SiteStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.Default()

	sessionStore := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions("testsession", sessionStore))

	tmpDir := t.TempDir()
	if err := createDummyTemplates(tmpDir); err != nil {
		t.Fatalf("Failed to create dummy templates: %v", err)
	}
	router.LoadHTMLGlob(filepath.Join(tmpDir, "*.html"))

	dir := t.TempDir()
	docs, err := docstore.Open(filepath.Join(dir, "docs.db"))
	if err != nil {
		t.Fatalf("open docstore: %v", err)
	}
	t.Cleanup(func() { _ = docs.Close() })

	auth, err := identity.Open(filepath.Join(dir, "accounts.db"))
	if err != nil {
		t.Fatalf("open identity: %v", err)
	}
	t.Cleanup(func() { _ = auth.Close() })

	site := store.New(docs, auth)
	site.Open()
	t.Cleanup(site.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := site.WaitReady(ctx); err != nil {
		t.Fatalf("store not ready: %v", err)
	}

	SetSiteStore(site)
	SetConfig("http://localhost:8080", "ws://localhost:8080/live")
	SetMailer(services.NoopMailer{})
	SetUploader(&services.DiskStore{Dir: t.TempDir(), BaseURL: "/static/uploads"})

	return router, site
}

// createDummyTemplates writes minimal templates so handlers can render.
func createDummyTemplates(dir string) error {
	templates := map[string]string{
		"index.html":        `<html><body>countdown:{{ .CountdownSeconds }}</body></html>`,
		"events.html":       `<html><body>{{ len .Schedule }} events</body></html>`,
		"blog.html":         `<html><body>{{ range .Posts }}{{ .Title }};{{ end }}</body></html>`,
		"blog_post.html":    `<html><body>{{ .Body }}</body></html>`,
		"gallery.html":      `<html><body>{{ range .Images }}{{ .Caption }};{{ end }}</body></html>`,
		"verify.html":       `<html><body>{{ if .Verified }}VERIFIED {{ .Athlete.FullName }}{{ else }}NOT FOUND{{ end }}</body></html>`,
		"login.html":        `<html><body>{{ .Error }}</body></html>`,
		"dashboard.html":    `<html><body>{{ .Error }}|{{ range .Athletes }}{{ .FullName }};{{ end }}</body></html>`,
		"media.html":        `<html><body>{{ .Error }}|{{ range .Posts }}{{ .Title }};{{ end }}</body></html>`,
		"sudo.html":         `<html><body>{{ .Error }}|{{ range .Accounts }}{{ .Code }};{{ end }}</body></html>`,
		"sudo_created.html": `<html><body>{{ .Account.Code }} {{ .TempPassword }}</body></html>`,
		"error.html":        `<html><body>{{ .Error }}</body></html>`,
	}
	for name, content := range templates {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			return err
		}
	}
	return nil
}

// asRole registers routes with a middleware stub that injects a signed-in
// user of the given role, bypassing the session round trip.
func asRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.SessionUserKey, "test-uid")
		c.Set("currentUser", &models.User{UID: "test-uid", Name: "Test User", Role: role})
		c.Next()
	}
}

// doRequest runs a request through the router and returns the recorder.
func doRequest(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
