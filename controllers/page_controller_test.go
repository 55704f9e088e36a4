// controllers/page_controller_test.go
//go:build unit
// +build unit

package controllers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athproof/models"
)

// TestHealth tests the Health function
func TestHealth(t *testing.T) {
	router, _ := setupTestRouter(t)
	router.GET("/health", Health)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := doRequest(router, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

// TestIndex renders the landing page with a countdown derived from the
// configured event date
func TestIndex(t *testing.T) {
	router, site := setupTestRouter(t)
	router.GET("/", Index)

	future := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	require.NoError(t, site.UpdateContent(context.Background(), map[string]any{"eventDate": future}))
	require.Eventually(t, func() bool {
		return site.Content().EventDate == future
	}, 2*time.Second, 10*time.Millisecond)

	req, _ := http.NewRequest("GET", "/", nil)
	w := doRequest(router, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "countdown:0", "a future event has a nonzero countdown")
}

// TestBlogPost renders markdown bodies as HTML
func TestBlogPost(t *testing.T) {
	router, site := setupTestRouter(t)
	router.GET("/blog/:slug", BlogPost)

	require.NoError(t, site.AddBlogPost(context.Background(), models.BlogPost{
		Title: "Opening Day",
		Body:  "# Welcome\n\nSee you there.",
	}))
	require.Eventually(t, func() bool { return len(site.BlogPosts()) == 1 }, 2*time.Second, 10*time.Millisecond)

	req, _ := http.NewRequest("GET", "/blog/opening-day", nil)
	w := doRequest(router, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1")
	assert.Contains(t, w.Body.String(), "Welcome")
}

func TestBlogPost_NotFound(t *testing.T) {
	router, _ := setupTestRouter(t)
	router.GET("/blog/:slug", BlogPost)

	req, _ := http.NewRequest("GET", "/blog/no-such-post", nil)
	w := doRequest(router, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// TestVerify resolves an athlete's registration code to the verification page
func TestVerify(t *testing.T) {
	router, site := setupTestRouter(t)
	router.GET("/verify/:code", Verify)

	require.NoError(t, site.AddAthlete(context.Background(), models.Athlete{
		FirstName: "Ada", LastName: "Lovelace", Sport: "Tennis",
		DOB: "2012-05-01", Photo: "data:image/jpeg;base64,dGVzdA==",
	}))
	require.Eventually(t, func() bool { return len(site.Athletes()) == 1 }, 2*time.Second, 10*time.Millisecond)
	code := site.Athletes()[0].AthleteID

	req, _ := http.NewRequest("GET", "/verify/"+code, nil)
	w := doRequest(router, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "VERIFIED Ada Lovelace")

	req, _ = http.NewRequest("GET", "/verify/ID-26-000000", nil)
	w = doRequest(router, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT FOUND")
}

// TestGetQRCode serves a PNG pointing at the verification URL
func TestGetQRCode(t *testing.T) {
	router, _ := setupTestRouter(t)
	router.GET("/qrcode/:code", GetQRCode)

	req, _ := http.NewRequest("GET", "/qrcode/ID-26-123456", nil)
	w := doRequest(router, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Greater(t, w.Body.Len(), 100)
}
