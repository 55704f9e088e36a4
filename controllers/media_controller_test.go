// controllers/media_controller_test.go
//go:build unit
// +build unit

package controllers

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"athproof/models"
)

// buildMediaForm assembles a multipart post with an optional image upload
func buildMediaForm(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withImage {
		fw, err := mw.CreateFormFile("image", "photo.png")
		require.NoError(t, err)
		require.NoError(t, png.Encode(fw, image.NewRGBA(image.Rect(0, 0, 10, 10))))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

// TestCreateBlogPost publishes with a cover upload stored on disk
func TestCreateBlogPost(t *testing.T) {
	router, site := setupTestRouter(t)
	router.POST("/media/blogs", asRole(models.RoleAdmin), CreateBlogPost)

	body, contentType := buildMediaForm(t, map[string]string{
		"title":   "Camp Opening Day",
		"excerpt": "Doors open at 8am.",
		"body":    "# Welcome",
	}, true)
	req, _ := http.NewRequest("POST", "/media/blogs", body)
	req.Header.Set("Content-Type", contentType)
	w := doRequest(router, req)

	assert.Equal(t, http.StatusFound, w.Code)
	require.Eventually(t, func() bool { return len(site.BlogPosts()) == 1 }, 2*time.Second, 10*time.Millisecond)

	post := site.BlogPosts()[0]
	assert.Equal(t, "camp-opening-day", post.Slug)
	assert.True(t, strings.HasPrefix(post.Image, "/static/uploads/"), "cover stored, got %q", post.Image)
}

// TestCreateBlogPost_MissingTitle renders the validation message
func TestCreateBlogPost_MissingTitle(t *testing.T) {
	router, site := setupTestRouter(t)
	router.POST("/media/blogs", asRole(models.RoleAdmin), CreateBlogPost)

	w := postForm(router, "/media/blogs", url.Values{"body": {"text"}})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "A post title is required.")
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, site.BlogPosts())
}

// TestGalleryLifecycle uploads then deletes a gallery image
func TestGalleryLifecycle(t *testing.T) {
	router, site := setupTestRouter(t)
	router.POST("/media/gallery", asRole(models.RoleAdmin), AddGalleryImage)
	router.POST("/media/gallery/:id/delete", asRole(models.RoleAdmin), DeleteGalleryImage)

	body, contentType := buildMediaForm(t, map[string]string{"caption": "Opening ceremony"}, true)
	req, _ := http.NewRequest("POST", "/media/gallery", body)
	req.Header.Set("Content-Type", contentType)
	w := doRequest(router, req)

	assert.Equal(t, http.StatusFound, w.Code)
	require.Eventually(t, func() bool { return len(site.GalleryImages()) == 1 }, 2*time.Second, 10*time.Millisecond)
	img := site.GalleryImages()[0]
	assert.Equal(t, "Opening ceremony", img.Caption)

	req, _ = http.NewRequest("POST", fmt.Sprintf("/media/gallery/%s/delete", img.ID), nil)
	w = doRequest(router, req)
	assert.Equal(t, http.StatusFound, w.Code)
	require.Eventually(t, func() bool { return len(site.GalleryImages()) == 0 }, 2*time.Second, 10*time.Millisecond)
}

// TestAddGalleryImage_NoFile is rejected by validation
func TestAddGalleryImage_NoFile(t *testing.T) {
	router, _ := setupTestRouter(t)
	router.POST("/media/gallery", asRole(models.RoleAdmin), AddGalleryImage)

	body, contentType := buildMediaForm(t, map[string]string{"caption": "nothing"}, false)
	req, _ := http.NewRequest("POST", "/media/gallery", body)
	req.Header.Set("Content-Type", contentType)
	w := doRequest(router, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "An image is required.")
}
