// File: controllers/media_controller.go
package controllers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"athproof/apperrors"
	"athproof/logger"
	"athproof/middleware"
	"athproof/models"
	"athproof/services"
)

// uploads stores media images and returns their public URLs.
var uploads services.ObjectStore

// SetUploader wires the media object store. Call once from main.
func SetUploader(u services.ObjectStore) {
	uploads = u
}

// Media renders the media dashboard: blog posts and gallery images with
// their management forms.
func Media(c *gin.Context) {
	c.HTML(http.StatusOK, "media.html", gin.H{
		"Content": site.Content(),
		"User":    middleware.CurrentUser(c),
		"Posts":   site.BlogPosts(),
		"Images":  site.GalleryImages(),
	})
}

// storeUpload reads a multipart file and puts it in the object store,
// returning its public URL. An absent file is not an error; the empty URL is
// returned instead.
func storeUpload(c *gin.Context, field string) (string, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return "", nil
	}
	defer file.Close() // #nosec G307

	data, err := io.ReadAll(file)
	if err != nil {
		return "", apperrors.Unavailable("Could not read the uploaded file.", err)
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return uploads.Put(header.Filename, contentType, data)
}

// CreateBlogPost publishes a new post with an optional cover image.
func CreateBlogPost(c *gin.Context) {
	imageURL, err := storeUpload(c, "image")
	if err != nil {
		logger.Error.Printf("CreateBlogPost: Cover upload failed: %v", err)
		renderMediaError(c, apperrors.UserMessage(err))
		return
	}

	post := models.BlogPost{
		Title:   strings.TrimSpace(c.PostForm("title")),
		Excerpt: strings.TrimSpace(c.PostForm("excerpt")),
		Body:    c.PostForm("body"),
		Image:   imageURL,
	}

	if err := site.AddBlogPost(actorCtx(c), post); err != nil {
		logger.Warn.Printf("CreateBlogPost: Rejected: %v", err)
		renderMediaError(c, apperrors.UserMessage(err))
		return
	}

	logger.Info.Printf("CreateBlogPost: Published %q", post.Title)
	c.Redirect(http.StatusFound, "/media")
}

// DeleteBlogPost removes a published post.
func DeleteBlogPost(c *gin.Context) {
	id := c.Param("id")
	if err := site.DeleteBlogPost(actorCtx(c), id); err != nil {
		logger.Warn.Printf("DeleteBlogPost: Delete of %s failed: %v", id, err)
		renderMediaError(c, apperrors.UserMessage(err))
		return
	}
	c.Redirect(http.StatusFound, "/media")
}

// AddGalleryImage uploads a photo and adds it to the public gallery.
func AddGalleryImage(c *gin.Context) {
	imageURL, err := storeUpload(c, "image")
	if err != nil {
		logger.Error.Printf("AddGalleryImage: Upload failed: %v", err)
		renderMediaError(c, apperrors.UserMessage(err))
		return
	}

	img := models.GalleryImage{
		URL:     imageURL,
		Caption: strings.TrimSpace(c.PostForm("caption")),
	}

	if err := site.AddGalleryImage(actorCtx(c), img); err != nil {
		logger.Warn.Printf("AddGalleryImage: Rejected: %v", err)
		renderMediaError(c, apperrors.UserMessage(err))
		return
	}
	c.Redirect(http.StatusFound, "/media")
}

// DeleteGalleryImage removes a photo from the gallery.
func DeleteGalleryImage(c *gin.Context) {
	id := c.Param("id")
	if err := site.DeleteGalleryImage(actorCtx(c), id); err != nil {
		logger.Warn.Printf("DeleteGalleryImage: Delete of %s failed: %v", id, err)
		renderMediaError(c, apperrors.UserMessage(err))
		return
	}
	c.Redirect(http.StatusFound, "/media")
}

func renderMediaError(c *gin.Context, msg string) {
	c.HTML(http.StatusBadRequest, "media.html", gin.H{
		"Content": site.Content(),
		"User":    middleware.CurrentUser(c),
		"Posts":   site.BlogPosts(),
		"Images":  site.GalleryImages(),
		"Error":   msg,
	})
}
