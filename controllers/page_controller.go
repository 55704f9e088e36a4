// Package controllers file: controllers/page_controller.go
package controllers

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"
	"github.com/yuin/goldmark"

	"athproof/logger"
	"athproof/services"
	"athproof/store"
)

var (
	ApplicationURL string
	WebsocketURL   string
)

// site is the shared state store all handlers read from. Set once at startup.
var site *store.SiteStore

// SetSiteStore wires the handlers to the running state store.
func SetSiteStore(s *store.SiteStore) {
	site = s
}

// SetConfig sets global application and WebSocket URLs
func SetConfig(appURL, wsURL string) {
	ApplicationURL = appURL
	WebsocketURL = wsURL
	logger.Info.Printf("SetConfig: Global config updated: ApplicationURL=%s, WebsocketURL=%s", appURL, wsURL)
}

// Health reports liveness for the load balancer.
func Health(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// Index renders the landing page with the event countdown.
func Index(c *gin.Context) {
	content := site.Content()

	remaining := 0
	if eventDate, err := time.Parse(time.RFC3339, content.EventDate); err == nil {
		if d := time.Until(eventDate); d > 0 {
			remaining = int(d.Seconds())
		}
	} else {
		logger.Warn.Printf("Index: Unparseable event date %q: %v", content.EventDate, err)
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Content":          content,
		"CountdownSeconds": remaining,
		"WebsocketURL":     WebsocketURL,
	})
}

// Events renders the event schedule page.
func Events(c *gin.Context) {
	content := site.Content()
	c.HTML(http.StatusOK, "events.html", gin.H{
		"Content":  content,
		"Schedule": content.Schedule,
	})
}

// Gallery renders the public photo gallery.
func Gallery(c *gin.Context) {
	c.HTML(http.StatusOK, "gallery.html", gin.H{
		"Content":      site.Content(),
		"Images":       site.GalleryImages(),
		"WebsocketURL": WebsocketURL,
	})
}

// Blog renders the list of published posts, newest first.
func Blog(c *gin.Context) {
	c.HTML(http.StatusOK, "blog.html", gin.H{
		"Content":      site.Content(),
		"Posts":        site.BlogPosts(),
		"WebsocketURL": WebsocketURL,
	})
}

// BlogPost renders a single post, converting its markdown body to HTML.
func BlogPost(c *gin.Context) {
	slug := c.Param("slug")
	for _, p := range site.BlogPosts() {
		if p.Slug != slug {
			continue
		}
		var buf bytes.Buffer
		if err := goldmark.Convert([]byte(p.Body), &buf); err != nil {
			logger.Error.Printf("BlogPost: Markdown conversion failed for %s: %v", slug, err)
			c.HTML(http.StatusInternalServerError, "error.html", gin.H{"Error": "Could not render this post."})
			return
		}
		c.HTML(http.StatusOK, "blog_post.html", gin.H{
			"Content": site.Content(),
			"Post":    p,
			"Body":    template.HTML(buf.String()), // #nosec G203 -- authored by staff
		})
		return
	}

	logger.Warn.Printf("BlogPost: No post with slug %q", slug)
	c.HTML(http.StatusNotFound, "error.html", gin.H{"Error": "Post not found."})
}

// Verify renders the public athlete verification page reached from an
// ID card's QR code.
func Verify(c *gin.Context) {
	code := c.Param("code")
	for _, a := range site.Athletes() {
		if a.AthleteID != code {
			continue
		}
		c.HTML(http.StatusOK, "verify.html", gin.H{
			"Content":  site.Content(),
			"Athlete":  a,
			"Verified": true,
		})
		return
	}

	c.HTML(http.StatusNotFound, "verify.html", gin.H{
		"Content":  site.Content(),
		"Verified": false,
	})
}

// GetQRCode serves a QR code PNG pointing at an athlete's verification page.
func GetQRCode(c *gin.Context) {
	code := c.Param("code")
	verifyURL := ApplicationURL + "/verify/" + code

	qrBytes, err := services.VerificationQR(verifyURL, 300, services.QRCodeEncoder(qrcode.Encode))
	if err != nil {
		logger.Error.Printf("GetQRCode: Error generating QR code: %v", err)
		c.String(http.StatusInternalServerError, "QR generation failed")
		return
	}

	c.Header("Content-Type", "image/png")
	c.Header("Content-Disposition", "inline; filename=\"qrcode.png\"")
	if _, err := c.Writer.Write(qrBytes); err != nil {
		logger.Error.Printf("GetQRCode: Error writing QR code bytes: %v", err)
	}
}
