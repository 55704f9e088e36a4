// Package controllers controllers/auth_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"athproof/apperrors"
	"athproof/logger"
	"athproof/middleware"
	"athproof/models"
	"athproof/websocket"
)

// ShowLogin renders the staff login form.
func ShowLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Content": site.Content()})
}

// PerformLogin processes user authentication
func PerformLogin(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	principal, err := site.Login(c.Request.Context(), email, password)
	if err != nil {
		msg := apperrors.UserMessage(err)
		status := http.StatusUnauthorized
		if apperrors.IsKind(err, apperrors.KindRateLimited) {
			status = http.StatusTooManyRequests
		}
		logger.Warn.Printf("PerformLogin: Sign-in failed for %s: %v", email, err)
		c.HTML(status, "login.html", gin.H{"Content": site.Content(), "Error": msg})
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, principal.UID)
	if err := session.Save(); err != nil {
		logger.Error.Printf("PerformLogin: Failed to save session: %v", err)
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"Content": site.Content(), "Error": "Internal error, please try again.",
		})
		return
	}

	logger.Info.Printf("PerformLogin: %s signed in", email)

	user := site.SessionUser(principal.UID)
	if user != nil && user.Role == models.RoleSuperAdmin {
		c.Redirect(http.StatusFound, "/sudo")
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// Logout signs the user out and clears the session cookie.
func Logout(c *gin.Context) {
	session := sessions.Default(c)
	if uid, ok := session.Get(middleware.SessionUserKey).(string); ok && uid != "" {
		site.Logout(uid)
		logger.Info.Printf("Logout: Signed out uid %s", uid)
	}

	session.Clear()
	if err := session.Save(); err != nil {
		logger.Error.Printf("Logout: Error saving session during logout: %v", err)
	}

	c.Redirect(http.StatusFound, "/login")
}

// LiveTicket mints a short-lived WebSocket ticket for the signed-in user, so
// the dashboard can open an authenticated live connection.
func LiveTicket(c *gin.Context) {
	uid := middleware.SessionUID(c)
	user := site.SessionUser(uid)
	if uid == "" || user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not signed in"})
		return
	}

	ticket, err := websocket.MintTicket(uid, user.Role)
	if err != nil {
		logger.Error.Printf("LiveTicket: Failed to mint ticket for %s: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not issue ticket"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}
