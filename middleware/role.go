// Package middleware file: middleware/role.go
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"athproof/logger"
	"athproof/models"
)

// UserLookup resolves the signed-in user's profile for a session uid. The
// check is advisory: the document layer enforces write permissions on its
// own, so a stale role here can hide a page but never widen access.
type UserLookup interface {
	SessionUser(uid string) *models.User
}

// RoleRequired gates a route group to accounts holding one of the given
// roles. Requests without a session, or whose cookie outlived the server's
// session records, are sent back to /login; signed-in users with the wrong
// role get a 403 page.
func RoleRequired(users UserLookup, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := SessionUID(c)
		if uid == "" {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		user := users.SessionUser(uid)
		if user == nil {
			// A 7-day cookie can outlive the in-memory session record,
			// e.g. across a restart. That is a missing session, not a
			// role failure, so the user re-authenticates.
			logger.Warn.Printf("RoleRequired: No live session for uid=%s on %s, redirecting to login", uid, c.Request.URL.Path)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		if !user.HasRole(roles...) {
			logger.Warn.Printf("RoleRequired: uid=%s (%s) lacks roles %v for %s", uid, user.Role, roles, c.Request.URL.Path)
			c.HTML(http.StatusForbidden, "error.html", gin.H{
				"Error": "You do not have access to this page.",
			})
			c.Abort()
			return
		}

		c.Set("currentUser", user)
		c.Next()
	}
}

// CurrentUser returns the profile stashed by RoleRequired, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get("currentUser"); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}
