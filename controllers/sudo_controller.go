// File: controllers/sudo_controller.go
package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"athproof/apperrors"
	"athproof/logger"
	"athproof/middleware"
	"athproof/models"
	"athproof/services"
)

// mailer delivers dashboard invites to newly provisioned accounts.
var mailer services.Mailer = services.NoopMailer{}

// SetMailer wires the invite mailer. Call once from main.
func SetMailer(m services.Mailer) {
	mailer = m
}

// Sudo renders the super-admin console: account roster plus the settings
// editor for the public site content.
func Sudo(c *gin.Context) {
	accounts, err := site.ListAdminAccounts(actorCtx(c))
	if err != nil {
		logger.Error.Printf("Sudo: Could not list accounts: %v", err)
	}
	c.HTML(http.StatusOK, "sudo.html", gin.H{
		"Content":  site.Content(),
		"User":     middleware.CurrentUser(c),
		"Accounts": accounts,
		"Roles":    []string{models.RoleAdmin, models.RoleCoach, models.RoleScout},
	})
}

// CreateAccount provisions a staff account: identity record, profile document
// and a temporary password delivered by email. The password is also shown
// once on the confirmation page in case mail delivery fails.
func CreateAccount(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	email := strings.TrimSpace(c.PostForm("email"))
	role := c.PostForm("role")

	acct, tempPassword, err := site.CreateAdminAccount(actorCtx(c), name, email, role)
	if err != nil {
		logger.Warn.Printf("CreateAccount: Provisioning %s failed: %v", email, err)
		renderSudoError(c, apperrors.UserMessage(err))
		return
	}

	if err := mailer.SendInvite(c.Request.Context(), acct, tempPassword); err != nil {
		logger.Error.Printf("CreateAccount: Invite mail to %s failed: %v", email, err)
	}

	logger.Info.Printf("CreateAccount: Provisioned %s (%s) as %s", acct.Code, email, role)
	c.HTML(http.StatusOK, "sudo_created.html", gin.H{
		"Content":      site.Content(),
		"User":         middleware.CurrentUser(c),
		"Account":      acct,
		"TempPassword": tempPassword,
	})
}

// SetAccountStatus toggles a staff account between Active and Inactive.
func SetAccountStatus(c *gin.Context) {
	id := c.Param("id")
	status := c.PostForm("status")

	if err := site.SetAdminStatus(actorCtx(c), id, status); err != nil {
		logger.Warn.Printf("SetAccountStatus: %s -> %s failed: %v", id, status, err)
		renderSudoError(c, apperrors.UserMessage(err))
		return
	}
	c.Redirect(http.StatusFound, "/sudo")
}

// UpdateSettings merges the submitted fields into the site content document.
// Omitted form fields are left untouched; the merge happens on the write side.
func UpdateSettings(c *gin.Context) {
	fields := map[string]any{}
	for _, key := range []string{
		"logoText", "announcementBar", "footerTagline", "footerAddress",
		"footerEmail", "footerPhone", "copyrightText", "eventDate",
	} {
		if v, ok := c.GetPostForm(key); ok {
			fields[key] = strings.TrimSpace(v)
		}
	}

	if err := site.UpdateContent(actorCtx(c), fields); err != nil {
		logger.Warn.Printf("UpdateSettings: Update rejected: %v", err)
		renderSudoError(c, apperrors.UserMessage(err))
		return
	}

	logger.Info.Println("UpdateSettings: Site content updated")
	c.Redirect(http.StatusFound, "/sudo")
}

func renderSudoError(c *gin.Context, msg string) {
	accounts, _ := site.ListAdminAccounts(actorCtx(c))
	c.HTML(http.StatusBadRequest, "sudo.html", gin.H{
		"Content":  site.Content(),
		"User":     middleware.CurrentUser(c),
		"Accounts": accounts,
		"Roles":    []string{models.RoleAdmin, models.RoleCoach, models.RoleScout},
		"Error":    msg,
	})
}
