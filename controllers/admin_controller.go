// Package controllers controllers/admin_controller.go
package controllers

import (
	"context"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"athproof/apperrors"
	"athproof/docstore"
	"athproof/logger"
	"athproof/middleware"
	"athproof/models"
	"athproof/services"
)

// actorCtx tags the request context with the signed-in user's role so the
// document layer can apply its write rules.
func actorCtx(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if user := middleware.CurrentUser(c); user != nil {
		return docstore.WithActor(ctx, user.Role)
	}
	return ctx
}

// Dashboard renders the staff dashboard: the athlete registry with optional
// text search, filtered and sorted in memory.
func Dashboard(c *gin.Context) {
	athletes := site.Athletes()

	query := strings.ToLower(strings.TrimSpace(c.Query("q")))
	if query != "" {
		filtered := athletes[:0]
		for _, a := range athletes {
			haystack := strings.ToLower(a.FullName() + " " + a.Sport + " " + a.AthleteID)
			if strings.Contains(haystack, query) {
				filtered = append(filtered, a)
			}
		}
		athletes = filtered
	}

	sort.SliceStable(athletes, func(i, j int) bool {
		return athletes[i].LastName < athletes[j].LastName
	})

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Content":      site.Content(),
		"User":         middleware.CurrentUser(c),
		"Athletes":     athletes,
		"Query":        c.Query("q"),
		"Sports":       models.SportsList,
		"WebsocketURL": WebsocketURL,
	})
}

// RegisterAthlete handles the registration form: processes the uploaded
// portrait, then hands the record to the state store for validation and the
// create call.
func RegisterAthlete(c *gin.Context) {
	athlete := models.Athlete{
		FirstName:   strings.TrimSpace(c.PostForm("firstName")),
		MiddleName:  strings.TrimSpace(c.PostForm("middleName")),
		LastName:    strings.TrimSpace(c.PostForm("lastName")),
		DOB:         c.PostForm("dob"),
		Gender:      c.PostForm("gender"),
		Sport:       c.PostForm("sport"),
		ParentPhone: c.PostForm("parentPhone"),
		HomeAddress: c.PostForm("homeAddress"),
	}

	if file, _, err := c.Request.FormFile("photo"); err == nil {
		defer file.Close() // #nosec G307
		photo, perr := services.ProcessPhoto(file)
		if perr != nil {
			renderDashboardError(c, apperrors.UserMessage(perr))
			return
		}
		athlete.Photo = photo
	}

	if err := site.AddAthlete(actorCtx(c), athlete); err != nil {
		logger.Warn.Printf("RegisterAthlete: Rejected registration for %s: %v", athlete.FullName(), err)
		renderDashboardError(c, apperrors.UserMessage(err))
		return
	}

	logger.Info.Printf("RegisterAthlete: Registered %s (%s)", athlete.FullName(), athlete.Sport)
	c.Redirect(http.StatusFound, "/dashboard")
}

// UpdateAthlete applies edited fields to an existing athlete record.
func UpdateAthlete(c *gin.Context) {
	id := c.Param("id")
	fields := map[string]any{}
	for _, key := range []string{"firstName", "middleName", "lastName", "dob", "gender", "sport", "parentPhone", "homeAddress"} {
		if v, ok := c.GetPostForm(key); ok {
			fields[key] = strings.TrimSpace(v)
		}
	}

	if file, _, err := c.Request.FormFile("photo"); err == nil {
		defer file.Close() // #nosec G307
		photo, perr := services.ProcessPhoto(file)
		if perr != nil {
			renderDashboardError(c, apperrors.UserMessage(perr))
			return
		}
		fields["photo"] = photo
	}

	if err := site.UpdateAthlete(actorCtx(c), id, fields); err != nil {
		logger.Warn.Printf("UpdateAthlete: Update of %s failed: %v", id, err)
		renderDashboardError(c, apperrors.UserMessage(err))
		return
	}
	c.Redirect(http.StatusFound, "/dashboard")
}

// DeleteAthlete removes an athlete record.
func DeleteAthlete(c *gin.Context) {
	id := c.Param("id")
	if err := site.DeleteAthlete(actorCtx(c), id); err != nil {
		logger.Warn.Printf("DeleteAthlete: Delete of %s failed: %v", id, err)
		renderDashboardError(c, apperrors.UserMessage(err))
		return
	}
	logger.Info.Printf("DeleteAthlete: Removed athlete %s", id)
	c.Redirect(http.StatusFound, "/dashboard")
}

// DownloadRegistryCSV streams the full athlete registry as CSV.
func DownloadRegistryCSV(c *gin.Context) {
	data, err := services.RegistryCSV(site.Athletes())
	if err != nil {
		logger.Error.Printf("DownloadRegistryCSV: %v", err)
		c.String(http.StatusInternalServerError, "Export failed")
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\"registry.csv\"")
	c.Data(http.StatusOK, "text/csv", data)
}

// DownloadRegistryPDF streams the full athlete registry as a landscape PDF.
func DownloadRegistryPDF(c *gin.Context) {
	data, err := services.RegistryPDF(site.Athletes())
	if err != nil {
		logger.Error.Printf("DownloadRegistryPDF: %v", err)
		c.String(http.StatusInternalServerError, "Export failed")
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\"registry.pdf\"")
	c.Data(http.StatusOK, "application/pdf", data)
}

// DownloadIDCard streams a single athlete's printable ID card.
func DownloadIDCard(c *gin.Context) {
	id := c.Param("id")
	for _, a := range site.Athletes() {
		if a.ID != id {
			continue
		}
		verifyURL := ApplicationURL + "/verify/" + a.AthleteID
		data, err := services.IDCard(a, verifyURL)
		if err != nil {
			logger.Error.Printf("DownloadIDCard: Card for %s failed: %v", id, err)
			c.String(http.StatusInternalServerError, "Export failed")
			return
		}
		c.Header("Content-Disposition", "attachment; filename=\"idcard-"+a.AthleteID+".pdf\"")
		c.Data(http.StatusOK, "application/pdf", data)
		return
	}
	c.String(http.StatusNotFound, "Athlete not found")
}

func renderDashboardError(c *gin.Context, msg string) {
	c.HTML(http.StatusBadRequest, "dashboard.html", gin.H{
		"Content":      site.Content(),
		"User":         middleware.CurrentUser(c),
		"Athletes":     site.Athletes(),
		"Sports":       models.SportsList,
		"Error":        msg,
		"WebsocketURL": WebsocketURL,
	})
}
