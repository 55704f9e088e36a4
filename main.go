// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"athproof/config"
	"athproof/controllers"
	"athproof/docstore"
	"athproof/identity"
	"athproof/logger"
	"athproof/middleware"
	"athproof/models"
	"athproof/services"
	"athproof/store"
	"athproof/websocket"
)

// writeRules is the single write-access policy for the document layer. Page
// middleware only hides links; this is what actually blocks a write.
func writeRules(role string, _ docstore.Op, collection string) error {
	switch collection {
	case store.CollectionSettings, store.CollectionAdminUsers:
		if role == models.RoleSuperAdmin {
			return nil
		}
	case store.CollectionAthletes, store.CollectionBlogs, store.CollectionGallery:
		if role == models.RoleAdmin || role == models.RoleSuperAdmin {
			return nil
		}
	}
	return docstore.ErrDenied
}

func main() {
	cfg := config.Load()
	logger.SetLogLevel(cfg.Environment)
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Document and identity services
	docs, err := docstore.Open(cfg.DocstoreDBPath)
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}
	defer docs.Close()
	docs.SetAuthorizer(writeRules)

	auth, err := identity.Open(cfg.IdentityDBPath)
	if err != nil {
		log.Fatalf("Failed to open identity service: %v", err)
	}
	defer auth.Close()

	// Site state store
	site := store.New(docs, auth)
	site.Open()
	defer site.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := site.WaitReady(ctx); err != nil {
		log.Fatalf("State store never became ready: %v", err)
	}
	cancel()

	bootstrapSuperAdmin(site, cfg)

	// Controller wiring
	controllers.SetConfig(cfg.ApplicationURL, cfg.WebsocketURL)
	controllers.SetSiteStore(site)
	if cfg.ResendAPIKey != "" {
		controllers.SetMailer(services.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom))
	} else {
		controllers.SetMailer(services.NoopMailer{})
	}
	if cfg.S3Bucket != "" {
		controllers.SetUploader(services.NewS3Store(cfg.S3Bucket))
	} else {
		controllers.SetUploader(&services.DiskStore{Dir: cfg.UploadDir, BaseURL: cfg.UploadBaseURL})
	}

	// Live updates
	websocket.SetTicketSecret(cfg.TicketSecret)
	websocket.SetAllowedOrigin(cfg.ApplicationURL)
	websocket.EnableMetrics(cfg.MetricsEnabled)
	go websocket.HandleMessages()
	defer websocket.BindStore(site)()
	if eventDate, err := time.Parse(time.RFC3339, site.Content().EventDate); err == nil {
		websocket.StartCountdown(eventDate)
		defer websocket.StopCountdown()
	} else {
		logger.Warn.Printf("Countdown disabled, unparseable event date: %v", err)
	}

	// Router
	router := gin.Default()

	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.Environment == "production",
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("athproof_session", sessionStore))

	router.LoadHTMLGlob("templates/*.html")
	router.Static("/static", "./static")

	// Public routes
	router.GET("/health", controllers.Health)
	router.GET("/", controllers.Index)
	router.GET("/events", controllers.Events)
	router.GET("/blog", controllers.Blog)
	router.GET("/blog/:slug", controllers.BlogPost)
	router.GET("/gallery", controllers.Gallery)
	router.GET("/verify/:code", controllers.Verify)
	router.GET("/qrcode/:code", controllers.GetQRCode)
	router.GET("/live", gin.WrapF(websocket.ServeWs))

	router.GET("/login", controllers.ShowLogin)
	router.POST("/login", controllers.PerformLogin)
	router.GET("/logout", controllers.Logout)

	// Signed-in routes
	protected := router.Group("/", middleware.AuthRequired)
	{
		protected.GET("/live-ticket", controllers.LiveTicket)

		staff := protected.Group("/", middleware.RoleRequired(site,
			models.RoleSuperAdmin, models.RoleAdmin, models.RoleCoach, models.RoleScout))
		staff.GET("/dashboard", controllers.Dashboard)

		admin := protected.Group("/", middleware.RoleRequired(site,
			models.RoleSuperAdmin, models.RoleAdmin))
		{
			admin.POST("/dashboard/athletes", controllers.RegisterAthlete)
			admin.POST("/dashboard/athletes/:id", controllers.UpdateAthlete)
			admin.POST("/dashboard/athletes/:id/delete", controllers.DeleteAthlete)
			admin.GET("/dashboard/athletes/:id/idcard", controllers.DownloadIDCard)
			admin.GET("/dashboard/export/csv", controllers.DownloadRegistryCSV)
			admin.GET("/dashboard/export/pdf", controllers.DownloadRegistryPDF)

			admin.GET("/media", controllers.Media)
			admin.POST("/media/blogs", controllers.CreateBlogPost)
			admin.POST("/media/blogs/:id/delete", controllers.DeleteBlogPost)
			admin.POST("/media/gallery", controllers.AddGalleryImage)
			admin.POST("/media/gallery/:id/delete", controllers.DeleteGalleryImage)
		}

		sudo := protected.Group("/", middleware.RoleRequired(site, models.RoleSuperAdmin))
		{
			sudo.GET("/sudo", controllers.Sudo)
			sudo.POST("/sudo/accounts", controllers.CreateAccount)
			sudo.POST("/sudo/accounts/:id/status", controllers.SetAccountStatus)
			sudo.POST("/sudo/settings", controllers.UpdateSettings)
		}
	}

	logger.Info.Printf("Listening on %s", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}

// bootstrapSuperAdmin provisions the first super-admin account on an empty
// installation so someone can reach the dashboards at all.
func bootstrapSuperAdmin(site *store.SiteStore, cfg config.Config) {
	if cfg.BootstrapEmail == "" || cfg.BootstrapPassword == "" {
		return
	}

	ctx := docstore.WithActor(context.Background(), models.RoleSuperAdmin)
	accounts, err := site.ListAdminAccounts(ctx)
	if err != nil {
		logger.Error.Printf("Bootstrap: Could not list accounts: %v", err)
		return
	}
	if len(accounts) > 0 {
		return
	}

	principal, err := site.Signup(ctx, cfg.BootstrapEmail, cfg.BootstrapPassword, models.RoleSuperAdmin)
	if err != nil {
		logger.Error.Printf("Bootstrap: Could not create super-admin: %v", err)
		return
	}
	site.Logout(principal.UID)
	logger.Info.Printf("Bootstrap: Created super-admin %s", cfg.BootstrapEmail)
}
