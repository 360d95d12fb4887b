package main

import (
	"log"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"neor/internal/config"
	"neor/internal/db"
	"neor/internal/handlers"
	"neor/internal/logger"
	"neor/internal/middleware"
	"neor/internal/router"
	"neor/internal/services"
	"neor/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	l, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.Development})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer l.Sync()

	if !cfg.EnvFileLoaded {
		l.Info("No .env file found, finding env vars from system")
	}

	// Initialize Database
	gdb, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseURL, l)
	if err != nil {
		l.Fatalw("Failed to open database", "error", err)
	}
	defer db.Close(gdb)

	s, err := store.New(gdb)
	if err != nil {
		l.Fatalw("Failed to create store", "error", err)
	}

	images := services.NewImageService(cfg.FilesDir, s)
	if err := images.EnsurePlaceholders(); err != nil {
		l.Fatalw("Failed to prepare files directory", "dir", cfg.FilesDir, "error", err)
	}

	mailer := services.NewMailer(cfg.SMTP, l)
	authService := services.NewAuthService(s, mailer, cfg.Domain, l)
	postService := services.NewPostService(s, l)
	commentService := services.NewCommentService(s, l)
	userService := services.NewUserService(s, images, l)

	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.Middleware(l))
	// 头像等图片已压缩，不再 gzip
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/files/"})))

	// Setup Sessions
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("neor_session", sessionStore))

	// Load Templates using Multitemplate to avoid collision and allow handler names
	renderer, err := handlers.LoadTemplates(cfg.TemplatesDir)
	if err != nil {
		l.Fatalw("Failed to load templates", "dir", cfg.TemplatesDir, "error", err)
	}
	r.HTMLRender = renderer

	r.Static("/static", cfg.StaticDir)

	r.Use(middleware.LoadUser(authService, l))

	themeHandler, err := handlers.NewThemeHandler(cfg.TemplatesDir, l)
	if err != nil {
		l.Fatalw("Failed to load stylesheet", "error", err)
	}

	router.RegisterRoutes(r, router.Handlers{
		Auth:    handlers.NewAuthHandler(authService, l),
		Post:    handlers.NewPostHandler(postService, commentService, l),
		Comment: handlers.NewCommentHandler(postService, commentService, l),
		User:    handlers.NewUserHandler(userService, postService, commentService, l),
		Theme:   themeHandler,
		File:    handlers.NewFileHandler(images.Dir()),
	})

	l.Infow("neor server starting", "port", cfg.Port, "domain", cfg.Domain)
	if err := r.Run(":" + cfg.Port); err != nil {
		l.Fatalw("Server stopped", "error", err)
	}
}
