package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edustar/attendance-register/internal/admin"
	"github.com/edustar/attendance-register/internal/auth"
	"github.com/edustar/attendance-register/internal/config"
	"github.com/edustar/attendance-register/internal/httpmiddleware"
	"github.com/edustar/attendance-register/internal/notify"
	"github.com/edustar/attendance-register/internal/register"
	"github.com/edustar/attendance-register/internal/report"
	"github.com/edustar/attendance-register/internal/schedule"
	"github.com/edustar/attendance-register/internal/store"
)

var (
	occupancyGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "register_currently_checked_in",
		Help: "Open attendance sessions across the whole register.",
	})
	checkinCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "register_checkins_total",
		Help: "Accepted check-ins.",
	})
	checkoutCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "register_checkouts_total",
		Help: "Completed check-outs.",
	})
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	prometheus.MustRegister(occupancyGauge, checkinCounter, checkoutCounter)

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Printf("warning: db not reachable: %v", err)
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var hub notify.Hub
	if cfg.NotifyBackend == "memory" {
		hub = notify.NewInMemory()
	} else {
		hub = notify.NewRedisHub(redisClient.Client, "register:changes")
	}

	repo := register.NewRepository(db.Client)
	reg := register.NewService(repo)
	accounts := admin.NewRepository(db.Client)
	admins := admin.NewService(accounts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	seedAdmin(ctx, cfg, accounts)
	go watchOccupancy(ctx, repo, hub, schedule.New())

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db != nil && db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	r.POST("/v1/checkins", func(c *gin.Context) {
		var req struct {
			FullName string `json:"fullName" binding:"required"`
			Contact  string `json:"contact"`
			Email    string `json:"email"`
			Role     string `json:"role"`
			Purpose  string `json:"purpose"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Role == "" {
			req.Role = string(register.RoleVisitor)
		}

		rec, err := reg.CheckIn(c.Request.Context(), register.CheckInInput{
			FullName: req.FullName,
			Contact:  req.Contact,
			Email:    req.Email,
			Role:     register.Role(req.Role),
			Purpose:  req.Purpose,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		checkinCounter.Inc()
		if err := hub.Publish(c.Request.Context(), notify.Event{Kind: "checkin"}); err != nil {
			log.Printf("notify publish failed: %v", err)
		}
		c.JSON(http.StatusCreated, rec)
	})

	r.POST("/v1/checkouts", func(c *gin.Context) {
		var req struct {
			FullName string `json:"fullName" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rec, err := reg.CheckOut(c.Request.Context(), req.FullName)
		if err != nil {
			respondError(c, err)
			return
		}

		checkoutCounter.Inc()
		if err := hub.Publish(c.Request.Context(), notify.Event{Kind: "checkout"}); err != nil {
			log.Printf("notify publish failed: %v", err)
		}
		c.JSON(http.StatusOK, rec)
	})

	r.POST("/v1/admin/login", func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		acct, err := admins.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, admin.ErrBadCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
			}
			return
		}

		tokens, err := auth.Issue(acct.Email, auth.RoleAdmin, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"access_token":  tokens.AccessToken,
			"refresh_token": tokens.RefreshToken,
			"expires_at":    tokens.AccessExp.Unix(),
		})
	})

	adminGroup := r.Group("/v1/admin", auth.RequireAdmin(cfg.JWTSigningKey, cfg.JWTIssuer))

	adminGroup.GET("/records", func(c *gin.Context) {
		records, err := reg.Snapshot(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		filtered := register.Filter(records, queryFrom(c))
		c.JSON(http.StatusOK, gin.H{
			"records":              filtered,
			"total":                len(filtered),
			"currently_checked_in": register.ActiveCount(records),
		})
	})

	adminGroup.GET("/export", func(c *gin.Context) {
		records, err := reg.Snapshot(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		filtered := register.Filter(records, queryFrom(c))

		switch c.DefaultQuery("format", "csv") {
		case "csv":
			data, err := report.CSV(filtered)
			if err != nil {
				respondError(c, err)
				return
			}
			c.Header("Content-Disposition", `attachment; filename="attendance.csv"`)
			c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
		case "excel":
			data, err := report.Excel(filtered)
			if err != nil {
				respondError(c, err)
				return
			}
			c.Header("Content-Disposition", `attachment; filename="attendance.xlsx"`)
			c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
		case "pdf":
			data, err := report.PDF(filtered, cfg.LogoPath)
			if err != nil {
				respondError(c, err)
				return
			}
			c.Header("Content-Disposition", `attachment; filename="attendance.pdf"`)
			c.Data(http.StatusOK, "application/pdf", data)
		case "print":
			data, err := report.Printable(filtered, cfg.LogoURL)
			if err != nil {
				respondError(c, err)
				return
			}
			c.Data(http.StatusOK, "text/html; charset=utf-8", data)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv, excel, pdf or print"})
		}
	})

	adminGroup.DELETE("/records", func(c *gin.Context) {
		if err := reg.Clear(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		if err := hub.Publish(c.Request.Context(), notify.Event{Kind: "clear"}); err != nil {
			log.Printf("notify publish failed: %v", err)
		}
		c.JSON(http.StatusOK, gin.H{"cleared": true})
	})

	adminGroup.POST("/password", func(c *gin.Context) {
		var req struct {
			CurrentPassword string `json:"current_password" binding:"required"`
			NewPassword     string `json:"new_password" binding:"required"`
			ConfirmPassword string `json:"confirm_password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.NewPassword != req.ConfirmPassword {
			c.JSON(http.StatusBadRequest, gin.H{"error": "new passwords do not match"})
			return
		}

		claimsAny, _ := c.Get("claims")
		claims, _ := claimsAny.(auth.Claims)
		if err := admins.ChangePassword(c.Request.Context(), claims.Subject, req.CurrentPassword, req.NewPassword); err != nil {
			if errors.Is(err, admin.ErrBadCredentials) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is incorrect"})
			} else {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"changed": true})
	})

	r.StaticFile("/", "web/index.html")
	r.StaticFile("/logo.jpg", cfg.LogoPath)
	r.Static("/static", "web/static")

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// queryFrom reads the admin filter selection off the request.
func queryFrom(c *gin.Context) register.Query {
	return register.Query{
		Date:   c.Query("date"),
		Role:   c.DefaultQuery("role", register.FilterAll),
		Status: c.DefaultQuery("status", register.FilterAll),
	}
}

// seedAdmin ensures the initial dashboard account exists. Skipped when no
// password is configured so a blank credential can never be seeded.
func seedAdmin(ctx context.Context, cfg config.App, accounts *admin.Repository) {
	if cfg.AdminPassword == "" {
		log.Println("ADMIN_PASSWORD not set, skipping admin seed")
		return
	}
	hash, err := admin.HashPassword(cfg.AdminPassword)
	if err != nil {
		log.Printf("admin seed hash failed: %v", err)
		return
	}
	if err := accounts.Seed(ctx, cfg.AdminEmail, hash); err != nil {
		log.Printf("admin seed failed: %v", err)
	}
}

// watchOccupancy keeps the occupancy gauge in step with the register: every
// change event triggers a recount, with a periodic resync as backstop in case
// a notification was dropped.
func watchOccupancy(ctx context.Context, repo *register.Repository, hub notify.Hub, sched schedule.Scheduler) {
	refresh := func() {
		n, err := repo.ActiveCount(ctx)
		if err != nil {
			log.Printf("occupancy count failed: %v", err)
			return
		}
		occupancyGauge.Set(float64(n))
	}
	refresh()

	var resync func()
	resync = func() {
		if ctx.Err() != nil {
			return
		}
		refresh()
		sched.Schedule(30*time.Second, resync)
	}
	sched.Schedule(30*time.Second, resync)

	events, err := hub.Subscribe(ctx)
	if err != nil {
		log.Printf("occupancy subscribe failed: %v", err)
		return
	}
	for range events {
		refresh()
	}
}

// respondError maps engine errors onto HTTP statuses. Every outcome is
// recoverable; nothing here ends the process.
func respondError(c *gin.Context, err error) {
	var verr *register.ValidationError
	var serr *register.StorageError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error()})
	case errors.Is(err, register.ErrAlreadyCheckedIn):
		c.JSON(http.StatusConflict, gin.H{"error": "this person is already checked in; they must check out before checking in again"})
	case errors.Is(err, register.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, register.ErrNotCheckedIn):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, report.ErrNoRecords):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &serr):
		c.JSON(http.StatusBadGateway, gin.H{"error": "storage unavailable, please retry"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
