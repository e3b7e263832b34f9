package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"umspanel/internal/audit"
	"umspanel/internal/auth"
	"umspanel/internal/authclient"
	"umspanel/internal/config"
	"umspanel/internal/httpmiddleware"
	"umspanel/internal/panel"
	"umspanel/internal/queue"
	"umspanel/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var redisClient *store.Redis
	if cfg.RateLimitBackend == "redis" || cfg.QueueBackend == "redis" {
		redisClient = store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
	}

	// Audit trail: publish from the panel, store from the in-process consumer
	// (memory queue) or from cmd/worker (redis queue).
	var (
		publisher *audit.Publisher
		history   panel.History
		auditDB   *store.DB
	)
	if cfg.AuditEnabled {
		db, err := store.NewDB(cfg.AuditDriver, cfg.AuditDSN())
		if err != nil {
			log.Printf("warning: audit store not reachable: %v", err)
		}
		auditDB = db
		defer func() {
			if auditDB != nil {
				_ = auditDB.Close()
			}
		}()

		var q queue.Queue
		if cfg.QueueBackend == "redis" {
			q = queue.NewRedisQueue(redisClient.Client, "ums:audit")
		} else {
			q = queue.NewInMemory(256)
		}
		storeReady := err == nil && db != nil
		publisher = auditPublisher(q, storeReady)
		if publisher == nil {
			log.Println("warning: login audit off until the audit store is reachable")
		}

		if storeReady {
			repo := audit.NewRepository(db.Client)
			if err := repo.Migrate(ctx); err != nil {
				log.Printf("warning: audit migrate failed: %v", err)
			}
			history = repo
			if mem, ok := q.(*queue.InMemory); ok {
				msgs, _ := mem.Consume(ctx)
				go audit.Run(ctx, msgs, repo)
			}
		}
	} else {
		log.Println("Login audit disabled (AUDIT_ENABLED=false)")
	}

	var limiter httpmiddleware.Limiter
	if cfg.RateLimitBackend == "redis" {
		limiter = httpmiddleware.NewRedisWindow(redisClient.Client, "ums:ratelimit", cfg.RateLimitPerMin)
	} else {
		limiter = httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin)
	}

	client := authclient.New(cfg.AuthBaseURL, cfg.AuthTimeout)
	sessions := panel.NewRegistry(cfg.SessionTTL, panel.NewFactory(client, cfg.BarDelay, publisher))
	go sessions.Run(ctx, time.Minute)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(securityHeaders())
	r.SetHTMLTemplate(panel.Templates())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{"status": "ok", "sessions": sessions.Len()}
		if redisClient != nil {
			healthy := redisClient.Healthy(c.Request.Context())
			body["redis"] = healthy
			if !healthy {
				status = http.StatusServiceUnavailable
			}
		}
		if cfg.AuditEnabled {
			body["audit_db"] = history != nil
		}
		c.JSON(status, body)
	})

	panelRoutes := r.Group("/", auth.SessionCookie(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.SessionTTL, cfg.Production()))
	panel.New(sessions, history).Register(panelRoutes, httpmiddleware.GinMiddleware(limiter))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting UMS panel on :%s", cfg.HTTPPort)
		log.Printf("Auth backend URL: %s", cfg.AuthBaseURL)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down panel...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Panel exited")
	return nil
}

// auditPublisher returns nil when nothing would drain q: the memory queue is
// consumed in-process only once the audit store is up.
func auditPublisher(q queue.Queue, storeReady bool) *audit.Publisher {
	if _, ok := q.(*queue.InMemory); ok && !storeReady {
		return nil
	}
	return audit.NewPublisher(q)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		// Credentials rule out a literal "*", so echo the caller's origin.
		cfg.AllowOriginFunc = func(string) bool { return true }
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
