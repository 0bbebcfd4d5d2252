package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"todo-manager/internal/cache"
	"todo-manager/internal/config"
	"todo-manager/internal/handlers"
	"todo-manager/internal/middleware"
	"todo-manager/internal/monitoring"
	"todo-manager/internal/services"
	"todo-manager/internal/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// Application holds all application dependencies and state. Everything is
// constructed once here and passed down explicitly; there is no package-level
// default store.
type Application struct {
	Config *config.Config
	Store  *storage.Store
	Cache  cache.Cache
	Redis  *redis.Client
	Router *gin.Engine
	Server *http.Server

	TaskService services.TaskService
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ Failed to load configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize application: %v", err)
	}

	app.setupRoutes()
	app.startServer()
}

func initializeApplication(cfg *config.Config) (*Application, error) {
	app := &Application{
		Config: cfg,
	}

	log.Println("🚀 Initializing Todo Manager Backend...")
	log.Printf("📋 Environment: %s", cfg.Server.Environment)

	if dir := filepath.Dir(cfg.Storage.FilePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}
	app.Store = storage.NewStore(cfg.Storage.FilePath)
	log.Printf("✅ Task store ready at %s", app.Store.Path())

	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:         cfg.GetRedisAddr(),
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Printf("⚠️  Redis unavailable: %v (continuing with memory cache only)", err)
			redisClient.Close()
		} else {
			app.Redis = redisClient
			log.Println("✅ Redis connected")
		}
	}

	if cfg.Cache.Enabled {
		if app.Redis != nil {
			app.Cache = cache.NewMultiLevelCache(cache.NewRedisCacheWithClient(app.Redis))
			log.Println("✅ Multi-level cache initialized (Memory L1 + Redis L2)")
		} else {
			app.Cache = cache.NewMultiLevelCache(nil)
			log.Println("✅ Memory cache initialized")
		}
	}

	taskService := services.NewTaskService(app.Store)
	if app.Cache != nil {
		app.TaskService = services.NewCachedTaskService(taskService, app.Cache, cfg.Cache.TTL)
		log.Println("✅ Cached task service initialized")
	} else {
		app.TaskService = taskService
		log.Println("✅ Task service initialized")
	}

	monitoring.RegisterHealthCheck("storage", func(ctx context.Context) error {
		_, err := app.Store.ReadAll()
		return err
	})
	if app.Redis != nil {
		monitoring.RegisterHealthCheck("redis", func(ctx context.Context) error {
			return app.Redis.Ping(ctx).Err()
		})
	}

	log.Println("✅ All services initialized")

	return app, nil
}

func (app *Application) setupRoutes() {
	r := gin.New()

	// Global middleware stack (order matters!)
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(monitoring.MetricsMiddleware())
	r.Use(middleware.RecoveryWithLog())
	r.Use(middleware.SecureHeader())

	// Rate limiting: shared sliding window when redis is up, per-IP token
	// bucket otherwise.
	if app.Redis != nil {
		limiter := middleware.NewDistributedRateLimiter(app.Redis)
		r.Use(limiter.CreateMiddleware("api", &middleware.RateLimit{
			Rate:    app.Config.RateLimit.RequestsPerMin,
			Window:  time.Minute,
			KeyFunc: middleware.IPKeyFunc,
		}))
	} else {
		rateLimit := rate.Limit(float64(app.Config.RateLimit.RequestsPerMin) / 60.0)
		r.Use(middleware.RateLimiter(rateLimit, app.Config.RateLimit.BurstSize))
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://host.docker.internal"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health and monitoring endpoints
	r.GET("/health", app.healthHandler())
	r.GET("/ready", app.readinessHandler())
	r.GET("/metrics", monitoring.MetricsHandler())

	v1 := r.Group("/api/v1")

	taskHandler := handlers.NewTaskHandler(app.TaskService, !app.Config.IsProduction())
	taskRoutes := v1.Group("/tasks")
	{
		taskRoutes.POST("", taskHandler.CreateTask)
		taskRoutes.PUT("/:id", taskHandler.UpdateTask)
		taskRoutes.DELETE("/:id", taskHandler.DeleteTask)
		taskRoutes.GET("", taskHandler.GetTasks)
		taskRoutes.GET("/archive", taskHandler.GetArchive)
		taskRoutes.GET("/tags", taskHandler.GetTags)
	}

	if app.Cache != nil {
		cacheHandler := handlers.NewCacheHandler(app.Cache)
		cacheRoutes := v1.Group("/cache")
		{
			cacheRoutes.GET("/stats", cacheHandler.GetCacheStats)
			cacheRoutes.GET("/health", cacheHandler.GetCacheHealth)
			cacheRoutes.DELETE("/clear", cacheHandler.ClearCache)
		}
	}

	app.Router = r
}

func (app *Application) startServer() {
	addr := app.Config.GetServerAddr()

	app.Server = &http.Server{
		Addr:         addr,
		Handler:      app.Router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Println("🛑 Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.Server.Shutdown(ctx); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}

		app.cleanup()
		log.Println("✅ Server stopped gracefully")
	}()

	log.Printf("🚀 Server starting on %s", addr)
	log.Printf("📊 Metrics available at http://%s/metrics", addr)
	log.Printf("💚 Health check at http://%s/health", addr)

	if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}

func (app *Application) cleanup() {
	log.Println("🧹 Cleaning up resources...")

	if app.Cache != nil {
		// Closes the shared redis client too when it is the L2.
		if err := app.Cache.Close(); err != nil {
			log.Printf("⚠️  Error closing cache: %v", err)
		}
	} else if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			log.Printf("⚠️  Error closing Redis: %v", err)
		}
	}

	if err := app.Store.Close(); err != nil {
		log.Printf("⚠️  Error closing task store: %v", err)
	}

	log.Println("✅ Cleanup complete")
}

func (app *Application) healthHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		health := map[string]interface{}{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"service":   "todo-manager-backend",
		}

		if _, err := app.Store.ReadAll(); err != nil {
			health["status"] = "unhealthy"
			health["storage"] = "down"
			c.JSON(http.StatusServiceUnavailable, health)
			return
		}
		health["storage"] = "up"

		if app.Redis != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := app.Redis.Ping(ctx).Err(); err != nil {
				health["redis"] = "down"
			} else {
				health["redis"] = "up"
			}
		}

		c.JSON(http.StatusOK, health)
	}
}

func (app *Application) readinessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := app.Store.ReadAll(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"reason": "task store not readable",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ready": true})
	}
}
