// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"seeforme/caption-api/caption"
	"seeforme/caption-api/db"
	"seeforme/caption-api/middleware"
	"seeforme/caption-api/security"
	"seeforme/caption-api/service"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"
	"github.com/robfig/cron/v3"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

type API struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Argon    *security.ArgonHash
	Captions *caption.Pool
	Sweeper  *cron.Cron
}

func NewRouter() (*API, error) {
	a := &API{}

	db, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = db

	makeLogger()

	// Provider choice is made here, once. Every handler only ever
	// sees the pool
	a.Captions = caption.NewPool(caption.New(), caption.PoolOpts{
		Workers:   viper.GetInt("caption.workers"),
		QueueSize: viper.GetInt("caption.max_jobs"),
		Timeout:   viper.GetDuration("caption.timeout"),
	})

	a.Argon = security.New()

	sweeper, err := service.StartReconciler(db)
	if err != nil {
		return nil, fmt.Errorf("failed to start the orphan sweeper, %w", err)
	}
	a.Sweeper = sweeper

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     viper.GetStringSlice("cors.origins"),
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	a.registerRoutes()

	return a, nil
}

func (a *API) registerRoutes() {
	a.Router.HandleMethodNotAllowed = true
	a.Router.RedirectFixedPath = true
	a.Router.MaxMultipartMemory = 8 << 20

	jwt := middleware.NewJWTMiddleware(a.DB)
	maxUploadSize := viper.GetInt64("upload.max_size")

	authLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: viper.GetInt("rate.rps"),
		Burst:             viper.GetInt("rate.burst"),
	})

	main := a.Router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates a JWT token
		main.HEAD("/validate", jwt, a.Validate)
	}

	auth := main.Group("/auth", middleware.BodySizeLimiter(1<<20), authLimiter)
	{
		// POST /api/auth/register 	-> Registers a new user, returns their token
		auth.POST("/register", a.UserRegister)

		// POST /api/auth/login 	-> Logs in a user, returns their token
		auth.POST("/login", a.UserLogin)

		// GET /api/auth/me		-> Returns the authenticated user's profile
		auth.GET("/me", jwt, a.UserFetch)
	}

	videos := main.Group("/videos")
	{
		// POST /api/videos/upload	-> Uploads a video, captions it and stores the record
		videos.POST("/upload", jwt, middleware.BodySizeLimiter(maxUploadSize+(8<<20)), a.VideoUpload)

		// GET /api/videos/history	-> Returns a page of the user's upload history
		videos.GET("/history", jwt, a.VideoHistory)

		// GET /api/videos/samples	-> Returns the curated sample videos
		videos.GET("/samples", cacheFor(60), a.Samples)

		// GET /api/videos/:id		-> Returns a single upload record
		videos.GET("/:id", jwt, a.VideoFetch)

		// DELETE /api/videos/history/clear -> Removes the user's whole history
		videos.DELETE("/history/clear", jwt, a.HistoryClear)

		// DELETE /api/videos/:id	-> Removes a single upload record and its file
		videos.DELETE("/:id", jwt, a.VideoDelete)
	}

	// Stored videos are served straight off the disk under the same
	// prefix their public URLs are built with
	a.Router.Static(viper.GetString("storage.public_prefix"), viper.GetString("storage.root"))
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
