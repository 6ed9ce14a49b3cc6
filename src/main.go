package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path"
	"regexp"
	"syscall"
	"time"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wasnasmay/altess-final-sub004/src/boot"
	"github.com/wasnasmay/altess-final-sub004/src/config"
	"github.com/wasnasmay/altess-final-sub004/src/lib"
	"github.com/wasnasmay/altess-final-sub004/src/lib/notify"
	"github.com/wasnasmay/altess-final-sub004/src/middlewares"
	"github.com/wasnasmay/altess-final-sub004/src/types"
	"github.com/wasnasmay/altess-final-sub004/src/webhooks"
	"gorm.io/gorm"
)

const (
	apiPrefix string = "/api/v1"
)

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

// maintenanceModeMiddleware answers 503 on every route registered after it
// while MAINTENANCE_MODE is on. Stripe keeps redelivering until it is off.
func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		if config.MaintenanceMode() {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func metricsRoute(g *gin.Engine) {
	g.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// readinessRoute reports whether the stores the webhook depends on answer.
// Redis only counts when it is configured.
func readinessRoute(g *gin.Engine, database *gorm.DB) {
	g.GET("/readyz", func(ctx *gin.Context) {
		status := http.StatusOK
		checks := gin.H{"database": "ok"}
		sqlDB, err := database.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			log.Printf("[readyz] database: %s\n", err.Error())
			checks["database"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if lib.GetRedisClient() != nil {
			checks["redis"] = "ok"
			if err := lib.PingRedis(ctx); err != nil {
				log.Printf("[readyz] redis: %s\n", err.Error())
				checks["redis"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		ctx.JSON(status, checks)
	})
}

func corsMiddleware(apiEnv string, appHost string) gin.HandlerFunc {
	if apiEnv == string(types.Local) || appHost == "" {
		return cors.Default()
	}
	cc := cors.DefaultConfig()
	cc.AllowMethods = []string{"GET", "HEAD", "OPTIONS"}
	cc.AllowHeaders = append(cc.AllowHeaders, "Origin")
	hostPattern := regexp.MustCompile(regexp.QuoteMeta(appHost) + "$")
	cc.AllowOriginFunc = func(origin string) bool {
		return hostPattern.MatchString(origin)
	}
	return cors.New(cc)
}

func initLogger() {
	cwd, _ := os.Getwd()
	logsDir := path.Join(cwd, "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		log.Printf("Could not create logs directory: %s\n", err.Error())
		return
	}
	serverLogs := path.Join(logsDir, "server.log")
	apiLogs := path.Join(logsDir, "api.log")

	f, err := os.OpenFile(apiLogs, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err == nil {
		gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	}
	log.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}))
}

func main() {
	apiEnv := config.APIEnv()
	if apiEnv == string(types.Local) {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()

	database := boot.InitDb()

	sender, err := notify.NewSender(config.NotifyTransport())
	if err != nil {
		log.Fatalf("Could not configure notifications: %s", err)
	}
	dispatcher := notify.NewDispatcher(database, sender,
		notify.WithQRResolver(notify.NewQRResolver(config.AssetsBucket(), config.TempDir())),
		notify.WithWorkers(config.NotifyWorkers()),
		notify.WithQueueSize(config.NotifyQueueSize()),
		notify.WithMaxAttempts(config.NotifyMaxAttempts()),
	)
	dispatcher.Start()
	boot.InitScheduler(dispatcher)

	opts := []webhooks.Option{
		webhooks.WithNotifier(dispatcher),
		webhooks.WithPeriodSource(webhooks.NewStripePeriodSource(lib.GetStripeClient())),
	}
	if rdb := lib.GetRedisClient(); rdb != nil {
		opts = append(opts, webhooks.WithLedger(webhooks.NewRedisLedger(rdb, config.PROCESSED_EVENT_TTL)))
	} else {
		log.Println("[StripeEvent] REDIS_HOST not set, duplicate events are caught by the database only")
	}
	reconciler := webhooks.NewReconciler(database, opts...)

	secretCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	verifier := webhooks.NewVerifier(boot.ResolveWebhookSecret(secretCtx))
	cancel()

	router := setupRouter()
	metricsRoute(router)
	readinessRoute(router, database)
	router = maintenanceModeMiddleware(router)

	stripeWebhookRoute(router, verifier, reconciler)

	apiv1 := apiv1Group(router)
	checkoutHandlers(apiv1.Group("", corsMiddleware(apiEnv, config.AppHost())), database, lib.RetrieveCheckoutSession)

	admin := apiv1.Group("/admin")
	admin.Use(middlewares.AdminMiddleware)
	adminHandlers(admin, database, dispatcher)

	srv := &http.Server{
		Addr:              ":" + config.Port(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %s", err)
		}
	}()
	log.Printf("Listening on %s\n", srv.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("Shutting down...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %s\n", err.Error())
	}
	boot.StopScheduler()
	dispatcher.Stop()
}
