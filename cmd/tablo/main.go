package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tablo-app/tablo/app/controllers"
	"github.com/tablo-app/tablo/app/repository"
	"github.com/tablo-app/tablo/internal/pkg/archive"
	"github.com/tablo-app/tablo/internal/pkg/cache"
	"github.com/tablo-app/tablo/internal/pkg/database"
	"github.com/tablo-app/tablo/internal/pkg/env"
	"github.com/tablo-app/tablo/internal/pkg/payments"
	"github.com/tablo-app/tablo/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repos := repository.NewFactory(database.GetDB()).GetRepositories()

	gateway := payments.NewStripeGateway(
		env.GetEnv("STRIPE_SECRET_KEY", ""),
		env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
	)
	appURL := env.GetEnv("APP_URL", "http://localhost:4000")

	limiter := payments.NewRateLimiter(repos.CheckoutAttempt)
	onboarding := payments.NewOnboardingService(repos.Restaurant, gateway, appURL)
	checkout := payments.NewCheckoutService(repos.Restaurant, repos.MenuItem, limiter, gateway, appURL)
	subscriptions := payments.NewSubscriptionService(repos.Restaurant, gateway, appURL)
	webhooks := payments.NewWebhookEngine(gateway, repos.Restaurant, repos.Order, repos.WebhookEvent)
	financials := payments.NewFinancialsService(repos.Restaurant, repos.Order, gateway, payments.NewRedisReportCache())

	paymentController := controllers.NewPaymentController(onboarding, checkout, subscriptions, webhooks, financials)
	menuController := controllers.NewMenuController(repos.Restaurant, repos.MenuItem, repos.Table)
	orderController := controllers.NewOrderController(repos.Order)

	app := fiber.New(fiber.Config{
		AppName: "Tablo",
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// SWAGGER / OPENAPI
	basePath := findBasePath()
	if basePath != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: basePath + "public/docs/v1/openapi.yml",
			Path:     "v1",
		}))
	}

	// ROUTER
	router.InstallRouter(app, router.NewApiRouter(paymentController, menuController, orderController))

	startArchiver(repos)

	return app
}

// findBasePath locates the project root relative to the working directory
// so static docs resolve both from the repo root and from cmd/tablo.
func findBasePath() string {
	for _, path := range []string{"./", "../../", "../../../"} {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			return path
		}
	}
	return ""
}

// startArchiver launches the retention sweep loop when the audit archive
// is configured. A misconfigured archive is fatal only when enabled.
func startArchiver(repos *repository.Repositories) {
	cfg, err := archive.LoadConfig()
	if err != nil {
		log.Fatalf("[Archive] Invalid configuration: %v", err)
	}
	if !cfg.IsEnabled() {
		log.Println("[Archive] Audit archive disabled")
		return
	}

	archiver, err := archive.NewArchiver(cfg, repos.WebhookEvent, repos.CheckoutAttempt)
	if err != nil {
		log.Fatalf("[Archive] Setup failed: %v", err)
	}

	interval := time.Duration(env.GetEnvInt("ARCHIVE_SWEEP_INTERVAL_MINUTES", 60)) * time.Minute
	go archiver.RunPeriodically(context.Background(), interval)
	log.Printf("[Archive] Sweeping every %s", interval)
}
