package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/domestiq/domestiq_api/configs"
	"github.com/domestiq/domestiq_api/database"
	"github.com/domestiq/domestiq_api/events"
	"github.com/domestiq/domestiq_api/handlers"
	"github.com/domestiq/domestiq_api/jobs"
	"github.com/domestiq/domestiq_api/notifications"
	"github.com/domestiq/domestiq_api/payments"
	"github.com/domestiq/domestiq_api/ratelimit"
	"github.com/domestiq/domestiq_api/routes"
	"github.com/domestiq/domestiq_api/services"
	"github.com/domestiq/domestiq_api/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const timeZone = "Africa/Johannesburg"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("🔥 Failed to load configuration: %v", err)
	}
	config.SetupLogging(cfg)
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	if err := database.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword, cfg.AdminFullName); err != nil {
		log.WithError(err).Error("Failed to seed admin user")
	}
	stores := database.NewStores(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feePercent, _ := cfg.FeePercent()
	gateway := payments.NewPaystackClient(cfg.PaystackSecretKey, cfg.WebhookSecret(), cfg.PaystackBaseURL)

	// Deliveries
	hub := websocket.NewHub()
	vapid := notifications.VAPIDConfig{PublicKey: cfg.VAPIDPublicKey, PrivateKey: cfg.VAPIDPrivateKey, Subject: cfg.VAPIDSubject}
	if !cfg.PushConfigured() {
		log.Warn("⚠️ VAPID keys not configured, web push disabled")
	}
	push := notifications.NewPushDispatcher(stores.Push, notifications.NewWebPushSender(vapid), vapid)
	var email notifications.Emailer
	if svc := notifications.NewEmailService(cfg.BrevoAPIKey, cfg.EmailSender, cfg.EmailSenderName, ""); svc != nil {
		email = svc
	}
	deliverer := notifications.NewDeliverer(stores.Notifications, stores.Users, push, email, hub)

	var publisher events.Publisher
	if cfg.RabbitMQURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.RabbitMQURL, cfg.EventsExchange)
		if err != nil {
			log.WithError(err).Warn("⚠️ RabbitMQ unavailable, events are delivered locally only")
		} else {
			defer amqpPub.Close()
			publisher = amqpPub
		}
	}
	relay := events.NewRelay(stores.Outbox, publisher, deliverer)

	translateLimiter, paymentLimiter := newLimiters(ctx, cfg)

	// Services
	authSvc := services.NewAuthService(stores.Users, cfg.JWTSecret, time.Duration(cfg.JWTExpireHours)*time.Hour)
	paymentSvc := services.NewPaymentService(gateway, stores.Bookings, stores.Transactions, stores.Settlement, services.PaymentConfig{
		FeePercent:  feePercent,
		Currency:    cfg.Currency,
		CallbackURL: cfg.PaymentCallbackURL,
		BankCountry: cfg.BankCountry,
	})
	payoutSvc := services.NewPayoutService(gateway, stores.Workers, stores.Transactions, stores.Payouts, stores.Settlement, cfg.Currency, cfg.BankCountry)
	webhookSvc := services.NewWebhookService(gateway, paymentSvc, payoutSvc, stores.WebhookEvents)
	bookingSvc := services.NewBookingService(stores.Bookings, stores.Workers, stores.Reviews, stores.Notifications)
	consentSvc := services.NewConsentService(stores.Consents)

	var renderer services.StatementRenderer
	if cfg.ChromePDFEnabled && cfg.CloudinaryURL != "" {
		r, err := services.NewChromeStatementRenderer(cfg.CloudinaryURL)
		if err != nil {
			log.WithError(err).Warn("⚠️ Statement PDFs disabled")
		} else {
			renderer = r
		}
	}
	incomeSvc := services.NewIncomeService(stores.Transactions, stores.Statements, consentSvc, stores.Workers, renderer, cfg.Currency)

	var signer services.UploadSigner
	if cfg.CloudinaryURL != "" {
		s, err := services.NewCloudinarySigner(cfg.CloudinaryURL)
		if err != nil {
			log.WithError(err).Warn("⚠️ Document uploads disabled")
		} else {
			signer = s
		}
	}
	verificationSvc := services.NewVerificationService(stores.Documents, stores.Workers, stores.Notifications, signer)

	// Background jobs
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		log.WithError(err).Warnf("Unknown time zone %s, scheduling in UTC", timeZone)
		loc = time.UTC
	}
	scheduler, err := jobs.Schedule(jobs.Jobs{
		Reminder:   bookingSvc,
		Expirer:    paymentSvc,
		Relay:      relay,
		Statements: incomeSvc,
	}, loc)
	if err != nil {
		log.Fatalf("🔥 Failed to schedule jobs: %v", err)
	}
	scheduler.Start()
	log.Println("✅ Background jobs scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:      "DomestIQ API",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			log.WithFields(log.Fields{"path": c.Path(), "method": c.Method()}).WithError(err).Error("request failed")
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, X-API-Key, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Retry-After, X-RateLimit-Limit, X-RateLimit-Remaining",
		MaxAge:        86400,
	}))
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   timeZone,
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to DomestIQ API",
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	routes.Setup(app, routes.Deps{
		JWTSecret:        cfg.JWTSecret,
		PartnerKeys:      cfg.PartnerAPIKeys,
		TranslateLimiter: translateLimiter,
		PaymentLimiter:   paymentLimiter,
		Auth:             handlers.NewAuthHandler(authSvc),
		Payments:         handlers.NewPaymentHandler(paymentSvc, webhookSvc),
		Bookings:         handlers.NewBookingHandler(bookingSvc),
		Workers:          handlers.NewWorkerHandler(services.NewProfileService(stores.Workers), services.NewSearchService(stores.Workers), payoutSvc),
		Notifications:    handlers.NewNotificationHandler(stores.Notifications, stores.Push, cfg.VAPIDPublicKey),
		Income:           handlers.NewIncomeHandler(consentSvc, incomeSvc),
		Verification:     handlers.NewVerificationHandler(verificationSvc),
		Translation:      handlers.NewTranslationHandler(services.NewTranslationService(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)),
		Admin:            handlers.NewAdminHandler(stores.Users, stores.Bookings, stores.Transactions, stores.Payouts, payoutSvc, stores.Ledger),
		Live:             handlers.NewLiveHandler(hub, cfg.JWTSecret),
	})

	go func() {
		<-ctx.Done()
		log.Info("Shutting down")
		<-scheduler.Stop().Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("Server shutdown failed")
		}
	}()

	log.Printf("✅ Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}

// newLimiters prefers redis so limits hold across instances, falling back to process memory.
func newLimiters(ctx context.Context, cfg *config.AppConfig) (ratelimit.Limiter, ratelimit.Limiter) {
	translate := ratelimit.Config{Limit: cfg.TranslateLimit, Window: cfg.TranslateWindow, Prefix: "rl:translate"}
	payment := ratelimit.Config{Limit: cfg.PaymentLimit, Window: time.Minute, Prefix: "rl:payments"}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		err := rdb.Ping(pingCtx).Err()
		if err == nil {
			log.WithField("addr", cfg.RedisAddr).Info("✅ Connected to Redis for rate limiting")
			return ratelimit.NewRedisLimiter(rdb, translate), ratelimit.NewRedisLimiter(rdb, payment)
		}
		log.WithError(err).Warn("⚠️ Redis unavailable, using in-memory rate limits")
		_ = rdb.Close()
	}

	t := ratelimit.NewMemoryLimiter(translate, time.Now)
	p := ratelimit.NewMemoryLimiter(payment, time.Now)
	go t.Run(ctx, time.Minute)
	go p.Run(ctx, time.Minute)
	return t, p
}
