package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type AppConfig struct {
	Env         string `envconfig:"APP_ENV" default:"development"`
	Port        string `envconfig:"PORT" default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	JWTSecret      string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireHours int    `envconfig:"JWT_EXPIRE_HOURS" default:"72"`

	PaystackSecretKey     string `envconfig:"PAYSTACK_SECRET_KEY"`
	PaystackWebhookSecret string `envconfig:"PAYSTACK_WEBHOOK_SECRET"`
	PaystackBaseURL       string `envconfig:"PAYSTACK_BASE_URL" default:"https://api.paystack.co"`
	PaymentCallbackURL    string `envconfig:"PAYMENT_CALLBACK_URL" default:"http://localhost:3000/payments/callback"`
	PlatformFeePercent    string `envconfig:"PLATFORM_FEE_PERCENT" default:"0.1"`
	Currency              string `envconfig:"CURRENCY" default:"ZAR"`
	BankCountry           string `envconfig:"BANK_COUNTRY" default:"south africa"`

	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDSubject    string `envconfig:"VAPID_SUBJECT" default:"mailto:support@domestiq.co.za"`

	BrevoAPIKey     string `envconfig:"BREVO_API_KEY"`
	EmailSender     string `envconfig:"EMAIL_SENDER"`
	EmailSenderName string `envconfig:"EMAIL_SENDER_NAME" default:"DomestIQ"`

	CloudinaryURL    string `envconfig:"CLOUDINARY_URL"`
	ChromePDFEnabled bool   `envconfig:"CHROME_PDF_ENABLED" default:"false"`

	LLMAPIKey  string `envconfig:"LLM_API_KEY"`
	LLMBaseURL string `envconfig:"LLM_BASE_URL" default:"https://api.openai.com/v1"`
	LLMModel   string `envconfig:"LLM_MODEL" default:"gpt-4o-mini"`

	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	TranslateLimit  int           `envconfig:"TRANSLATE_LIMIT" default:"20"`
	TranslateWindow time.Duration `envconfig:"TRANSLATE_WINDOW" default:"1m"`
	PaymentLimit    int           `envconfig:"PAYMENT_INIT_LIMIT" default:"10"`

	RabbitMQURL    string `envconfig:"RABBITMQ_URL"`
	EventsExchange string `envconfig:"EVENTS_EXCHANGE" default:"domestiq.events"`

	PartnerAPIKeys []string `envconfig:"PARTNER_API_KEYS"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	AdminFullName string `envconfig:"ADMIN_FULL_NAME" default:"DomestIQ Admin"`
}

// Load reads .env when present and then the process environment.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if _, err := cfg.FeePercent(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) FeePercent() (decimal.Decimal, error) {
	pct, err := decimal.NewFromString(strings.TrimSpace(c.PlatformFeePercent))
	if err != nil {
		return decimal.Zero, fmt.Errorf("PLATFORM_FEE_PERCENT %q: %w", c.PlatformFeePercent, err)
	}
	if pct.IsNegative() || pct.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("PLATFORM_FEE_PERCENT must be in [0,1), got %s", pct)
	}
	return pct, nil
}

// WebhookSecret falls back to the secret key, which is what Paystack signs with by default.
func (c *AppConfig) WebhookSecret() string {
	if c.PaystackWebhookSecret != "" {
		return c.PaystackWebhookSecret
	}
	return c.PaystackSecretKey
}

func (c *AppConfig) PushConfigured() bool {
	return c.VAPIDPublicKey != "" && c.VAPIDPrivateKey != ""
}

func (c *AppConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// SetupLogging configures the shared logrus logger.
func SetupLogging(c *AppConfig) {
	if c.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339})
		log.SetLevel(log.InfoLevel)
		return
	}
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	log.SetLevel(log.DebugLevel)
}
