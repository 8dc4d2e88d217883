package config

import (
	"fmt"
	"strings"
	"time"

	apperrors "sumitpay/internal/errors"

	"github.com/shopspring/decimal"
)

type Environment string

const (
	EnvironmentProduction  Environment = "production"
	EnvironmentDevelopment Environment = "development"
)

type PCIMode string

const (
	PCIModeDirect    PCIMode = "direct"
	PCIModeTokenized PCIMode = "tokenized"
	PCIModeRedirect  PCIMode = "redirect"
)

type Credentials struct {
	CompanyID    string
	APIKey       string
	APIPublicKey string
}

type GatewayConfig struct {
	Environment  Environment
	BaseURL      string
	DevURL       string
	Timeout      time.Duration
	SSLVerify    bool
	SendClientIP bool
	ClientName   string
	Locale       string
}

type PaymentConfig struct {
	PCIMode                    PCIMode
	TokenParam                 string
	TestingMode                bool
	AuthorizeOnly              bool
	AuthorizeAddedPercent      decimal.Decimal
	AuthorizeMinimumAddition   decimal.Decimal
	DraftDocument              bool
	EmailDocument              bool
	MerchantNumber             string
	SubscriptionMerchantNumber string
	MaxInstallments            int
	// DefaultCurrency is used when neither the order nor the ledger names one.
	DefaultCurrency string
}

type DocumentsConfig struct {
	DefaultLanguage string
	AutoLanguage    bool
}

type LoggingConfig struct {
	Enabled bool
	Level   string
}

type FeaturesConfig struct {
	Donations            bool
	RecurringBilling     bool
	RecurringSchedule    string
	RecurringConcurrency int
}

type ServerConfig struct {
	Port         string
	AllowOrigins string
}

type DatabaseConfig struct {
	Host            string
	User            string
	Password        string
	Name            string
	Port            string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DSN renders a key/value connection string understood by lib/pq.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether a Redis host was configured.
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

type SecurityConfig struct {
	JWTSecret          string
	TokenEncryptionKey string
}

// Configuration is resolved once at startup and passed by value to every
// component constructor. Nothing mutates it afterwards.
type Configuration struct {
	Credentials Credentials
	Gateway     GatewayConfig
	Payment     PaymentConfig
	Documents   DocumentsConfig
	Logging     LoggingConfig
	Features    FeaturesConfig
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Security    SecurityConfig
}

// Resolve reads the process environment into a Configuration. Unknown enum
// values are rejected here so a bad deployment fails at startup.
func Resolve() (Configuration, error) {
	env, err := ParseEnvironment(GetEnv("SUMIT_ENVIRONMENT", "www"))
	if err != nil {
		return Configuration{}, err
	}
	pci, err := ParsePCIMode(GetEnv("SUMIT_PCI_MODE", "redirect"))
	if err != nil {
		return Configuration{}, err
	}
	tokenParam := strings.ToUpper(GetEnv("SUMIT_TOKEN_PARAM", "J2"))
	if tokenParam != "J2" && tokenParam != "J5" {
		return Configuration{}, apperrors.ErrNotConfigured.WithMessage(
			fmt.Sprintf("unsupported SUMIT_TOKEN_PARAM %q", tokenParam))
	}

	cfg := Configuration{
		Credentials: Credentials{
			CompanyID:    strings.TrimSpace(GetEnv("SUMIT_COMPANY_ID", "")),
			APIKey:       strings.TrimSpace(GetEnv("SUMIT_API_KEY", "")),
			APIPublicKey: strings.TrimSpace(GetEnv("SUMIT_API_PUBLIC_KEY", "")),
		},
		Gateway: GatewayConfig{
			Environment:  env,
			BaseURL:      strings.TrimRight(GetEnv("SUMIT_API_URL", "https://api.sumit.co.il"), "/"),
			DevURL:       strings.TrimRight(GetEnv("SUMIT_DEV_API_URL", "http://dev.api.sumit.co.il"), "/"),
			Timeout:      GetDurationEnv("SUMIT_API_TIMEOUT", 180*time.Second),
			SSLVerify:    GetBoolEnv("SUMIT_SSL_VERIFY", true),
			SendClientIP: GetBoolEnv("SUMIT_SEND_CLIENT_IP", true),
			ClientName:   GetEnv("SUMIT_CLIENT_NAME", "sumitpay"),
			Locale:       GetEnv("SUMIT_LOCALE", "he"),
		},
		Payment: PaymentConfig{
			PCIMode:                    pci,
			TokenParam:                 tokenParam,
			TestingMode:                GetBoolEnv("SUMIT_TESTING_MODE", false),
			AuthorizeOnly:              GetBoolEnv("SUMIT_AUTHORIZE_ONLY", false),
			AuthorizeAddedPercent:      GetDecimalEnv("SUMIT_AUTHORIZE_ADDED_PERCENT", decimal.Zero),
			AuthorizeMinimumAddition:   GetDecimalEnv("SUMIT_AUTHORIZE_MINIMUM_ADDITION", decimal.Zero),
			DraftDocument:              GetBoolEnv("SUMIT_DRAFT_DOCUMENT", true),
			EmailDocument:              GetBoolEnv("SUMIT_EMAIL_DOCUMENT", true),
			MerchantNumber:             GetEnv("SUMIT_MERCHANT_NUMBER", ""),
			SubscriptionMerchantNumber: GetEnv("SUMIT_SUBSCRIPTION_MERCHANT_NUMBER", ""),
			MaxInstallments:            GetIntEnv("SUMIT_MAX_INSTALLMENTS", 12),
			DefaultCurrency:            strings.ToUpper(strings.TrimSpace(GetEnv("SUMIT_DEFAULT_CURRENCY", "ILS"))),
		},
		Documents: DocumentsConfig{
			DefaultLanguage: GetEnv("SUMIT_DOCUMENT_LANGUAGE", "he"),
			AutoLanguage:    GetBoolEnv("SUMIT_AUTO_DOCUMENT_LANGUAGE", true),
		},
		Logging: LoggingConfig{
			Enabled: GetBoolEnv("SUMIT_LOGGING_ENABLED", true),
			Level:   GetEnv("SUMIT_LOG_LEVEL", "debug"),
		},
		Features: FeaturesConfig{
			Donations:            GetBoolEnv("SUMIT_DONATIONS_ENABLED", false),
			RecurringBilling:     GetBoolEnv("SUMIT_RECURRING_ENABLED", true),
			RecurringSchedule:    GetEnv("SUMIT_RECURRING_SCHEDULE", "@every 1h"),
			RecurringConcurrency: GetIntEnv("SUMIT_RECURRING_CONCURRENCY", 4),
		},
		Server: ServerConfig{
			Port:         GetEnv("PORT", "3000"),
			AllowOrigins: GetEnv("CORS_ALLOW_ORIGINS", "*"),
		},
		Database: DatabaseConfig{
			Host:            GetEnv("DB_HOST", "localhost"),
			User:            GetEnv("DB_USER", "postgres"),
			Password:        GetEnv("DB_PASSWORD", "postgres"),
			Name:            GetEnv("DB_NAME", "sumitpay"),
			Port:            GetEnv("DB_PORT", "5432"),
			SSLMode:         GetEnv("DB_SSLMODE", "disable"),
			MaxIdleConns:    GetIntEnv("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    GetIntEnv("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: GetDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: GetDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Host:     GetEnv("REDIS_HOST", ""),
			Port:     GetEnv("REDIS_PORT", "6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetIntEnv("REDIS_DB", 0),
		},
		Security: SecurityConfig{
			JWTSecret:          GetEnv("JWT_SECRET", ""),
			TokenEncryptionKey: GetEnv("TOKEN_ENCRYPTION_KEY", ""),
		},
	}

	if cfg.Payment.MaxInstallments < 1 {
		cfg.Payment.MaxInstallments = 1
	}
	if cfg.Features.RecurringConcurrency < 1 {
		cfg.Features.RecurringConcurrency = 1
	}
	return cfg, nil
}

// RequireCredentials fails when the private credentials needed for any
// payment operation are missing.
func (c Configuration) RequireCredentials() error {
	var missing []string
	if c.Credentials.CompanyID == "" {
		missing = append(missing, "SUMIT_COMPANY_ID")
	}
	if c.Credentials.APIKey == "" {
		missing = append(missing, "SUMIT_API_KEY")
	}
	if len(missing) > 0 {
		return apperrors.ErrNotConfigured.Wrap(fmt.Errorf("missing %s", strings.Join(missing, ", ")))
	}
	return nil
}

// ParseEnvironment maps the accepted spellings onto an Environment.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "production", "www", "":
		return EnvironmentProduction, nil
	case "development", "dev":
		return EnvironmentDevelopment, nil
	}
	return "", apperrors.ErrNotConfigured.WithMessage(fmt.Sprintf("unsupported SUMIT_ENVIRONMENT %q", s))
}

// ParsePCIMode accepts both the named modes and the legacy yes/no values.
func ParsePCIMode(s string) (PCIMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct", "yes":
		return PCIModeDirect, nil
	case "tokenized", "no":
		return PCIModeTokenized, nil
	case "redirect", "":
		return PCIModeRedirect, nil
	}
	return "", apperrors.ErrNotConfigured.WithMessage(fmt.Sprintf("unsupported SUMIT_PCI_MODE %q", s))
}
