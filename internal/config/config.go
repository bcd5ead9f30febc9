package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env           string
	Port          string
	SessionSecret string
	DatabaseURL   string
	RedisURL      string

	// OwnerUserID seeds the settings row on first boot; later owner changes
	// go through the governance-gated setters.
	OwnerUserID string

	// Collaborator endpoint seeds. Runtime values live in the settings row
	// and are updated through /admin/update-collaborators.
	EmissionSourceURL string
	CreditLedgerURL   string
	TokenIssuerURL    string
	AuthzServiceURL   string
	CalculatorURL     string
	CollaboratorKey   string // bearer key sent to every collaborator service

	HealthAdminKey      string
	AllowedOriginSuffix string
	AllowCrossSiteDev   bool
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}

	return &Config{
		Env:                 env,
		Port:                port,
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		OwnerUserID:         viper.GetString("OWNER_USER_ID"),
		EmissionSourceURL:   viper.GetString("EMISSION_SOURCE_URL"),
		CreditLedgerURL:     viper.GetString("CREDIT_LEDGER_URL"),
		TokenIssuerURL:      viper.GetString("TOKEN_ISSUER_URL"),
		AuthzServiceURL:     viper.GetString("AUTHZ_SERVICE_URL"),
		CalculatorURL:       viper.GetString("CALCULATOR_URL"),
		CollaboratorKey:     viper.GetString("COLLABORATOR_API_KEY"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		AllowedOriginSuffix: viper.GetString("ALLOWED_ORIGIN_SUFFIX"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
	}, nil
}
