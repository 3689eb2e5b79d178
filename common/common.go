package common

import (
	"errors"
	"os"

	"github.com/gin-gonic/gin"
)

var (
	ErrProjectIDMissing = errors.New("environment variable GOOGLE_CLOUD_PROJECT is not set")
)

var (
	ProjectID string

	// Service is the Cloud Run service name, K_SERVICE.
	Service string

	// Revision is the Cloud Run revision name, K_REVISION.
	Revision string

	Env string

	// Production flag indicating if the service is running the production deployment
	Production bool

	// IsLocalhost flag indicating if the service is running on localhost
	IsLocalhost bool

	// SentryDSN is empty when sentry reporting is disabled.
	SentryDSN string

	// ConfigPath points at the JSON file holding targets and destinations.
	ConfigPath string

	// SubscriptionID enables pull mode when not empty.
	SubscriptionID string
)

const (
	productionEnv  = "production"
	developmentEnv = "development"

	defaultService  = "lighthouse"
	defaultRevision = "localhost"
	defaultConfig   = "config.json"
)

func initEnvVariables() {
	ProjectID = GetEnv("GOOGLE_CLOUD_PROJECT", "")
	Service = GetEnv("K_SERVICE", defaultService)
	Revision = GetEnv("K_REVISION", defaultRevision)
	SentryDSN = GetEnv("SENTRY_DSN", "")
	ConfigPath = GetEnv("LIGHTHOUSE_CONFIG", defaultConfig)
	SubscriptionID = GetEnv("LIGHTHOUSE_SUBSCRIPTION_ID", "")

	IsLocalhost = gin.Mode() != gin.ReleaseMode

	switch GetEnv("ENV", developmentEnv) {
	case productionEnv:
		Env = productionEnv
		Production = !IsLocalhost
	default:
		Env = developmentEnv
		Production = false
	}
}

func init() {
	initEnvVariables()
}

// RequireProjectID fails when the service cannot tell which project it runs in.
func RequireProjectID() error {
	if ProjectID == "" {
		return ErrProjectIDMissing
	}

	return nil
}

func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}
