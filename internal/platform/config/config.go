package config

import (
	"os"
	"strings"
	"time"
)

// StoreBackend selects the persistence implementation for workflows and
// exchanges.
type StoreBackend string

const (
	StoreMemory   StoreBackend = "memory"
	StorePostgres StoreBackend = "postgres"
	StoreRedis    StoreBackend = "redis"
)

// Server captures process level configuration.
type Server struct {
	Addr string

	// BaseURL is the externally reachable root URL of this service. It is
	// used verbatim to construct interaction service endpoints and exchange
	// URLs; the engine never guesses it.
	BaseURL string

	// VerifierURL is the root URL of the external credential verifier that
	// performs cryptographic presentation verification.
	VerifierURL string

	Store           StoreBackend
	DatabaseURL     string
	RedisAddr       string
	CallbackTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("VC_API_ADDR")
	if addr == "" {
		addr = ":3000"
	}

	baseURL := os.Getenv("VC_API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:3000"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	verifierURL := strings.TrimSuffix(os.Getenv("VC_API_VERIFIER_URL"), "/")

	backend := StoreBackend(os.Getenv("VC_API_STORE"))
	switch backend {
	case StorePostgres, StoreRedis:
	default:
		backend = StoreMemory
	}

	callbackTimeout := 10 * time.Second
	if raw := os.Getenv("VC_API_CALLBACK_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			callbackTimeout = d
		}
	}

	return Server{
		Addr:            addr,
		BaseURL:         baseURL,
		VerifierURL:     verifierURL,
		Store:           backend,
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		CallbackTimeout: callbackTimeout,
	}
}
