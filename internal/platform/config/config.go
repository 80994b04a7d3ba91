package config

import (
	"os"
	"strings"
	"time"
)

// Server captures process-level configuration. FromEnv builds it from
// environment variables so main stays lean.
type Server struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string
	AdminToken    string
	Redis         RedisConfig
	Kafka         KafkaConfig
	Collaborators CollaboratorConfig
}

// CollaboratorConfig holds base URLs for the external document services.
// Empty URLs disable the corresponding feature; the API then reports the
// collaborator as unavailable instead of failing at startup.
type CollaboratorConfig struct {
	ExtractionURL string
	OCRURL        string
	DraftingURL   string
}

// RedisConfig configures the optional report cache. An empty URL disables it.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional audit event publisher. Empty broker
// list disables publishing; events still reach the local audit store.
type KafkaConfig struct {
	Brokers    []string
	AuditTopic string
}

// ReportCacheTTL bounds how long a readiness report may be served from cache.
// Reports are keyed by (dossier id, version) so staleness only matters for
// reference-data changes such as call budget bounds.
var ReportCacheTTL = 5 * time.Minute

// CollaboratorTimeout bounds every external collaborator call (extraction,
// drafting). Timeouts surface as a distinct error code rather than leaving a
// dossier in an ambiguous status.
var CollaboratorTimeout = 30 * time.Second

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	addr := os.Getenv("GRANTFLOW_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		brokers = strings.Split(raw, ",")
	}
	auditTopic := os.Getenv("KAFKA_AUDIT_TOPIC")
	if auditTopic == "" {
		auditTopic = "grantflow.audit"
	}

	return Server{
		Addr:          addr,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: jwtSigningKey,
		AdminToken:    os.Getenv("ADMIN_TOKEN"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:    brokers,
			AuditTopic: auditTopic,
		},
		Collaborators: CollaboratorConfig{
			ExtractionURL: os.Getenv("GRANTFLOW_EXTRACTION_URL"),
			OCRURL:        os.Getenv("GRANTFLOW_OCR_URL"),
			DraftingURL:   os.Getenv("GRANTFLOW_DRAFTING_URL"),
		},
	}
}
