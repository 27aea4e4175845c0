// Package config loads the document core's runtime configuration from the
// environment, following the teacher's LoadConfig/Validate + getEnv/getEnvBool/
// getEnvInt pattern. The layout defaults here — layer gap, intra-layer gap,
// container padding, header height, pin gap — are what the layout-actions
// façade passes to domain/geometry, so an operator (or a test) can retune
// them without touching that package. domain/geometry keeps its own
// hardcoded fallbacks for callers that pass a zero-value Options struct.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every environment-tunable knob the document core and its
// reference infrastructure (persistence, event bus, HTTP/WS front door) need.
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Document defaults (SPEC_FULL.md "Configuration")
	DefaultPageName string
	// MaxDepth bounds every ancestor/descendant walk (presentation's hidden-
	// descendants BFS, layoutactions' topLevelAncestor climb). 20 by default,
	// overridable so tests can exercise the guard without building 20 levels.
	MaxDepth int
	// LayerGap/IntraLayerGap are application/layoutactions' Hierarchical/Flow
	// defaults (60/30 in the teacher's worked examples).
	LayerGap      float64
	IntraLayerGap float64
	// ContainerPadding/HeaderHeight are ComputeContainerFit's defaults.
	ContainerPadding float64
	HeaderHeight     float64
	// PinGap is ResolvePins' clearance between a pinned pair.
	PinGap float64
	// AIMCPBypassesUndoTracking toggles whether transactions committed under
	// OriginAIMCP are reported to out-of-process collaborators (via
	// events.DocumentChanged.UndoTracked) as undo-eligible. true matches
	// spec.md §5's default (ai-mcp bypasses undo); an operator can flip it
	// for an audit-strict deployment that wants every agent edit undoable.
	AIMCPBypassesUndoTracking bool

	// AWS configuration
	AWSRegion     string
	DocumentTable string
	EventBusName  string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string
	ColdStartTimeout   int // milliseconds

	// WebSocket configuration
	WebSocketEndpoint string
	ConnectionsTable  string

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Rate limiting — ai-mcp collaborators get their own budget, separate
	// from interactive user traffic, since a misbehaving agent can otherwise
	// starve the document of transaction slots.
	AIMCPRateLimitPerMinute int

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool

	// CORSAllowedOrigins lists the origins interfaces/http's Router permits,
	// comma-separated in CORS_ALLOWED_ORIGINS.
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		DefaultPageName:           getEnv("DEFAULT_PAGE_NAME", "Page 1"),
		MaxDepth:                  getEnvInt("MAX_DEPTH", 20),
		LayerGap:                  getEnvFloat("LAYER_GAP", 60.0),
		IntraLayerGap:             getEnvFloat("INTRA_LAYER_GAP", 30.0),
		ContainerPadding:          getEnvFloat("CONTAINER_PADDING", 20.0),
		HeaderHeight:              getEnvFloat("HEADER_HEIGHT", 40.0),
		PinGap:                    getEnvFloat("PIN_GAP", 20.0),
		AIMCPBypassesUndoTracking: getEnvBool("AI_MCP_BYPASSES_UNDO_TRACKING", true),

		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DocumentTable: getEnv("DOCUMENT_TABLE", getEnv("DYNAMODB_TABLE", "cartadoc-documents")),
		EventBusName:  getEnv("EVENT_BUS_NAME", "cartadoc-events"),

		IsLambda:           getEnvBool("IS_LAMBDA", false),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),
		ColdStartTimeout:   getEnvInt("COLD_START_TIMEOUT", 3000),

		WebSocketEndpoint: getEnv("WEBSOCKET_ENDPOINT", ""),
		ConnectionsTable:  getEnv("CONNECTIONS_TABLE", "cartadoc-connections"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "cartadoc"),

		AIMCPRateLimitPerMinute: getEnvInt("AI_MCP_RATE_LIMIT_PER_MINUTE", 120),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),

		CORSAllowedOrigins: getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig for backwards compatibility.
func Load() (*Config, error) {
	return LoadConfig()
}

// Default returns the configuration every package falls back to when no
// explicit Config was wired in (tests, and any caller that hasn't gone
// through LoadConfig) — its numeric fields match domain/geometry's own
// unconfigured defaults exactly, so swapping a bare package const for
// cfg.Field never changes existing behavior.
func Default() *Config {
	return &Config{
		DefaultPageName:           "Page 1",
		MaxDepth:                  20,
		LayerGap:                  60.0,
		IntraLayerGap:             30.0,
		ContainerPadding:          20.0,
		HeaderHeight:              40.0,
		PinGap:                    20.0,
		AIMCPBypassesUndoTracking: true,
		LogLevel:                  "info",
		AIMCPRateLimitPerMinute:   120,
		EnableCORS:                true,
		CORSAllowedOrigins:        []string{"http://localhost:3000"},
	}
}

// Validate checks that production deployments carry the configuration they
// need to run safely.
func (c *Config) Validate() error {
	if c.MaxDepth <= 0 {
		return fmt.Errorf("MAX_DEPTH must be positive, got %d", c.MaxDepth)
	}
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DocumentTable == "" {
			return fmt.Errorf("DOCUMENT_TABLE is required")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
	}
	return nil
}

// IsDevelopment reports whether the environment is "development".
func (c *Config) IsDevelopment() bool { return c.Environment == "development" }

// IsProduction reports whether the environment is "production".
func (c *Config) IsProduction() bool { return c.Environment == "production" }

// ColdStartBudget returns ColdStartTimeout as a time.Duration, for cmd/lambda.
func (c *Config) ColdStartBudget() time.Duration {
	return time.Duration(c.ColdStartTimeout) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvStringSlice splits a comma-separated env var, trimming whitespace
// around each entry. Used for CORS_ALLOWED_ORIGINS.
func getEnvStringSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
