package config

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	AWSRegion string
	// CertRegion is the region certificates are requested in. Edge-optimized
	// API gateway domains require us-east-1 regardless of AWSRegion.
	CertRegion string

	TemporalAddress string
	HTTPListenAddr  string
	MetricsAddr     string
	LogLevel        string
	ServiceName     string

	// ParamRoot is the parameter store namespace root. Global keys live
	// directly under it; per-tenant and per-pipeline-execution keys are
	// nested one level down.
	ParamRoot string

	TenantsTable  string
	ProviderTable string

	// FederationPipeline is the name of the build pipeline that provisions
	// a dedicated OIDC backing stack for a tenant.
	FederationPipeline string

	// ClientAPIStage is the deployed stage of the OIDC client API that
	// tenant custom domains are mapped onto.
	ClientAPIStage string

	// AdminJWTSecret verifies admin bearer tokens on the federation endpoint.
	AdminJWTSecret string

	TemporalTLSCert   string
	TemporalTLSKey    string
	TemporalTLSCACert string
}

func Load() (*Config, error) {
	cfg := &Config{
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		CertRegion:         getEnv("CERT_REGION", "us-east-1"),
		TemporalAddress:    getEnv("TEMPORAL_ADDRESS", "localhost:7233"),
		HTTPListenAddr:     getEnv("HTTP_LISTEN_ADDR", ":8080"),
		MetricsAddr:        getEnv("METRICS_ADDR", ""),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		ServiceName:        getEnv("SERVICE_NAME", ""),
		ParamRoot:          getEnv("PARAM_ROOT", "/hybridsaas"),
		TenantsTable:       getEnv("TENANTS_TABLE", "tenants"),
		ProviderTable:      getEnv("PROVIDER_TABLE", "oidc-provider"),
		FederationPipeline: getEnv("FEDERATION_PIPELINE", "oidc-provider-pipeline"),
		ClientAPIStage:     getEnv("CLIENT_API_STAGE", "dev"),
		AdminJWTSecret:     getEnv("ADMIN_JWT_SECRET", ""),
		TemporalTLSCert:    getEnv("TEMPORAL_TLS_CERT", ""),
		TemporalTLSKey:     getEnv("TEMPORAL_TLS_KEY", ""),
		TemporalTLSCACert:  getEnv("TEMPORAL_TLS_CA_CERT", ""),
	}

	if !strings.HasPrefix(cfg.ParamRoot, "/") {
		return nil, fmt.Errorf("PARAM_ROOT must start with /, got %q", cfg.ParamRoot)
	}
	cfg.ParamRoot = strings.TrimRight(cfg.ParamRoot, "/")

	return cfg, nil
}

// Validate checks that the fields required by the given role are set.
// Roles: "identity-api", "worker", "pipeline-agent".
func (c *Config) Validate(role string) error {
	var missing []string

	need := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	need("AWS_REGION", c.AWSRegion)
	need("TEMPORAL_ADDRESS", c.TemporalAddress)

	switch role {
	case "identity-api":
		need("HTTP_LISTEN_ADDR", c.HTTPListenAddr)
		need("ADMIN_JWT_SECRET", c.AdminJWTSecret)
	case "worker":
		need("TENANTS_TABLE", c.TenantsTable)
		need("PROVIDER_TABLE", c.ProviderTable)
		need("FEDERATION_PIPELINE", c.FederationPipeline)
	case "pipeline-agent":
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	if (c.TemporalTLSCert == "") != (c.TemporalTLSKey == "") {
		return fmt.Errorf("TEMPORAL_TLS_CERT and TEMPORAL_TLS_KEY must both be set or both be empty")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
