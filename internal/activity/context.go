package activity

import "github.com/edvin/identity/internal/model"

// Environment holds the base platform parameters resolved once by the
// CreateTenantConfig step and threaded explicitly into every later step,
// so no step does ambient lookups of its own.
type Environment struct {
	OIDCProviderEndpoint   string `json:"oidc_provider_endpoint"`
	UserPoolID             string `json:"user_pool_id"`
	UserPoolRegion         string `json:"user_pool_region"`
	UserPoolDomainPrefix   string `json:"user_pool_domain_prefix"`
	ClientEndpoint         string `json:"client_endpoint"`
	ClientRestAPIID        string `json:"client_rest_api_id"`
	ClientCallbackEndpoint string `json:"client_callback_endpoint"`
	HostedZoneID           string `json:"hosted_zone_id"`
}

// OnboardingContext is the execution record accumulated across one
// onboarding run. Each step writes its own slot exactly once and reads
// only slots written before it.
type OnboardingContext struct {
	Request    model.OnboardingRequest `json:"request"`
	TenantUUID string                  `json:"tenant_uuid"`
	Config     ConfigResult            `json:"config"`
	Auth       AuthResult              `json:"auth"`
	Cert       CertResult              `json:"cert"`
	Ingress    IngressResult           `json:"ingress"`
}
