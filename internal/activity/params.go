package activity

import "github.com/edvin/identity/internal/model"

// ConfigParams is the input to CreateTenantConfig.
type ConfigParams struct {
	Request    model.OnboardingRequest `json:"request"`
	TenantUUID string                  `json:"tenant_uuid"`
}

// ConfigResult carries the resolved base environment and the shared-pool
// app client created for the tenant.
type ConfigResult struct {
	Env         Environment `json:"env"`
	AppClientID string      `json:"app_client_id"`
}

// AuthParams is the input to CreateTenantAuth.
type AuthParams struct {
	TenantSubDomain string `json:"tenant_sub_domain"`
	TenantUUID      string `json:"tenant_uuid"`
}

// AuthResult is the dedicated-pool linkage fed into the federation
// sub-workflow.
type AuthResult struct {
	Federation model.FederationRequest `json:"federation"`
}

// CertParams is the input to RequestTenantCert.
type CertParams struct {
	TenantSubDomain   string `json:"tenant_sub_domain"`
	TenantEmailDomain string `json:"tenant_email_domain"`
	TenantUUID        string `json:"tenant_uuid"`
}

// CertResult carries the requested certificate's ARN.
type CertResult struct {
	CertificateARN string `json:"certificate_arn"`
}

// CertStatusParams is the input to both certificate polling steps.
type CertStatusParams struct {
	CertificateARN string `json:"certificate_arn"`
}

// CNAMEParams is the input to CreateCertCNAME.
type CNAMEParams struct {
	CertificateARN string `json:"certificate_arn"`
	HostedZoneID   string `json:"hosted_zone_id"`
}

// IngressParams is the input to CreateTenantIngress.
type IngressParams struct {
	TenantSubDomain   string      `json:"tenant_sub_domain"`
	TenantEmailDomain string      `json:"tenant_email_domain"`
	TenantUUID        string      `json:"tenant_uuid"`
	CertificateARN    string      `json:"certificate_arn"`
	Env               Environment `json:"env"`
}

// IngressResult carries the created ingress domain.
type IngressResult struct {
	DomainName         string `json:"domain_name"`
	DistributionDomain string `json:"distribution_domain"`
}

// StartPipelineParams is the input to StartFederationPipeline. WorkflowID
// and RunID identify the suspended federation workflow the pipeline's
// completion action will resume.
type StartPipelineParams struct {
	TenantUUID string                  `json:"tenant_uuid"`
	WorkflowID string                  `json:"workflow_id"`
	RunID      string                  `json:"run_id"`
	Request    model.FederationRequest `json:"request"`
}

// StartPipelineResult reports which path the bridge took. Exactly one of
// AlreadyAvailable or PipelineExecutionID is set.
type StartPipelineResult struct {
	AlreadyAvailable     bool   `json:"already_available"`
	OIDCProviderEndpoint string `json:"oidc_provider_endpoint,omitempty"`
	PipelineExecutionID  string `json:"pipeline_execution_id,omitempty"`
}

// FederationParams is the input to AddFederationConfig.
type FederationParams struct {
	TenantUUID           string                  `json:"tenant_uuid"`
	Request              model.FederationRequest `json:"request"`
	PipelineExecutionID  string                  `json:"pipeline_execution_id,omitempty"`
	OIDCProviderEndpoint string                  `json:"oidc_provider_endpoint,omitempty"`
}

// FederationResult carries the issued identity provider name, which equals
// the tenant subdomain and is recorded on the tenant as idp_identifier.
type FederationResult struct {
	ProviderName string `json:"provider_name"`
}
