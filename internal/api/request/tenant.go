package request

import "github.com/edvin/identity/internal/model"

// OnboardTenant is the body of PUT /onboard. Field-level validation here
// catches malformed input before a workflow ever starts; the first
// workflow step re-checks the business rules.
type OnboardTenant struct {
	TenantName        string `json:"tenantName" validate:"required"`
	TenantSubDomain   string `json:"tenantSubDomain" validate:"required,subdomain"`
	TenantEmailDomain string `json:"tenantEmailDomain" validate:"required,fqdn"`
	TenantTier        string `json:"tenantTier"`
	TenantIDPType     string `json:"tenantIDPType"`
	EmailID           string `json:"emailId" validate:"required,email"`
}

func (r OnboardTenant) Model() model.OnboardingRequest {
	return model.OnboardingRequest{
		TenantName:        r.TenantName,
		TenantSubDomain:   r.TenantSubDomain,
		TenantEmailDomain: r.TenantEmailDomain,
		TenantTier:        r.TenantTier,
		TenantIDPType:     r.TenantIDPType,
		EmailID:           r.EmailID,
	}
}

// FederateTenant is the body of PUT /federation. The tenant uuid is NOT
// part of the body; it comes from the authenticated caller's token.
type FederateTenant struct {
	TenantIDPType string               `json:"tenantIDPType" validate:"required"`
	CognitoConfig *model.CognitoConfig `json:"cognitoConfig,omitempty"`
	LDAPConfig    *model.LDAPConfig    `json:"ldapConfig,omitempty"`
	VPCConfig     *model.VPCConfig     `json:"vpcConfig,omitempty"`
}

func (r FederateTenant) Model() model.FederationRequest {
	return model.FederationRequest{
		TenantIDPType: r.TenantIDPType,
		CognitoConfig: r.CognitoConfig,
		LDAPConfig:    r.LDAPConfig,
		VPCConfig:     r.VPCConfig,
	}
}
