package model

// OnboardingRequest is the input to the tenant onboarding workflow.
// The tenant UUID is allocated once per onboarding attempt and is
// immutable thereafter.
type OnboardingRequest struct {
	TenantSubDomain   string `json:"tenantSubDomain"`
	TenantName        string `json:"tenantName"`
	TenantEmailDomain string `json:"tenantEmailDomain"`
	TenantTier        string `json:"tenantTier"`
	TenantIDPType     string `json:"tenantIDPType"`
	EmailID           string `json:"emailId"`
}

// FederationRequest is the input to the tenant federation workflow.
// The tenant UUID comes from the authenticated caller context, never
// from the request body.
type FederationRequest struct {
	TenantIDPType string         `json:"tenantIDPType"`
	CognitoConfig *CognitoConfig `json:"cognitoConfig,omitempty"`
	LDAPConfig    *LDAPConfig    `json:"ldapConfig,omitempty"`
	VPCConfig     *VPCConfig     `json:"vpcConfig,omitempty"`

	// ProviderTable and LogLevel are forwarded to the build pipeline when a
	// dedicated OIDC backing stack is provisioned.
	ProviderTable string `json:"dynamodbTableName,omitempty"`
	LogLevel      string `json:"logLevel,omitempty"`
}

// CertificateValidationState is the shared two-state shape both certificate
// polling steps branch on. Derived on every poll, never persisted.
type CertificateValidationState struct {
	ContinueWait bool `json:"continuewait"`
}
