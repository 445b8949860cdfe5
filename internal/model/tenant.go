package model

// IDP types accepted for tenant federation.
const (
	IDPTypeCognito = "COGNITO"
	IDPTypeLDAP    = "LDAP"
)

// Tenant is the registry record for an onboarded tenant. The record is
// created by the onboarding CONFIG step and enriched by federation; it is
// never deleted (offboarding is a manual operation).
type Tenant struct {
	ID            string        `json:"id" dynamodbav:"id"`
	Subdomain     string        `json:"subdomain" dynamodbav:"subdomain"`
	Name          string        `json:"name" dynamodbav:"name"`
	EmailDomain   string        `json:"emaildomain" dynamodbav:"emaildomain"`
	Tier          string        `json:"tier" dynamodbav:"tier"`
	OnboardedDate string        `json:"onboarded_date" dynamodbav:"onboarded_date"`
	Cognito       CognitoLinkage `json:"cognito" dynamodbav:"cognito"`
}

// CognitoLinkage describes how a tenant is wired into the shared
// federation user pool.
type CognitoLinkage struct {
	UserPoolID      string `json:"userpoolid" dynamodbav:"userpoolid"`
	UserPoolRegion  string `json:"userpoolregion" dynamodbav:"userpoolregion"`
	AuthEndpoint    string `json:"auth_endpoint" dynamodbav:"auth_endpoint"`
	ClientID        string `json:"clientid" dynamodbav:"clientid"`
	ClientSecretRef string `json:"clientsecretarn" dynamodbav:"clientsecretarn"`
	// IDPIdentifier is "COGNITO" until federation links a tenant-specific
	// identity provider, after which it equals the provider name (the
	// tenant subdomain). Once set by federation it is never downgraded.
	IDPIdentifier string `json:"idp_identifier" dynamodbav:"idp_identifier"`
}

// VPCConfig pins a tenant's OIDC backing stack into a specific VPC.
// Exactly two subnets and two security groups are required.
type VPCConfig struct {
	VPCID            string   `json:"vpcId" dynamodbav:"vpcId"`
	SubnetIDs        []string `json:"subnetIds" dynamodbav:"subnetIds"`
	SecurityGroupIDs []string `json:"securityGroupIds" dynamodbav:"securityGroupIds"`
}

// CognitoConfig points federation at a dedicated per-tenant user pool.
type CognitoConfig struct {
	UserPoolID       string `json:"userPoolId"`
	UserPoolClientID string `json:"userPoolClientId"`
	UserPoolRegion   string `json:"userPoolRegion"`
}

// LDAPConfig points federation at a tenant-operated directory. The bind
// password is stored as a secret; the record carries only its reference.
type LDAPConfig struct {
	LDAPSuffix       string `json:"ldapSuffix"`
	LDAPURL          string `json:"ldapUrl"`
	LDAPUser         string `json:"ldapUser"`
	LDAPUserPassword string `json:"ldapUserPassword,omitempty"`
}
