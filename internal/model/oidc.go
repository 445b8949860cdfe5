package model

// TenantSettings is the per-tenant record in the OIDC provider config table.
// Secret material is never stored inline; the record carries secret and
// parameter references resolved by the provider at runtime.
type TenantSettings struct {
	ID          string     `json:"id" dynamodbav:"id"` // "tenant:<uuid>"
	TenantID    string     `json:"tenant_id" dynamodbav:"tenant_id"`
	AuthType    string     `json:"authtype" dynamodbav:"authtype"`
	Domain      string     `json:"domain" dynamodbav:"domain"`
	EmailDomain string     `json:"tenantEmailDomain" dynamodbav:"tenantEmailDomain"`
	Issuer      string     `json:"issuer" dynamodbav:"issuer"`
	Config      OIDCConfig `json:"configuration" dynamodbav:"configuration"`

	// Cognito federation stores the pool linkage directly.
	ClientID       string `json:"clientId,omitempty" dynamodbav:"clientId,omitempty"`
	UserPoolID     string `json:"userPoolId,omitempty" dynamodbav:"userPoolId,omitempty"`
	UserPoolRegion string `json:"userPoolRegion,omitempty" dynamodbav:"userPoolRegion,omitempty"`

	// LDAP federation stores the directory coordinates verbatim and a
	// reference to the separately stored bind password.
	LDAPSuffix      string     `json:"ldapsuffix,omitempty" dynamodbav:"ldapsuffix,omitempty"`
	LDAPURL         string     `json:"ldapurl,omitempty" dynamodbav:"ldapurl,omitempty"`
	LDAPUser        string     `json:"ldapuser,omitempty" dynamodbav:"ldapuser,omitempty"`
	LDAPPasswordRef string     `json:"ldapuserpassword,omitempty" dynamodbav:"ldapuserpassword,omitempty"`
	VPC             *VPCConfig `json:"vpcConfig,omitempty" dynamodbav:"vpcConfig,omitempty"`
}

// OIDCConfig carries references to the tenant's signing and cookie secrets.
type OIDCConfig struct {
	JWKSRef string     `json:"jwks" dynamodbav:"jwks"`
	Cookies CookieKeys `json:"cookies" dynamodbav:"cookies"`
}

type CookieKeys struct {
	KeysRef string `json:"keys" dynamodbav:"keys"`
}

// AppClient is the tenant's app-client record in the OIDC provider config
// table, consumed by the shared pool's external identity provider link.
type AppClient struct {
	ID           string   `json:"id" dynamodbav:"id"` // "client:<uuid>"
	ClientID     string   `json:"client_id" dynamodbav:"client_id"`
	ClientSecret string   `json:"client_secret" dynamodbav:"client_secret"`
	ClientURI    string   `json:"client_uri" dynamodbav:"client_uri"`
	RedirectURIs []string `json:"redirect_uris" dynamodbav:"redirect_uris"`
	TenantID     string   `json:"tenant_id" dynamodbav:"tenant_id"`
}
