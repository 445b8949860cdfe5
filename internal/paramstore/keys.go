package paramstore

// Global parameters published by the base identity stack.
const (
	KeyOIDCProviderEndpoint   = "oidcProviderEndPoint"
	KeyUserPoolID             = "cognitoUserPoolId"
	KeyUserPoolRegion         = "cognitoUserPoolRegion"
	KeyUserPoolDomainPrefix   = "cognitoUserPoolDomainPrefix"
	KeyClientEndpoint         = "oidcClientEndPoint"
	KeyClientRestAPIID        = "oidcClientRestApiId"
	KeyClientCallbackEndpoint = "oidcClientCallBackEndPoint"
	KeyHostedZoneID           = "hostedzoneid"
)

// Per-tenant parameters, scoped by subdomain.
const (
	KeyTenantUUID            = "tenantUuid"
	KeyTenantEmailDomain     = "tenantEmailDomain"
	KeyFederationAppClientID = "federationCognitoUserPoolAppClientId"
	KeyProviderAppClientUUID = "tenantOidcProviderAppClientUuid"
)

// Per-pipeline-execution parameters, scoped by the pipeline execution id.
// The execution id is the only correlation handle the pipeline's build
// steps have at runtime, so everything a build needs is keyed by it.
const (
	KeyCallbackToken  = "token"
	KeyExecTenantUUID = "tenantuuid"
	KeyProviderTable  = "dynamodbtablename"
	KeyLogLevel       = "loglevel"
	KeySubnet1        = "subnet1"
	KeySubnet2        = "subnet2"
	KeySecurityGroup1 = "securityGroup1"
	KeySecurityGroup2 = "securityGroup2"
	KeyVPCID          = "vpcid"
)
