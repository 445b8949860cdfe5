package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	cognitotypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"go.temporal.io/sdk/temporal"

	"github.com/edvin/identity/internal/jwks"
	"github.com/edvin/identity/internal/model"
	"github.com/edvin/identity/internal/paramstore"
	"github.com/edvin/identity/internal/platform"
	"github.com/edvin/identity/internal/registry"
	"github.com/edvin/identity/internal/secrets"
)

const passwordLength = 86

// Federation contains the federation configuration activity.
type Federation struct {
	params   *paramstore.Store
	secrets  *secrets.Store
	registry *registry.Store
	cognito  CognitoClient
}

// NewFederation creates the federation activity struct.
func NewFederation(params *paramstore.Store, sec *secrets.Store, reg *registry.Store, cognito CognitoClient) *Federation {
	return &Federation{params: params, secrets: sec, registry: reg, cognito: cognito}
}

// AddFederationConfig links a tenant's identity source into the shared
// federation pool: it creates the cookie and JWKS signing secrets, writes
// the tenant and app-client records to the provider table, creates the
// external identity provider, and adds it to the tenant's app client.
// A tenant whose cookie and JWKS secrets both already exist is rejected
// as already bootstrapped.
func (a *Federation) AddFederationConfig(ctx context.Context, params FederationParams) (FederationResult, error) {
	idpType := strings.ToUpper(params.Request.TenantIDPType)
	if idpType != model.IDPTypeCognito && idpType != model.IDPTypeLDAP {
		return FederationResult{}, temporal.NewNonRetryableApplicationError(
			"tenantIDPType is mandatory and has to be either LDAP or COGNITO", "VALIDATION_ERROR", nil)
	}

	tenant, err := a.registry.GetTenant(ctx, params.TenantUUID)
	if err != nil {
		return FederationResult{}, err
	}
	subdomain := tenant.Subdomain

	if err := a.rejectIfBootstrapped(ctx, subdomain); err != nil {
		return FederationResult{}, err
	}

	endpoint, err := a.resolveProviderEndpoint(ctx, params)
	if err != nil {
		return FederationResult{}, err
	}

	env, err := a.loadBaseParams(ctx)
	if err != nil {
		return FederationResult{}, err
	}

	if err := a.createCookieSecret(ctx, subdomain); err != nil {
		return FederationResult{}, err
	}
	if err := a.createJWKSSecret(ctx, subdomain); err != nil {
		return FederationResult{}, err
	}

	if err := a.putTenantSettings(ctx, subdomain, params, endpoint); err != nil {
		return FederationResult{}, err
	}

	if err := a.registry.SetIDPIdentifier(ctx, params.TenantUUID, subdomain); err != nil {
		return FederationResult{}, err
	}

	clientSecret, err := a.secrets.RandomPassword(ctx, passwordLength)
	if err != nil {
		return FederationResult{}, err
	}
	appClientUUID, err := a.putAppClient(ctx, subdomain, params.TenantUUID, clientSecret, env)
	if err != nil {
		return FederationResult{}, err
	}

	if err := a.createIdentityProvider(ctx, subdomain, appClientUUID, clientSecret, endpoint, env); err != nil {
		return FederationResult{}, err
	}

	if err := a.addSupportedProvider(ctx, subdomain, env); err != nil {
		return FederationResult{}, err
	}

	return FederationResult{ProviderName: subdomain}, nil
}

// rejectIfBootstrapped enforces the only idempotency guard federation has:
// when both signing secrets already exist the tenant was federated before.
func (a *Federation) rejectIfBootstrapped(ctx context.Context, subdomain string) error {
	cookieExists, err := a.secrets.Exists(ctx, a.secrets.TenantKey(subdomain, secrets.NameCookieKeys))
	if err != nil {
		return err
	}
	jwksExists, err := a.secrets.Exists(ctx, a.secrets.TenantKey(subdomain, secrets.NameJWKS))
	if err != nil {
		return err
	}
	if cookieExists && jwksExists {
		return temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("tenant %s already bootstrapped", subdomain), "CONFLICT_ERROR", nil)
	}
	return nil
}

// resolveProviderEndpoint returns the live backing provider endpoint: the
// one the bridge resolved, or the shared deployment's for non-VPC tenants,
// or the execution-scoped one recorded by a dedicated pipeline run.
func (a *Federation) resolveProviderEndpoint(ctx context.Context, params FederationParams) (string, error) {
	if params.OIDCProviderEndpoint != "" {
		return params.OIDCProviderEndpoint, nil
	}
	key := a.params.GlobalKey(paramstore.KeyOIDCProviderEndpoint)
	if params.Request.VPCConfig != nil {
		key = a.params.ScopedKey(params.PipelineExecutionID, paramstore.KeyOIDCProviderEndpoint)
	}
	endpoint, err := a.params.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("resolve provider endpoint: %w", err)
	}
	return endpoint, nil
}

type baseParams struct {
	userPoolID       string
	userPoolRegion   string
	poolDomainPrefix string
}

func (a *Federation) loadBaseParams(ctx context.Context) (baseParams, error) {
	values, err := a.params.GetMany(ctx,
		a.params.GlobalKey(paramstore.KeyUserPoolID),
		a.params.GlobalKey(paramstore.KeyUserPoolRegion),
		a.params.GlobalKey(paramstore.KeyUserPoolDomainPrefix),
	)
	if err != nil {
		return baseParams{}, err
	}
	env := baseParams{
		userPoolID:       values.Value(paramstore.KeyUserPoolID),
		userPoolRegion:   values.Value(paramstore.KeyUserPoolRegion),
		poolDomainPrefix: values.Value(paramstore.KeyUserPoolDomainPrefix),
	}
	if env.userPoolID == "" {
		return baseParams{}, fmt.Errorf("shared user pool id parameter missing")
	}
	return env, nil
}

func (a *Federation) createCookieSecret(ctx context.Context, subdomain string) error {
	key1, err := a.secrets.RandomPassword(ctx, passwordLength)
	if err != nil {
		return err
	}
	key2, err := a.secrets.RandomPassword(ctx, passwordLength)
	if err != nil {
		return err
	}
	keys, err := json.Marshal([]string{key1, key2})
	if err != nil {
		return fmt.Errorf("marshal cookie keys: %w", err)
	}
	return a.secrets.Create(ctx, a.secrets.TenantKey(subdomain, secrets.NameCookieKeys),
		fmt.Sprintf("Cookie keys for %s", subdomain), string(keys))
}

func (a *Federation) createJWKSSecret(ctx context.Context, subdomain string) error {
	keySet, err := jwks.GenerateJSON()
	if err != nil {
		return err
	}
	return a.secrets.Create(ctx, a.secrets.TenantKey(subdomain, secrets.NameJWKS),
		fmt.Sprintf("JWKS for %s", subdomain), keySet)
}

// putTenantSettings writes the tenant's record in the provider table.
// LDAP federation stores the directory coordinates verbatim and the bind
// password as a separate secret, never inline.
func (a *Federation) putTenantSettings(ctx context.Context, subdomain string, params FederationParams, endpoint string) error {
	values, err := a.params.GetMany(ctx,
		a.params.ScopedKey(subdomain, paramstore.KeyTenantUUID),
		a.params.ScopedKey(subdomain, paramstore.KeyTenantEmailDomain),
	)
	if err != nil {
		return err
	}
	emailDomain := values.Value(paramstore.KeyTenantEmailDomain)

	settings := &model.TenantSettings{
		ID:          "tenant:" + params.TenantUUID,
		TenantID:    params.TenantUUID,
		AuthType:    params.Request.TenantIDPType,
		Domain:      emailDomain,
		EmailDomain: emailDomain,
		Issuer:      endpoint,
		Config: model.OIDCConfig{
			JWKSRef: a.secrets.TenantKey(subdomain, secrets.NameJWKS),
			Cookies: model.CookieKeys{
				KeysRef: a.secrets.TenantKey(subdomain, secrets.NameCookieKeys),
			},
		},
	}

	switch strings.ToUpper(params.Request.TenantIDPType) {
	case model.IDPTypeCognito:
		if params.Request.CognitoConfig == nil {
			return temporal.NewNonRetryableApplicationError("cognitoConfig is mandatory for COGNITO federation", "VALIDATION_ERROR", nil)
		}
		settings.ClientID = params.Request.CognitoConfig.UserPoolClientID
		settings.UserPoolID = params.Request.CognitoConfig.UserPoolID
		settings.UserPoolRegion = params.Request.CognitoConfig.UserPoolRegion
	case model.IDPTypeLDAP:
		if params.Request.LDAPConfig == nil {
			return temporal.NewNonRetryableApplicationError("ldapConfig is mandatory for LDAP federation", "VALIDATION_ERROR", nil)
		}
		passwordRef := a.secrets.TenantKey(subdomain, secrets.NameLDAPPassword)
		if err := a.secrets.Create(ctx, passwordRef,
			fmt.Sprintf("LDAP bind password for %s", subdomain), params.Request.LDAPConfig.LDAPUserPassword); err != nil {
			return err
		}
		settings.LDAPSuffix = params.Request.LDAPConfig.LDAPSuffix
		settings.LDAPURL = params.Request.LDAPConfig.LDAPURL
		settings.LDAPUser = params.Request.LDAPConfig.LDAPUser
		settings.LDAPPasswordRef = passwordRef
		settings.VPC = params.Request.VPCConfig
	}

	return a.registry.PutTenantSettings(ctx, settings)
}

// putAppClient stores the app-client secret, records the client uuid in
// the parameter store, and writes the app-client record consumed by the
// backing provider.
func (a *Federation) putAppClient(ctx context.Context, subdomain, tenantUUID, clientSecret string, env baseParams) (string, error) {
	appClientUUID := platform.NewID()

	if err := a.secrets.Create(ctx, a.secrets.TenantKey(subdomain, secrets.NameAppClientSecret),
		fmt.Sprintf("App client secret for %s", subdomain), clientSecret); err != nil {
		return "", err
	}

	if err := a.params.Put(ctx, a.params.ScopedKey(subdomain, paramstore.KeyProviderAppClientUUID), appClientUUID,
		fmt.Sprintf("%s provider app client uuid", subdomain)); err != nil {
		return "", err
	}

	client := &model.AppClient{
		ID:           "client:" + appClientUUID,
		ClientID:     appClientUUID,
		ClientSecret: clientSecret,
		ClientURI:    fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", env.userPoolRegion, env.userPoolID),
		RedirectURIs: []string{
			fmt.Sprintf("https://%s.auth.%s.amazoncognito.com/oauth2/idpresponse", env.poolDomainPrefix, env.userPoolRegion),
		},
		TenantID: tenantUUID,
	}
	if err := a.registry.PutAppClient(ctx, client); err != nil {
		return "", err
	}
	return appClientUUID, nil
}

// createIdentityProvider links the tenant's backing provider into the
// shared pool as an external OIDC identity provider named after the
// subdomain, with the standard claim mapping.
func (a *Federation) createIdentityProvider(ctx context.Context, subdomain, appClientUUID, clientSecret, endpoint string, env baseParams) error {
	issuer := endpoint + appClientUUID
	_, err := a.cognito.CreateIdentityProvider(ctx, &cognitoidentityprovider.CreateIdentityProviderInput{
		ProviderName: aws.String(subdomain),
		ProviderType: cognitotypes.IdentityProviderTypeTypeOidc,
		UserPoolId:   aws.String(env.userPoolID),
		ProviderDetails: map[string]string{
			"client_id":                 appClientUUID,
			"client_secret":             clientSecret,
			"attributes_request_method": "GET",
			"oidc_issuer":               issuer,
			"authorize_url":             issuer + "/auth",
			"token_url":                 issuer + "/token",
			"attributes_url":            issuer + "/me",
			"jwks_uri":                  issuer + "/jwks",
			"authorize_scopes":          "openid profile email tenant",
		},
		AttributeMapping: map[string]string{
			"username":        "sub",
			"email":           "email",
			"email_verified":  "email_verified",
			"custom:tenantid": "tenantid",
		},
		IdpIdentifiers: []string{subdomain},
	})
	if err != nil {
		return fmt.Errorf("create identity provider %s: %w", subdomain, err)
	}
	return nil
}

// addSupportedProvider appends the new identity provider to the tenant's
// federation app client.
func (a *Federation) addSupportedProvider(ctx context.Context, subdomain string, env baseParams) error {
	clientID, err := a.params.Get(ctx, a.params.ScopedKey(subdomain, paramstore.KeyFederationAppClientID))
	if err != nil {
		return fmt.Errorf("resolve federation app client id: %w", err)
	}

	described, err := a.cognito.DescribeUserPoolClient(ctx, &cognitoidentityprovider.DescribeUserPoolClientInput{
		ClientId:   aws.String(clientID),
		UserPoolId: aws.String(env.userPoolID),
	})
	if err != nil {
		return fmt.Errorf("describe app client %s: %w", clientID, err)
	}
	client := described.UserPoolClient

	_, err = a.cognito.UpdateUserPoolClient(ctx, &cognitoidentityprovider.UpdateUserPoolClientInput{
		ClientId:                        client.ClientId,
		UserPoolId:                      client.UserPoolId,
		ClientName:                      client.ClientName,
		AccessTokenValidity:             client.AccessTokenValidity,
		IdTokenValidity:                 client.IdTokenValidity,
		RefreshTokenValidity:            client.RefreshTokenValidity,
		TokenValidityUnits:              client.TokenValidityUnits,
		AllowedOAuthFlows:               client.AllowedOAuthFlows,
		AllowedOAuthFlowsUserPoolClient: aws.ToBool(client.AllowedOAuthFlowsUserPoolClient),
		AllowedOAuthScopes:              client.AllowedOAuthScopes,
		CallbackURLs:                    client.CallbackURLs,
		ExplicitAuthFlows:               client.ExplicitAuthFlows,
		PreventUserExistenceErrors:      client.PreventUserExistenceErrors,
		SupportedIdentityProviders:      append(client.SupportedIdentityProviders, subdomain),
	})
	if err != nil {
		return fmt.Errorf("update app client %s: %w", clientID, err)
	}
	return nil
}
