package activity

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/identity/internal/model"
	"github.com/edvin/identity/internal/paramstore"
	"github.com/edvin/identity/internal/registry"
	"github.com/edvin/identity/internal/secrets"
)

type federationFixture struct {
	activities *Federation
	ssm        *fakeSSM
	sm         *fakeSecrets
	ddb        *fakeDynamo
	cognito    *fakeCognito
	registry   *registry.Store
}

func newFederationFixture(t *testing.T) *federationFixture {
	t.Helper()
	f := &federationFixture{
		ssm:     newFakeSSM(),
		sm:      newFakeSecrets(),
		ddb:     newFakeDynamo(),
		cognito: &fakeCognito{},
	}
	f.registry = registry.New(f.ddb, "tenants", "oidc-provider")
	f.activities = NewFederation(
		paramstore.New(f.ssm, "/hybridsaas"),
		secrets.New(f.sm, "/hybridsaas"),
		f.registry,
		f.cognito,
	)

	// Base platform plus an onboarded tenant, the usual starting state.
	f.ssm.params["/hybridsaas/oidcProviderEndPoint"] = "https://oidc.internal.example.com/"
	f.ssm.params["/hybridsaas/cognitoUserPoolId"] = "pool-shared"
	f.ssm.params["/hybridsaas/cognitoUserPoolRegion"] = "eu-west-1"
	f.ssm.params["/hybridsaas/cognitoUserPoolDomainPrefix"] = "hybridsaas"
	f.ssm.params["/hybridsaas/acme/tenantUuid"] = "uuid-1"
	f.ssm.params["/hybridsaas/acme/tenantEmailDomain"] = "example.com"
	f.ssm.params["/hybridsaas/acme/federationCognitoUserPoolAppClientId"] = "client-fed"
	require.NoError(t, f.registry.PutTenant(context.Background(), &model.Tenant{
		ID:        "uuid-1",
		Subdomain: "acme",
		Cognito:   model.CognitoLinkage{IDPIdentifier: model.IDPTypeCognito},
	}))
	return f
}

func cognitoFederationParams() FederationParams {
	return FederationParams{
		TenantUUID: "uuid-1",
		Request: model.FederationRequest{
			TenantIDPType: model.IDPTypeCognito,
			CognitoConfig: &model.CognitoConfig{
				UserPoolID:       "pool-acme",
				UserPoolClientID: "client-acme",
				UserPoolRegion:   "eu-west-1",
			},
		},
	}
}

func TestAddFederationConfig_InvalidIDPTypeRejected(t *testing.T) {
	f := newFederationFixture(t)

	_, err := f.activities.AddFederationConfig(context.Background(), FederationParams{
		TenantUUID: "uuid-1",
		Request:    model.FederationRequest{TenantIDPType: "SAML"},
	})
	require.Error(t, err)
	assert.Empty(t, f.sm.secrets)
	assert.Empty(t, f.cognito.identityProviders)
}

func TestAddFederationConfig_CognitoHappyPath(t *testing.T) {
	f := newFederationFixture(t)
	ctx := context.Background()

	result, err := f.activities.AddFederationConfig(ctx, cognitoFederationParams())
	require.NoError(t, err)
	assert.Equal(t, "acme", result.ProviderName)

	// Cookie keys: two generated passwords stored as a JSON pair.
	var cookieKeys []string
	require.NoError(t, json.Unmarshal([]byte(f.sm.secrets["/hybridsaas/acme/cookie-secrets"]), &cookieKeys))
	assert.Len(t, cookieKeys, 2)

	// JWKS with private material.
	var keySet struct {
		Keys []map[string]any `json:"keys"`
	}
	require.NoError(t, json.Unmarshal([]byte(f.sm.secrets["/hybridsaas/acme/jwks"]), &keySet))
	assert.Len(t, keySet.Keys, 4)

	// Provider table tenant record.
	item, ok := f.ddb.tables["oidc-provider"]["tenant:uuid-1"]
	require.True(t, ok, "tenant settings record missing")
	var settings model.TenantSettings
	require.NoError(t, attributevalue.UnmarshalMap(item, &settings))
	assert.Equal(t, model.IDPTypeCognito, settings.AuthType)
	assert.Equal(t, "example.com", settings.Domain)
	assert.Equal(t, "https://oidc.internal.example.com/", settings.Issuer)
	assert.Equal(t, "/hybridsaas/acme/jwks", settings.Config.JWKSRef)
	assert.Equal(t, "/hybridsaas/acme/cookie-secrets", settings.Config.Cookies.KeysRef)
	assert.Equal(t, "pool-acme", settings.UserPoolID)

	// App client uuid recorded and its record written under client:<uuid>.
	appClientUUID := f.ssm.params["/hybridsaas/acme/tenantOidcProviderAppClientUuid"]
	require.NotEmpty(t, appClientUUID)
	_, ok = f.ddb.tables["oidc-provider"]["client:"+appClientUUID]
	assert.True(t, ok, "app client record missing")
	assert.NotEmpty(t, f.sm.secrets["/hybridsaas/acme/oidcappclientsecret"])

	// Identity provider named after the subdomain, standard claim mapping.
	require.Len(t, f.cognito.identityProviders, 1)
	idp := f.cognito.identityProviders[0]
	assert.Equal(t, "acme", aws.ToString(idp.ProviderName))
	assert.Equal(t, "pool-shared", aws.ToString(idp.UserPoolId))
	assert.Equal(t, "sub", idp.AttributeMapping["username"])
	assert.Equal(t, "email", idp.AttributeMapping["email"])
	assert.Equal(t, "email_verified", idp.AttributeMapping["email_verified"])
	assert.Equal(t, "tenantid", idp.AttributeMapping["custom:tenantid"])
	issuer := "https://oidc.internal.example.com/" + appClientUUID
	assert.Equal(t, issuer, idp.ProviderDetails["oidc_issuer"])
	assert.Equal(t, issuer+"/jwks", idp.ProviderDetails["jwks_uri"])

	// App client now supports the new provider.
	require.Len(t, f.cognito.updatedClients, 1)
	assert.Contains(t, f.cognito.updatedClients[0].SupportedIdentityProviders, "acme")

	// idp_identifier equals the issued provider name.
	tenant, err := f.registry.GetTenant(ctx, "uuid-1")
	require.NoError(t, err)
	assert.Equal(t, "acme", tenant.Cognito.IDPIdentifier)
}

func TestAddFederationConfig_LDAPStoresPasswordAsSecretReference(t *testing.T) {
	f := newFederationFixture(t)

	_, err := f.activities.AddFederationConfig(context.Background(), FederationParams{
		TenantUUID: "uuid-1",
		Request: model.FederationRequest{
			TenantIDPType: model.IDPTypeLDAP,
			LDAPConfig: &model.LDAPConfig{
				LDAPSuffix:       "dc=acme,dc=com",
				LDAPURL:          "ldaps://ldap.acme.com",
				LDAPUser:         "cn=svc,dc=acme,dc=com",
				LDAPUserPassword: "hunter2",
			},
			VPCConfig: &model.VPCConfig{
				VPCID:            "vpc-1",
				SubnetIDs:        []string{"subnet-1", "subnet-2"},
				SecurityGroupIDs: []string{"sg-1", "sg-2"},
			},
		},
		OIDCProviderEndpoint: "https://oidc.vpc.example.com/",
	})
	require.NoError(t, err)

	assert.Equal(t, "hunter2", f.sm.secrets["/hybridsaas/acme/ldapuserpassword"])

	item := f.ddb.tables["oidc-provider"]["tenant:uuid-1"]
	require.NotNil(t, item)
	var settings model.TenantSettings
	require.NoError(t, attributevalue.UnmarshalMap(item, &settings))
	// The settings carry a reference to the password secret, not the value.
	assert.Equal(t, "/hybridsaas/acme/ldapuserpassword", settings.LDAPPasswordRef)
	assert.Equal(t, "ldaps://ldap.acme.com", settings.LDAPURL)
	assert.Equal(t, "dc=acme,dc=com", settings.LDAPSuffix)
	require.NotNil(t, settings.VPC)
	assert.Equal(t, "vpc-1", settings.VPC.VPCID)
}

func TestAddFederationConfig_SecondAttemptConflicts(t *testing.T) {
	f := newFederationFixture(t)
	ctx := context.Background()

	_, err := f.activities.AddFederationConfig(ctx, cognitoFederationParams())
	require.NoError(t, err)

	_, err = f.activities.AddFederationConfig(ctx, cognitoFederationParams())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already bootstrapped")

	// No second identity provider or app client update happened.
	assert.Len(t, f.cognito.identityProviders, 1)
	assert.Len(t, f.cognito.updatedClients, 1)
}

func TestAddFederationConfig_SingleSurvivingSecretDoesNotTripGuard(t *testing.T) {
	f := newFederationFixture(t)
	// Leftover from a previous partial failure: only the cookie secret.
	f.sm.secrets["/hybridsaas/acme/cookie-secrets"] = `["a","b"]`

	_, err := f.activities.AddFederationConfig(context.Background(), cognitoFederationParams())
	// The guard does not trip, but recreating the surviving secret fails.
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "already bootstrapped")
}
