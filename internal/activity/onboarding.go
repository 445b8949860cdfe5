package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	acmtypes "github.com/aws/aws-sdk-go-v2/service/acm/types"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigateway/types"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	cognitotypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	r53types "github.com/aws/aws-sdk-go-v2/service/route53/types"
	"go.temporal.io/sdk/temporal"

	"github.com/edvin/identity/internal/model"
	"github.com/edvin/identity/internal/paramstore"
	"github.com/edvin/identity/internal/platform"
	"github.com/edvin/identity/internal/registry"
	"github.com/edvin/identity/internal/secrets"
)

const recordTTL = 300

// Onboarding contains the tenant onboarding step activities.
type Onboarding struct {
	params   *paramstore.Store
	secrets  *secrets.Store
	registry *registry.Store
	cognito  CognitoClient
	acm      ACMClient
	dns      Route53Client
	gateway  APIGatewayClient

	region        string
	providerTable string
	logLevel      string
	apiStage      string
}

// NewOnboarding creates the onboarding activity struct.
func NewOnboarding(params *paramstore.Store, sec *secrets.Store, reg *registry.Store,
	cognito CognitoClient, acmClient ACMClient, dns Route53Client, gateway APIGatewayClient,
	region, providerTable, logLevel, apiStage string) *Onboarding {
	return &Onboarding{
		params:        params,
		secrets:       sec,
		registry:      reg,
		cognito:       cognito,
		acm:           acmClient,
		dns:           dns,
		gateway:       gateway,
		region:        region,
		providerTable: providerTable,
		logLevel:      logLevel,
		apiStage:      apiStage,
	}
}

// CreateTenantConfig validates the onboarding request, resolves the base
// platform environment, creates the tenant's shared-pool app client and
// admin user, and persists the tenant record. The request is rejected
// before any external mutation when mandatory fields are missing or the
// subdomain is already taken.
func (a *Onboarding) CreateTenantConfig(ctx context.Context, params ConfigParams) (ConfigResult, error) {
	req := params.Request
	if req.TenantName == "" || req.TenantSubDomain == "" {
		return ConfigResult{}, temporal.NewNonRetryableApplicationError(
			"tenantName and tenantSubDomain are mandatory", "VALIDATION_ERROR", nil)
	}

	if _, err := a.registry.GetTenantBySubdomain(ctx, req.TenantSubDomain); err == nil {
		return ConfigResult{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("subdomain %s is already onboarded", req.TenantSubDomain), "CONFLICT_ERROR", nil)
	} else if !errors.Is(err, registry.ErrTenantNotFound) {
		return ConfigResult{}, err
	}

	env, err := a.loadEnvironment(ctx)
	if err != nil {
		return ConfigResult{}, err
	}

	scope := req.TenantSubDomain
	if err := a.params.Put(ctx, a.params.ScopedKey(scope, paramstore.KeyTenantUUID), params.TenantUUID,
		fmt.Sprintf("%s tenant uuid", scope)); err != nil {
		return ConfigResult{}, err
	}
	if err := a.params.Put(ctx, a.params.ScopedKey(scope, paramstore.KeyTenantEmailDomain), req.TenantEmailDomain,
		fmt.Sprintf("%s email domain", scope)); err != nil {
		return ConfigResult{}, err
	}

	client, err := a.createFederationAppClient(ctx, env, req)
	if err != nil {
		return ConfigResult{}, err
	}
	clientID := aws.ToString(client.ClientId)

	if err := a.params.Put(ctx, a.params.ScopedKey(scope, paramstore.KeyFederationAppClientID), clientID,
		fmt.Sprintf("%s federation app client id", scope)); err != nil {
		return ConfigResult{}, err
	}

	secretName := a.secrets.TenantKey(scope, secrets.NameFederationClientSecret)
	if err := a.secrets.Create(ctx, secretName,
		fmt.Sprintf("App client secret for %s", scope), aws.ToString(client.ClientSecret)); err != nil {
		return ConfigResult{}, err
	}

	if err := a.createAdminUser(ctx, env.UserPoolID, req.EmailID, params.TenantUUID); err != nil {
		return ConfigResult{}, err
	}

	tenant := &model.Tenant{
		ID:            params.TenantUUID,
		Subdomain:     scope,
		Name:          req.TenantName,
		EmailDomain:   req.TenantEmailDomain,
		Tier:          req.TenantTier,
		OnboardedDate: time.Now().UTC().Format("2006-01-02:15:04:05"),
		Cognito: model.CognitoLinkage{
			UserPoolID:      env.UserPoolID,
			UserPoolRegion:  env.UserPoolRegion,
			AuthEndpoint:    fmt.Sprintf("https://%s.auth.%s.amazoncognito.com/oauth2/authorize", env.UserPoolDomainPrefix, env.UserPoolRegion),
			ClientID:        clientID,
			ClientSecretRef: secretName,
			IDPIdentifier:   model.IDPTypeCognito,
		},
	}
	if err := a.registry.PutTenant(ctx, tenant); err != nil {
		return ConfigResult{}, err
	}

	return ConfigResult{Env: env, AppClientID: clientID}, nil
}

// CreateTenantAuth provisions the tenant's dedicated internal user pool
// and client. Its output is the input of the federation sub-workflow.
func (a *Onboarding) CreateTenantAuth(ctx context.Context, params AuthParams) (AuthResult, error) {
	pool, err := a.cognito.CreateUserPool(ctx, &cognitoidentityprovider.CreateUserPoolInput{
		PoolName: aws.String(params.TenantSubDomain),
	})
	if err != nil {
		return AuthResult{}, fmt.Errorf("create tenant user pool: %w", err)
	}
	poolID := aws.ToString(pool.UserPool.Id)

	client, err := a.cognito.CreateUserPoolClient(ctx, &cognitoidentityprovider.CreateUserPoolClientInput{
		ClientName: aws.String(params.TenantSubDomain),
		UserPoolId: aws.String(poolID),
		ExplicitAuthFlows: []cognitotypes.ExplicitAuthFlowsType{
			cognitotypes.ExplicitAuthFlowsTypeAllowAdminUserPasswordAuth,
			cognitotypes.ExplicitAuthFlowsTypeAllowRefreshTokenAuth,
		},
	})
	if err != nil {
		return AuthResult{}, fmt.Errorf("create tenant user pool client: %w", err)
	}

	return AuthResult{
		Federation: model.FederationRequest{
			TenantIDPType: model.IDPTypeCognito,
			ProviderTable: a.providerTable,
			LogLevel:      a.logLevel,
			CognitoConfig: &model.CognitoConfig{
				UserPoolID:       poolID,
				UserPoolClientID: aws.ToString(client.UserPoolClient.ClientId),
				UserPoolRegion:   a.region,
			},
		},
	}, nil
}

// RequestTenantCert requests a DNS-validated certificate for the tenant's
// subdomain. The idempotency token pins retries of the same onboarding
// attempt to one certificate.
func (a *Onboarding) RequestTenantCert(ctx context.Context, params CertParams) (CertResult, error) {
	domain := params.TenantSubDomain + "." + params.TenantEmailDomain
	out, err := a.acm.RequestCertificate(ctx, &acm.RequestCertificateInput{
		DomainName:       aws.String(domain),
		IdempotencyToken: aws.String(platform.IdempotencyToken(params.TenantUUID)),
		ValidationMethod: acmtypes.ValidationMethodDns,
		Options: &acmtypes.CertificateOptions{
			CertificateTransparencyLoggingPreference: acmtypes.CertificateTransparencyLoggingPreferenceEnabled,
		},
		Tags: []acmtypes.Tag{
			{Key: aws.String("tenantId"), Value: aws.String(params.TenantUUID)},
		},
	})
	if err != nil {
		return CertResult{}, fmt.Errorf("request certificate for %s: %w", domain, err)
	}
	return CertResult{CertificateARN: aws.ToString(out.CertificateArn)}, nil
}

// CheckCertBaked polls whether the certificate's DNS validation record has
// been published by the certificate authority yet.
func (a *Onboarding) CheckCertBaked(ctx context.Context, params CertStatusParams) (model.CertificateValidationState, error) {
	cert, err := a.describeCertificate(ctx, params.CertificateARN)
	if err != nil {
		return model.CertificateValidationState{}, err
	}
	record := validationRecord(cert)
	return model.CertificateValidationState{ContinueWait: record == nil}, nil
}

// CreateCertCNAME publishes the certificate's validation record into the
// managed hosted zone. Creating the same record twice fails; the step is
// only ever reached once per workflow run.
func (a *Onboarding) CreateCertCNAME(ctx context.Context, params CNAMEParams) error {
	cert, err := a.describeCertificate(ctx, params.CertificateARN)
	if err != nil {
		return err
	}
	record := validationRecord(cert)
	if record == nil {
		return fmt.Errorf("certificate %s has no validation record yet", params.CertificateARN)
	}

	_, err = a.dns.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(params.HostedZoneID),
		ChangeBatch: &r53types.ChangeBatch{
			Changes: []r53types.Change{{
				Action: r53types.ChangeActionCreate,
				ResourceRecordSet: &r53types.ResourceRecordSet{
					Name: record.Name,
					Type: r53types.RRType(record.Type),
					TTL:  aws.Int64(recordTTL),
					ResourceRecords: []r53types.ResourceRecord{
						{Value: record.Value},
					},
				},
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("publish validation record %s: %w", aws.ToString(record.Name), err)
	}
	return nil
}

// CheckCertValid polls whether the certificate has been issued.
func (a *Onboarding) CheckCertValid(ctx context.Context, params CertStatusParams) (model.CertificateValidationState, error) {
	cert, err := a.describeCertificate(ctx, params.CertificateARN)
	if err != nil {
		return model.CertificateValidationState{}, err
	}
	return model.CertificateValidationState{ContinueWait: cert.Status != acmtypes.CertificateStatusIssued}, nil
}

// CreateTenantIngress creates the API gateway custom domain bound to the
// issued certificate, maps its base path to the client API stage, and
// publishes the alias record pointing the subdomain at the distribution.
func (a *Onboarding) CreateTenantIngress(ctx context.Context, params IngressParams) (IngressResult, error) {
	domain := params.TenantSubDomain + "." + params.TenantEmailDomain

	created, err := a.gateway.CreateDomainName(ctx, &apigateway.CreateDomainNameInput{
		DomainName:     aws.String(domain),
		CertificateArn: aws.String(params.CertificateARN),
		EndpointConfiguration: &apigwtypes.EndpointConfiguration{
			Types: []apigwtypes.EndpointType{apigwtypes.EndpointTypeEdge},
		},
		SecurityPolicy: apigwtypes.SecurityPolicyTls12,
		Tags: map[string]string{
			"tenantId": params.TenantUUID,
		},
	})
	if err != nil {
		return IngressResult{}, fmt.Errorf("create custom domain %s: %w", domain, err)
	}

	_, err = a.gateway.CreateBasePathMapping(ctx, &apigateway.CreateBasePathMappingInput{
		DomainName: aws.String(domain),
		RestApiId:  aws.String(params.Env.ClientRestAPIID),
		Stage:      aws.String(a.apiStage),
	})
	if err != nil {
		return IngressResult{}, fmt.Errorf("map base path for %s: %w", domain, err)
	}

	_, err = a.dns.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(params.Env.HostedZoneID),
		ChangeBatch: &r53types.ChangeBatch{
			Changes: []r53types.Change{{
				Action: r53types.ChangeActionCreate,
				ResourceRecordSet: &r53types.ResourceRecordSet{
					Name: aws.String(domain),
					Type: r53types.RRTypeA,
					AliasTarget: &r53types.AliasTarget{
						DNSName:              created.DistributionDomainName,
						HostedZoneId:         created.DistributionHostedZoneId,
						EvaluateTargetHealth: false,
					},
				},
			}},
		},
	})
	if err != nil {
		return IngressResult{}, fmt.Errorf("publish alias record %s: %w", domain, err)
	}

	return IngressResult{
		DomainName:         domain,
		DistributionDomain: aws.ToString(created.DistributionDomainName),
	}, nil
}

// loadEnvironment resolves the base platform parameters published by the
// base identity stack. The hosted zone, shared pool, and client API are
// mandatory; the rest may legitimately be absent on a fresh deployment.
func (a *Onboarding) loadEnvironment(ctx context.Context) (Environment, error) {
	values, err := a.params.GetMany(ctx,
		a.params.GlobalKey(paramstore.KeyOIDCProviderEndpoint),
		a.params.GlobalKey(paramstore.KeyUserPoolID),
		a.params.GlobalKey(paramstore.KeyUserPoolRegion),
		a.params.GlobalKey(paramstore.KeyUserPoolDomainPrefix),
		a.params.GlobalKey(paramstore.KeyClientEndpoint),
		a.params.GlobalKey(paramstore.KeyClientRestAPIID),
		a.params.GlobalKey(paramstore.KeyClientCallbackEndpoint),
		a.params.GlobalKey(paramstore.KeyHostedZoneID),
	)
	if err != nil {
		return Environment{}, err
	}

	env := Environment{
		OIDCProviderEndpoint:   values.Value(paramstore.KeyOIDCProviderEndpoint),
		UserPoolID:             values.Value(paramstore.KeyUserPoolID),
		UserPoolRegion:         values.Value(paramstore.KeyUserPoolRegion),
		UserPoolDomainPrefix:   values.Value(paramstore.KeyUserPoolDomainPrefix),
		ClientEndpoint:         values.Value(paramstore.KeyClientEndpoint),
		ClientRestAPIID:        values.Value(paramstore.KeyClientRestAPIID),
		ClientCallbackEndpoint: values.Value(paramstore.KeyClientCallbackEndpoint),
		HostedZoneID:           values.Value(paramstore.KeyHostedZoneID),
	}
	if env.UserPoolID == "" || env.HostedZoneID == "" || env.ClientRestAPIID == "" {
		return Environment{}, fmt.Errorf("base platform parameters missing: pool=%q zone=%q api=%q",
			env.UserPoolID, env.HostedZoneID, env.ClientRestAPIID)
	}
	return env, nil
}

func (a *Onboarding) createFederationAppClient(ctx context.Context, env Environment, req model.OnboardingRequest) (*cognitotypes.UserPoolClientType, error) {
	out, err := a.cognito.CreateUserPoolClient(ctx, &cognitoidentityprovider.CreateUserPoolClientInput{
		ClientName:           aws.String(req.TenantSubDomain),
		UserPoolId:           aws.String(env.UserPoolID),
		GenerateSecret:       true,
		AccessTokenValidity:  aws.Int32(1),
		IdTokenValidity:      aws.Int32(1),
		RefreshTokenValidity: 7,
		TokenValidityUnits: &cognitotypes.TokenValidityUnitsType{
			AccessToken:  cognitotypes.TimeUnitsTypeHours,
			IdToken:      cognitotypes.TimeUnitsTypeHours,
			RefreshToken: cognitotypes.TimeUnitsTypeDays,
		},
		AllowedOAuthFlows:               []cognitotypes.OAuthFlowType{cognitotypes.OAuthFlowTypeCode},
		AllowedOAuthFlowsUserPoolClient: true,
		AllowedOAuthScopes:              []string{"phone", "email", "openid", "profile"},
		CallbackURLs: []string{
			fmt.Sprintf("https://%s.%s/callback", req.TenantSubDomain, req.TenantEmailDomain),
		},
		ExplicitAuthFlows: []cognitotypes.ExplicitAuthFlowsType{
			cognitotypes.ExplicitAuthFlowsTypeAllowAdminUserPasswordAuth,
			cognitotypes.ExplicitAuthFlowsTypeAllowRefreshTokenAuth,
		},
		PreventUserExistenceErrors: cognitotypes.PreventUserExistenceErrorTypesEnabled,
		SupportedIdentityProviders: []string{model.IDPTypeCognito},
	})
	if err != nil {
		return nil, fmt.Errorf("create federation app client: %w", err)
	}
	return out.UserPoolClient, nil
}

func (a *Onboarding) createAdminUser(ctx context.Context, userPoolID, emailID, tenantUUID string) error {
	_, err := a.cognito.AdminCreateUser(ctx, &cognitoidentityprovider.AdminCreateUserInput{
		UserPoolId: aws.String(userPoolID),
		Username:   aws.String(emailID),
		DesiredDeliveryMediums: []cognitotypes.DeliveryMediumType{
			cognitotypes.DeliveryMediumTypeEmail,
		},
		UserAttributes: []cognitotypes.AttributeType{
			{Name: aws.String("custom:tenantid"), Value: aws.String(tenantUUID)},
			{Name: aws.String("email"), Value: aws.String(emailID)},
		},
	})
	if err != nil {
		return fmt.Errorf("create admin user %s: %w", emailID, err)
	}
	return nil
}

func (a *Onboarding) describeCertificate(ctx context.Context, arn string) (*acmtypes.CertificateDetail, error) {
	out, err := a.acm.DescribeCertificate(ctx, &acm.DescribeCertificateInput{
		CertificateArn: aws.String(arn),
	})
	if err != nil {
		return nil, fmt.Errorf("describe certificate %s: %w", arn, err)
	}
	return out.Certificate, nil
}

func validationRecord(cert *acmtypes.CertificateDetail) *acmtypes.ResourceRecord {
	if cert == nil || len(cert.DomainValidationOptions) == 0 {
		return nil
	}
	return cert.DomainValidationOptions[0].ResourceRecord
}
