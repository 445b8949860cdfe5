package workflow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/edvin/identity/internal/activity"
	"github.com/edvin/identity/internal/model"
)

type OnboardTenantWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite
	env *testsuite.TestWorkflowEnvironment
}

func (s *OnboardTenantWorkflowTestSuite) SetupTest() {
	s.env = s.NewTestWorkflowEnvironment()
	registerActivities(s.env)
	s.env.RegisterWorkflow(FederateTenantWorkflow)
}

func (s *OnboardTenantWorkflowTestSuite) AfterTest(suiteName, testName string) {
	s.env.AssertExpectations(s.T())
}

func onboardingRequest() model.OnboardingRequest {
	return model.OnboardingRequest{
		TenantSubDomain:   "acme",
		TenantName:        "Acme Co",
		TenantEmailDomain: "example.com",
		TenantTier:        "gold",
		TenantIDPType:     "cognito",
		EmailID:           "admin@acme.com",
	}
}

func (s *OnboardTenantWorkflowTestSuite) TestSuccess() {
	env := activity.Environment{
		UserPoolID:      "pool-shared",
		HostedZoneID:    "Z123456",
		ClientRestAPIID: "api-1",
	}
	federation := model.FederationRequest{
		TenantIDPType: model.IDPTypeCognito,
		ProviderTable: "oidc-provider",
		LogLevel:      "ERROR",
		CognitoConfig: &model.CognitoConfig{UserPoolID: "pool-acme", UserPoolClientID: "client-acme"},
	}

	s.env.OnActivity("CreateTenantConfig", mock.Anything, mock.MatchedBy(func(p activity.ConfigParams) bool {
		return p.Request.TenantSubDomain == "acme" && p.TenantUUID != ""
	})).Return(activity.ConfigResult{Env: env, AppClientID: "client-fed"}, nil)
	s.env.OnActivity("CreateTenantAuth", mock.Anything, mock.Anything).
		Return(activity.AuthResult{Federation: federation}, nil)

	// Federation child workflow takes the fast path.
	s.env.OnActivity("StartFederationPipeline", mock.Anything, mock.Anything).
		Return(activity.StartPipelineResult{AlreadyAvailable: true, OIDCProviderEndpoint: "https://oidc.internal.example.com/"}, nil)
	s.env.OnActivity("AddFederationConfig", mock.Anything, mock.Anything).
		Return(activity.FederationResult{ProviderName: "acme"}, nil)

	s.env.OnActivity("RequestTenantCert", mock.Anything, mock.Anything).
		Return(activity.CertResult{CertificateARN: "arn:cert"}, nil)

	// Both polls wait one round before settling.
	s.env.OnActivity("CheckCertBaked", mock.Anything, mock.Anything).
		Return(model.CertificateValidationState{ContinueWait: true}, nil).Once()
	s.env.OnActivity("CheckCertBaked", mock.Anything, mock.Anything).
		Return(model.CertificateValidationState{ContinueWait: false}, nil).Once()
	s.env.OnActivity("CreateCertCNAME", mock.Anything, activity.CNAMEParams{
		CertificateARN: "arn:cert",
		HostedZoneID:   "Z123456",
	}).Return(nil)
	s.env.OnActivity("CheckCertValid", mock.Anything, mock.Anything).
		Return(model.CertificateValidationState{ContinueWait: true}, nil).Once()
	s.env.OnActivity("CheckCertValid", mock.Anything, mock.Anything).
		Return(model.CertificateValidationState{ContinueWait: false}, nil).Once()

	s.env.OnActivity("CreateTenantIngress", mock.Anything, mock.MatchedBy(func(p activity.IngressParams) bool {
		return p.TenantSubDomain == "acme" && p.CertificateARN == "arn:cert" && p.Env.HostedZoneID == "Z123456"
	})).Return(activity.IngressResult{DomainName: "acme.example.com"}, nil)

	s.env.ExecuteWorkflow(OnboardTenantWorkflow, onboardingRequest())
	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *OnboardTenantWorkflowTestSuite) TestConfigRejectionAbortsWorkflow() {
	s.env.OnActivity("CreateTenantConfig", mock.Anything, mock.Anything).
		Return(activity.ConfigResult{}, temporal.NewNonRetryableApplicationError(
			"tenantName and tenantSubDomain are mandatory", "VALIDATION_ERROR", nil))

	s.env.ExecuteWorkflow(OnboardTenantWorkflow, model.OnboardingRequest{TenantSubDomain: "acme"})
	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}

func (s *OnboardTenantWorkflowTestSuite) TestFederationFailureAbortsBeforeCert() {
	s.env.OnActivity("CreateTenantConfig", mock.Anything, mock.Anything).
		Return(activity.ConfigResult{}, nil)
	s.env.OnActivity("CreateTenantAuth", mock.Anything, mock.Anything).
		Return(activity.AuthResult{}, nil)
	s.env.OnActivity("StartFederationPipeline", mock.Anything, mock.Anything).
		Return(activity.StartPipelineResult{}, temporal.NewNonRetryableApplicationError(
			"pipeline unavailable", "PIPELINE_ERROR", nil))

	s.env.ExecuteWorkflow(OnboardTenantWorkflow, onboardingRequest())
	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
	s.env.AssertNotCalled(s.T(), "RequestTenantCert", mock.Anything, mock.Anything)
}

func (s *OnboardTenantWorkflowTestSuite) TestTransientConfigFailureFailsWithoutRetry() {
	// CreateTenantConfig creates an app client, a secret, and an admin
	// user; re-invoking it after a transient fault would duplicate them.
	s.env.OnActivity("CreateTenantConfig", mock.Anything, mock.Anything).
		Return(activity.ConfigResult{}, errors.New("rate exceeded")).Once()

	s.env.ExecuteWorkflow(OnboardTenantWorkflow, onboardingRequest())
	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
	s.env.AssertNumberOfCalls(s.T(), "CreateTenantConfig", 1)
	s.env.AssertNotCalled(s.T(), "CreateTenantAuth", mock.Anything, mock.Anything)
}

func (s *OnboardTenantWorkflowTestSuite) TestCertPollRetriesTransientFault() {
	s.env.OnActivity("CreateTenantConfig", mock.Anything, mock.Anything).
		Return(activity.ConfigResult{Env: activity.Environment{HostedZoneID: "Z123456"}}, nil)
	s.env.OnActivity("CreateTenantAuth", mock.Anything, mock.Anything).
		Return(activity.AuthResult{}, nil)
	s.env.OnActivity("StartFederationPipeline", mock.Anything, mock.Anything).
		Return(activity.StartPipelineResult{AlreadyAvailable: true, OIDCProviderEndpoint: "https://oidc.internal.example.com/"}, nil)
	s.env.OnActivity("AddFederationConfig", mock.Anything, mock.Anything).
		Return(activity.FederationResult{ProviderName: "acme"}, nil)
	s.env.OnActivity("RequestTenantCert", mock.Anything, mock.Anything).
		Return(activity.CertResult{CertificateARN: "arn:cert"}, nil)

	// The poll is read-only, so a transient fault retries within the
	// round instead of failing the workflow.
	s.env.OnActivity("CheckCertBaked", mock.Anything, mock.Anything).
		Return(model.CertificateValidationState{}, errors.New("throttled")).Once()
	s.env.OnActivity("CheckCertBaked", mock.Anything, mock.Anything).
		Return(model.CertificateValidationState{ContinueWait: false}, nil).Once()
	s.env.OnActivity("CreateCertCNAME", mock.Anything, mock.Anything).Return(nil)
	s.env.OnActivity("CheckCertValid", mock.Anything, mock.Anything).
		Return(model.CertificateValidationState{ContinueWait: false}, nil).Once()
	s.env.OnActivity("CreateTenantIngress", mock.Anything, mock.Anything).
		Return(activity.IngressResult{DomainName: "acme.example.com"}, nil)

	s.env.ExecuteWorkflow(OnboardTenantWorkflow, onboardingRequest())
	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func TestOnboardTenantWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(OnboardTenantWorkflowTestSuite))
}
