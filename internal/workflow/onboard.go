package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/edvin/identity/internal/activity"
	"github.com/edvin/identity/internal/model"
	"github.com/edvin/identity/internal/platform"
)

const (
	// certBakedDelay and certValidDelay are the fixed waits before each
	// round of the two certificate polls. Certificate issuance has no push
	// notification, so bounded polling is the only option.
	certBakedDelay = 30 * time.Second
	certValidDelay = 60 * time.Second
)

// OnboardTenantWorkflow runs the full tenant onboarding sequence: tenant
// configuration, the dedicated auth pool, federation as a child workflow,
// then certificate request, validation, and ingress. Intermediate results
// accumulate in the execution context; each step's slot is written once.
// There is no compensating rollback: a terminal failure leaves any
// already-created resources for manual remediation.
func OnboardTenantWorkflow(ctx workflow.Context, req model.OnboardingRequest) error {
	logger := workflow.GetLogger(ctx)
	// Steps mutate external state and are not idempotent, so a failed step
	// is never re-invoked: the whole workflow fails and any resources it
	// already created are left for manual remediation. The read-only
	// certificate polls carry their own retrying options.
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	// The tenant uuid is allocated once per onboarding attempt. SideEffect
	// keeps it stable across replays.
	var tenantUUID string
	encodedID := workflow.SideEffect(ctx, func(ctx workflow.Context) interface{} {
		return platform.NewID()
	})
	if err := encodedID.Get(&tenantUUID); err != nil {
		return err
	}

	octx := activity.OnboardingContext{Request: req, TenantUUID: tenantUUID}
	logger.Info("onboarding tenant", "subdomain", req.TenantSubDomain, "tenant_uuid", tenantUUID)

	err := workflow.ExecuteActivity(ctx, "CreateTenantConfig", activity.ConfigParams{
		Request:    req,
		TenantUUID: tenantUUID,
	}).Get(ctx, &octx.Config)
	if err != nil {
		return err
	}

	err = workflow.ExecuteActivity(ctx, "CreateTenantAuth", activity.AuthParams{
		TenantSubDomain: req.TenantSubDomain,
		TenantUUID:      tenantUUID,
	}).Get(ctx, &octx.Auth)
	if err != nil {
		return err
	}

	childCtx := workflow.WithChildOptions(ctx, workflow.ChildWorkflowOptions{
		WorkflowID: "federate-" + tenantUUID,
		TaskQueue:  TaskQueue,
	})
	err = workflow.ExecuteChildWorkflow(childCtx, FederateTenantWorkflow, FederateInput{
		TenantUUID: tenantUUID,
		Request:    octx.Auth.Federation,
	}).Get(ctx, nil)
	if err != nil {
		return err
	}

	err = workflow.ExecuteActivity(ctx, "RequestTenantCert", activity.CertParams{
		TenantSubDomain:   req.TenantSubDomain,
		TenantEmailDomain: req.TenantEmailDomain,
		TenantUUID:        tenantUUID,
	}).Get(ctx, &octx.Cert)
	if err != nil {
		return err
	}

	certStatus := activity.CertStatusParams{CertificateARN: octx.Cert.CertificateARN}
	if err := waitUntilSettled(ctx, certBakedDelay, "CheckCertBaked", certStatus); err != nil {
		return err
	}

	err = workflow.ExecuteActivity(ctx, "CreateCertCNAME", activity.CNAMEParams{
		CertificateARN: octx.Cert.CertificateARN,
		HostedZoneID:   octx.Config.Env.HostedZoneID,
	}).Get(ctx, nil)
	if err != nil {
		return err
	}

	if err := waitUntilSettled(ctx, certValidDelay, "CheckCertValid", certStatus); err != nil {
		return err
	}

	err = workflow.ExecuteActivity(ctx, "CreateTenantIngress", activity.IngressParams{
		TenantSubDomain:   req.TenantSubDomain,
		TenantEmailDomain: req.TenantEmailDomain,
		TenantUUID:        tenantUUID,
		CertificateARN:    octx.Cert.CertificateARN,
		Env:               octx.Config.Env,
	}).Get(ctx, &octx.Ingress)
	if err != nil {
		return err
	}

	logger.Info("tenant onboarded",
		"subdomain", req.TenantSubDomain,
		"tenant_uuid", tenantUUID,
		"domain", octx.Ingress.DomainName)
	return nil
}
