package workflow

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/edvin/identity/internal/activity"
	"github.com/edvin/identity/internal/model"
)

// federationPipelineTimeout bounds how long the workflow stays suspended
// waiting for the build pipeline's completion action.
const federationPipelineTimeout = 2 * time.Hour

// FederateInput is the input of FederateTenantWorkflow. The tenant uuid
// comes from the authenticated caller or from the onboarding workflow,
// never from the request body.
type FederateInput struct {
	TenantUUID string                  `json:"tenant_uuid"`
	Request    model.FederationRequest `json:"request"`
}

// FederateTenantWorkflow links a tenant's identity source into the shared
// federation pool. It first ensures a backing OIDC provider exists: either
// the shared one is already recorded, or a build pipeline provisions a
// dedicated one and resumes this workflow through the callback bridge.
// On timeout the whole federation fails; callers retry from scratch.
func FederateTenantWorkflow(ctx workflow.Context, input FederateInput) (activity.FederationResult, error) {
	logger := workflow.GetLogger(ctx)
	// Both steps mutate external state (a pipeline execution, the tenant's
	// federation records), so a failed step fails the whole workflow
	// instead of being re-invoked against half-created resources.
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	info := workflow.GetInfo(ctx)
	var started activity.StartPipelineResult
	err := workflow.ExecuteActivity(ctx, "StartFederationPipeline", activity.StartPipelineParams{
		TenantUUID: input.TenantUUID,
		WorkflowID: info.WorkflowExecution.ID,
		RunID:      info.WorkflowExecution.RunID,
		Request:    input.Request,
	}).Get(ctx, &started)
	if err != nil {
		return activity.FederationResult{}, err
	}

	params := activity.FederationParams{
		TenantUUID: input.TenantUUID,
		Request:    input.Request,
	}

	if started.AlreadyAvailable {
		logger.Info("backing provider already available", "tenant_uuid", input.TenantUUID)
		params.OIDCProviderEndpoint = started.OIDCProviderEndpoint
	} else {
		logger.Info("suspended on federation pipeline",
			"tenant_uuid", input.TenantUUID,
			"execution_id", started.PipelineExecutionID)

		result, ok := awaitPipelineResult(ctx)
		if !ok {
			return activity.FederationResult{}, temporal.NewApplicationError(
				fmt.Sprintf("federation pipeline %s did not report back within %s",
					started.PipelineExecutionID, federationPipelineTimeout),
				"PIPELINE_TIMEOUT")
		}
		if result.Error != "" {
			return activity.FederationResult{}, temporal.NewApplicationError(
				"federation pipeline failed: "+result.Error, "PIPELINE_FAILED")
		}
		params.PipelineExecutionID = result.PipelineExecutionID
		params.OIDCProviderEndpoint = result.OIDCProviderEndpoint
	}

	var result activity.FederationResult
	err = workflow.ExecuteActivity(ctx, "AddFederationConfig", params).Get(ctx, &result)
	if err != nil {
		return activity.FederationResult{}, err
	}

	logger.Info("tenant federated", "tenant_uuid", input.TenantUUID, "provider", result.ProviderName)
	return result, nil
}

// awaitPipelineResult suspends until the callback bridge signals the
// pipeline's outcome or the timeout elapses.
func awaitPipelineResult(ctx workflow.Context) (model.PipelineResult, bool) {
	signalCh := workflow.GetSignalChannel(ctx, model.FederationResultSignal)

	var result model.PipelineResult
	received := false

	selector := workflow.NewSelector(ctx)
	selector.AddReceive(signalCh, func(c workflow.ReceiveChannel, _ bool) {
		c.Receive(ctx, &result)
		received = true
	})
	selector.AddFuture(workflow.NewTimer(ctx, federationPipelineTimeout), func(workflow.Future) {})
	selector.Select(ctx)

	return result, received
}
