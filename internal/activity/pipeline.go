package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"

	"github.com/edvin/identity/internal/bridge"
	"github.com/edvin/identity/internal/metrics"
	"github.com/edvin/identity/internal/model"
	"github.com/edvin/identity/internal/paramstore"
)

// CallbackTTL bounds how long a federation workflow stays suspended
// waiting for its build pipeline.
const CallbackTTL = 2 * time.Hour

// Pipeline contains the federation callback bridge activity.
type Pipeline struct {
	params       *paramstore.Store
	bridge       *bridge.Bridge
	pipelines    CodePipelineClient
	pipelineName string

	providerTable string
	logLevel      string
}

// NewPipeline creates the pipeline activity struct. providerTable and
// logLevel are the defaults handed to builds whose request omits them.
func NewPipeline(params *paramstore.Store, b *bridge.Bridge, pipelines CodePipelineClient,
	pipelineName, providerTable, logLevel string) *Pipeline {
	return &Pipeline{
		params:        params,
		bridge:        b,
		pipelines:     pipelines,
		pipelineName:  pipelineName,
		providerTable: providerTable,
		logLevel:      logLevel,
	}
}

// StartFederationPipeline ensures a backing OIDC provider exists for the
// tenant. Non-VPC tenants whose shared provider endpoint is already
// recorded resolve immediately without starting a pipeline; otherwise
// exactly one pipeline execution is started and a pending callback is
// stored under its execution id so the pipeline's completion action can
// resume the suspended workflow. An error here fails the federation
// workflow outright instead of leaving it to time out.
func (a *Pipeline) StartFederationPipeline(ctx context.Context, params StartPipelineParams) (StartPipelineResult, error) {
	if params.Request.VPCConfig == nil {
		endpoint, err := a.params.Get(ctx, a.params.GlobalKey(paramstore.KeyOIDCProviderEndpoint))
		if err != nil && !errors.Is(err, paramstore.ErrNotFound) {
			return StartPipelineResult{}, err
		}
		if endpoint != "" {
			metrics.FederationFastPath.Inc()
			return StartPipelineResult{AlreadyAvailable: true, OIDCProviderEndpoint: endpoint}, nil
		}
	}

	started, err := a.pipelines.StartPipelineExecution(ctx, &codepipeline.StartPipelineExecutionInput{
		Name: aws.String(a.pipelineName),
	})
	if err != nil {
		return StartPipelineResult{}, fmt.Errorf("start pipeline %s: %w", a.pipelineName, err)
	}
	executionID := aws.ToString(started.PipelineExecutionId)
	metrics.PipelineExecutionsStarted.Inc()

	now := time.Now()
	expiresAt := now.Add(CallbackTTL)
	cb := model.PendingCallback{
		Token:      bridge.EncodeToken(params.WorkflowID, params.RunID, expiresAt),
		WorkflowID: params.WorkflowID,
		RunID:      params.RunID,
		TenantUUID: params.TenantUUID,
		IssuedAt:   now,
		ExpiresAt:  expiresAt,
	}
	if err := a.bridge.Issue(ctx, executionID, cb); err != nil {
		return StartPipelineResult{}, err
	}

	if err := a.putExecutionParams(ctx, executionID, params.Request); err != nil {
		return StartPipelineResult{}, err
	}

	return StartPipelineResult{PipelineExecutionID: executionID}, nil
}

// putExecutionParams records everything the pipeline's build steps need
// under the execution id, the only correlation handle a build has at
// runtime.
func (a *Pipeline) putExecutionParams(ctx context.Context, executionID string, req model.FederationRequest) error {
	if req.ProviderTable == "" {
		req.ProviderTable = a.providerTable
	}
	if req.LogLevel == "" {
		req.LogLevel = a.logLevel
	}
	values := map[string]string{
		paramstore.KeyProviderTable: req.ProviderTable,
		paramstore.KeyLogLevel:      req.LogLevel,
	}
	if req.VPCConfig != nil {
		if len(req.VPCConfig.SubnetIDs) != 2 || len(req.VPCConfig.SecurityGroupIDs) != 2 {
			return fmt.Errorf("vpcConfig requires exactly 2 subnets and 2 security groups")
		}
		values[paramstore.KeySubnet1] = req.VPCConfig.SubnetIDs[0]
		values[paramstore.KeySubnet2] = req.VPCConfig.SubnetIDs[1]
		values[paramstore.KeySecurityGroup1] = req.VPCConfig.SecurityGroupIDs[0]
		values[paramstore.KeySecurityGroup2] = req.VPCConfig.SecurityGroupIDs[1]
		values[paramstore.KeyVPCID] = req.VPCConfig.VPCID
	}

	for name, value := range values {
		if err := a.params.Put(ctx, a.params.ScopedKey(executionID, name), value,
			fmt.Sprintf("pipeline execution %s %s", executionID, name)); err != nil {
			return err
		}
	}
	return nil
}
