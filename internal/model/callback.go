package model

import "time"

// FederationResultSignal is the signal name the callback bridge uses to
// resume a suspended federation workflow.
const FederationResultSignal = "federation-pipeline-result"

// PendingCallback represents one suspended federation workflow step,
// stored durably under the pipeline execution id that will redeem it.
// A callback is consumed exactly once: resolving it deletes the record.
type PendingCallback struct {
	Token      string    `json:"token"`
	WorkflowID string    `json:"workflow_id"`
	RunID      string    `json:"run_id"`
	TenantUUID string    `json:"tenant_uuid"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Expired reports whether the callback can no longer be redeemed.
func (c PendingCallback) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// PipelineResult is the payload delivered to the suspended federation
// workflow when the bridge resolves its callback.
type PipelineResult struct {
	PipelineExecutionID string `json:"pipelineExecutionId,omitempty"`
	TenantUUID          string `json:"tenantUuid"`
	// OIDCProviderEndpoint is the live backing provider endpoint, resolved
	// either from the shared deployment or from the pipeline execution.
	OIDCProviderEndpoint string `json:"oidcProviderEndPoint,omitempty"`
	// Error is set when the bridge resolves the step as a failure.
	Error string `json:"error,omitempty"`
}
