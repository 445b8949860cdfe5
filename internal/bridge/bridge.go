// Package bridge correlates suspended federation workflow steps with build
// pipeline executions. A pending callback is stored in the parameter store
// under the pipeline execution id — the only correlation handle available
// to the pipeline's build steps — and is consumed exactly once when the
// pipeline's completion action redeems it.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edvin/identity/internal/model"
	"github.com/edvin/identity/internal/paramstore"
)

var (
	// ErrAlreadyResolved is returned when a callback has been consumed or
	// never existed. Resolution deletes the stored record, so a second
	// resolve for the same execution id lands here.
	ErrAlreadyResolved = errors.New("callback already resolved or unknown")

	// ErrExpired is returned when a callback is redeemed after its
	// deadline. The stored record is removed so the outcome is final.
	ErrExpired = errors.New("callback expired")
)

// WorkflowSignaler resumes a suspended workflow. Satisfied by the Temporal
// client.
type WorkflowSignaler interface {
	SignalWorkflow(ctx context.Context, workflowID, runID, signalName string, arg any) error
}

// Bridge issues and resolves pending callbacks.
type Bridge struct {
	params *paramstore.Store
	tc     WorkflowSignaler
}

func New(params *paramstore.Store, tc WorkflowSignaler) *Bridge {
	return &Bridge{params: params, tc: tc}
}

// Issue persists a pending callback under the pipeline execution id. The
// token itself carries the suspended workflow's identity and deadline.
func (b *Bridge) Issue(ctx context.Context, executionID string, cb model.PendingCallback) error {
	if err := b.params.Put(ctx, b.params.ScopedKey(executionID, paramstore.KeyCallbackToken), cb.Token,
		fmt.Sprintf("callback token for pipeline execution %s", executionID)); err != nil {
		return err
	}
	return b.params.Put(ctx, b.params.ScopedKey(executionID, paramstore.KeyExecTenantUUID), cb.TenantUUID,
		fmt.Sprintf("tenant for pipeline execution %s", executionID))
}

// Resolve redeems the callback stored for a pipeline execution and resumes
// the suspended workflow with the given result. The record is deleted
// before signaling so a token can never be redeemed twice.
func (b *Bridge) Resolve(ctx context.Context, executionID string, result model.PipelineResult) error {
	tokenKey := b.params.ScopedKey(executionID, paramstore.KeyCallbackToken)
	uuidKey := b.params.ScopedKey(executionID, paramstore.KeyExecTenantUUID)
	endpointKey := b.params.ScopedKey(executionID, paramstore.KeyOIDCProviderEndpoint)

	values, err := b.params.GetMany(ctx, tokenKey, uuidKey, endpointKey)
	if err != nil {
		return err
	}

	encoded := values.Value(paramstore.KeyCallbackToken)
	if encoded == "" {
		return ErrAlreadyResolved
	}

	t, err := decodeToken(encoded)
	if err != nil {
		return err
	}

	// Delete-on-consume: remove the record first so a concurrent or
	// repeated resolve cannot redeem the same token.
	if err := b.params.Delete(ctx, tokenKey, uuidKey); err != nil {
		return err
	}

	if time.Now().After(t.ExpiresAt) {
		return ErrExpired
	}

	result.PipelineExecutionID = executionID
	result.TenantUUID = values.Value(paramstore.KeyExecTenantUUID)
	if result.OIDCProviderEndpoint == "" {
		result.OIDCProviderEndpoint = values.Value(paramstore.KeyOIDCProviderEndpoint)
	}

	if err := b.tc.SignalWorkflow(ctx, t.WorkflowID, t.RunID, model.FederationResultSignal, result); err != nil {
		return fmt.Errorf("resume workflow %s: %w", t.WorkflowID, err)
	}
	return nil
}

// Expire discards a pending callback without resuming anything. Used for
// manual cleanup after the suspended step has already timed out.
func (b *Bridge) Expire(ctx context.Context, executionID string) error {
	return b.params.Delete(ctx,
		b.params.ScopedKey(executionID, paramstore.KeyCallbackToken),
		b.params.ScopedKey(executionID, paramstore.KeyExecTenantUUID),
	)
}
