package workflow

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/edvin/identity/internal/model"
)

// TaskQueue is the queue all identity workflows and activities run on.
const TaskQueue = "identity-tasks"

// waitUntilSettled sleeps for the given delay and re-invokes the polling
// activity until the external state stops asking to wait. Both certificate
// polls are this same wait-then-recheck shape; the workflow execution
// timeout bounds the total number of rounds.
//
// The polls are read-only, so unlike the mutating steps they tolerate a
// few transient faults per round before failing the workflow.
func waitUntilSettled(ctx workflow.Context, delay time.Duration, activityName string, arg any) error {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 2 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:    3,
			InitialInterval:    1 * time.Second,
			MaximumInterval:    10 * time.Second,
			BackoffCoefficient: 2.0,
		},
	})
	for {
		if err := workflow.Sleep(ctx, delay); err != nil {
			return err
		}
		var state model.CertificateValidationState
		if err := workflow.ExecuteActivity(ctx, activityName, arg).Get(ctx, &state); err != nil {
			return err
		}
		if !state.ContinueWait {
			return nil
		}
	}
}
