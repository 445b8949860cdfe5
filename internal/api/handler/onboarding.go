package handler

import (
	"net/http"
	"time"

	temporalclient "go.temporal.io/sdk/client"

	"github.com/edvin/identity/internal/api/request"
	"github.com/edvin/identity/internal/api/response"
	"github.com/edvin/identity/internal/metrics"
	"github.com/edvin/identity/internal/workflow"
)

// onboardingDeadline bounds the whole onboarding run, certificate polling
// included. Past it the engine fails the workflow with a timeout.
const onboardingDeadline = 120 * time.Minute

type Onboarding struct {
	tc temporalclient.Client
}

func NewOnboarding(tc temporalclient.Client) *Onboarding {
	return &Onboarding{tc: tc}
}

// Start accepts an onboarding request and hands it to the workflow engine.
// The response only acknowledges acceptance; provisioning runs for well
// over an hour and completion is observed through the engine.
func (h *Onboarding) Start(w http.ResponseWriter, r *http.Request) {
	var body request.OnboardTenant
	if err := request.Decode(r, &body); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Keyed by subdomain so a duplicate request while one is in flight
	// joins it instead of racing it.
	workflowID := "onboard-" + body.TenantSubDomain
	_, err := h.tc.ExecuteWorkflow(r.Context(), temporalclient.StartWorkflowOptions{
		ID:                       workflowID,
		TaskQueue:                workflow.TaskQueue,
		WorkflowExecutionTimeout: onboardingDeadline,
	}, "OnboardTenantWorkflow", body.Model())
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, "start onboarding: "+err.Error())
		return
	}

	metrics.OnboardingsStarted.Inc()
	response.WriteAccepted(w, workflowID)
}
