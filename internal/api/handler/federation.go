package handler

import (
	"net/http"
	"time"

	temporalclient "go.temporal.io/sdk/client"

	mw "github.com/edvin/identity/internal/api/middleware"
	"github.com/edvin/identity/internal/api/request"
	"github.com/edvin/identity/internal/api/response"
	"github.com/edvin/identity/internal/metrics"
	"github.com/edvin/identity/internal/workflow"
)

// federationDeadline leaves room for a full pipeline wait plus the
// configuration steps on either side of it.
const federationDeadline = 3 * time.Hour

type Federation struct {
	tc temporalclient.Client
}

func NewFederation(tc temporalclient.Client) *Federation {
	return &Federation{tc: tc}
}

// Start accepts a federation request for the authenticated caller's tenant
// and hands it to the workflow engine.
func (h *Federation) Start(w http.ResponseWriter, r *http.Request) {
	tenantUUID, ok := mw.TenantUUID(r.Context())
	if !ok {
		response.WriteError(w, http.StatusUnauthorized, "no authenticated tenant")
		return
	}

	var body request.FederateTenant
	if err := request.Decode(r, &body); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	workflowID := "federate-" + tenantUUID
	_, err := h.tc.ExecuteWorkflow(r.Context(), temporalclient.StartWorkflowOptions{
		ID:                       workflowID,
		TaskQueue:                workflow.TaskQueue,
		WorkflowExecutionTimeout: federationDeadline,
	}, "FederateTenantWorkflow", workflow.FederateInput{
		TenantUUID: tenantUUID,
		Request:    body.Model(),
	})
	if err != nil {
		response.WriteError(w, http.StatusInternalServerError, "start federation: "+err.Error())
		return
	}

	metrics.FederationsStarted.Inc()
	response.WriteAccepted(w, workflowID)
}
