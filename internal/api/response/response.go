package response

import (
	"encoding/json"
	"net/http"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// Accepted is the body both provisioning endpoints return once the
// workflow has been handed to the engine. Completion is asynchronous.
type Accepted struct {
	Done       bool   `json:"done"`
	WorkflowID string `json:"workflowId,omitempty"`
}

func WriteAccepted(w http.ResponseWriter, workflowID string) {
	WriteJSON(w, http.StatusOK, Accepted{Done: true, WorkflowID: workflowID})
}
