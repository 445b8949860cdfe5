package bridge

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/edvin/identity/internal/platform"
)

// token is the decoded form of a callback token. Like any task token it is
// opaque to everything except the bridge: holders can only redeem it, and
// redemption needs no lookup beyond the token itself to find the suspended
// workflow.
type token struct {
	WorkflowID string    `json:"wid"`
	RunID      string    `json:"rid"`
	Nonce      string    `json:"n"`
	ExpiresAt  time.Time `json:"exp"`
}

// EncodeToken mints a callback token for a suspended workflow step.
func EncodeToken(workflowID, runID string, expiresAt time.Time) string {
	raw, err := json.Marshal(token{
		WorkflowID: workflowID,
		RunID:      runID,
		Nonce:      platform.NewCallbackToken(),
		ExpiresAt:  expiresAt,
	})
	if err != nil {
		panic("marshal callback token: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeToken(s string) (token, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return token{}, fmt.Errorf("decode callback token: %w", err)
	}
	var t token
	if err := json.Unmarshal(raw, &t); err != nil {
		return token{}, fmt.Errorf("parse callback token: %w", err)
	}
	return t, nil
}
