// Package api provides the hybrid identity control-plane REST API:
// tenant onboarding and identity federation, both accept-then-run-async.
package api
