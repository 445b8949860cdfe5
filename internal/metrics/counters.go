package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OnboardingsStarted counts onboarding workflows handed to the engine.
	OnboardingsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "identity_onboardings_started_total",
		Help: "Total number of tenant onboarding workflows started",
	})

	// FederationsStarted counts standalone federation workflows handed to
	// the engine. Federations run as part of onboarding are not counted here.
	FederationsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "identity_federations_started_total",
		Help: "Total number of standalone tenant federation workflows started",
	})

	// FederationFastPath counts federations satisfied by the shared backing
	// provider without a pipeline run.
	FederationFastPath = promauto.NewCounter(prometheus.CounterOpts{
		Name: "identity_federation_fast_path_total",
		Help: "Federations resolved against the already-deployed backing provider",
	})

	// PipelineExecutionsStarted counts dedicated provider pipeline runs.
	PipelineExecutionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "identity_pipeline_executions_started_total",
		Help: "Total number of federation build pipeline executions started",
	})

	// PipelineCallbacksResolved counts callbacks redeemed by the pipeline
	// agent, labelled by outcome.
	PipelineCallbacksResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "identity_pipeline_callbacks_resolved_total",
		Help: "Total number of federation pipeline callbacks resolved",
	}, []string{"outcome"})
)
