package workflow

import (
	"go.temporal.io/sdk/testsuite"

	"github.com/edvin/identity/internal/activity"
)

// registerActivities registers the activity structs with the test workflow
// environment so parameter and return types deserialize correctly. All
// activities are mocked via OnActivity in the tests; the framework only
// needs the type information.
func registerActivities(env *testsuite.TestWorkflowEnvironment) {
	env.RegisterActivity(&activity.Onboarding{})
	env.RegisterActivity(&activity.Federation{})
	env.RegisterActivity(&activity.Pipeline{})
}
