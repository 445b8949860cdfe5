package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	cptypes "github.com/aws/aws-sdk-go-v2/service/codepipeline/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	temporalclient "go.temporal.io/sdk/client"

	"github.com/edvin/identity/internal/bridge"
	"github.com/edvin/identity/internal/config"
	"github.com/edvin/identity/internal/logging"
	"github.com/edvin/identity/internal/metrics"
	"github.com/edvin/identity/internal/model"
	"github.com/edvin/identity/internal/paramstore"
)

// pipeline-agent is the build pipeline's completion action. The final
// pipeline stage invokes it with the execution id; it redeems the stored
// callback and resumes the suspended federation workflow, then reports the
// action result back to the pipeline when a job id is given.
func main() {
	_ = godotenv.Load()

	executionID := flag.String("execution-id", "", "pipeline execution id that completed")
	status := flag.String("status", "success", "pipeline outcome: success or failure")
	message := flag.String("message", "", "failure reason, forwarded to the suspended workflow")
	jobID := flag.String("job-id", "", "pipeline job id to acknowledge, if any")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("pipeline-agent"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *executionID == "" {
		logger.Fatal().Msg("--execution-id is required")
	}
	if *status != "success" && *status != "failure" {
		logger.Fatal().Str("status", *status).Msg("--status must be success or failure")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load AWS config")
	}

	tlsConfig, err := cfg.TemporalTLS()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure temporal TLS")
	}
	dialOpts := temporalclient.Options{HostPort: cfg.TemporalAddress}
	if tlsConfig != nil {
		dialOpts.ConnectionOptions = temporalclient.ConnectionOptions{TLS: tlsConfig}
	}
	tc, err := temporalclient.Dial(dialOpts)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to temporal")
	}
	defer tc.Close()

	params := paramstore.New(ssm.NewFromConfig(awsCfg), cfg.ParamRoot)
	callbackBridge := bridge.New(params, tc)

	result := model.PipelineResult{PipelineExecutionID: *executionID}
	if *status == "failure" {
		result.Error = *message
		if result.Error == "" {
			result.Error = "pipeline execution failed"
		}
	}

	resolved := resolve(ctx, logger, callbackBridge, *executionID, result)

	if *jobID != "" {
		ack(ctx, logger, codepipeline.NewFromConfig(awsCfg), *jobID, resolved)
	}

	if !resolved {
		os.Exit(1)
	}
}

func resolve(ctx context.Context, logger zerolog.Logger, b *bridge.Bridge, executionID string, result model.PipelineResult) bool {
	err := b.Resolve(ctx, executionID, result)
	switch {
	case err == nil:
		metrics.PipelineCallbacksResolved.WithLabelValues("resumed").Inc()
		logger.Info().Str("execution_id", executionID).Msg("federation workflow resumed")
		return true
	case errors.Is(err, bridge.ErrAlreadyResolved):
		// Redelivered completion; the first delivery won.
		metrics.PipelineCallbacksResolved.WithLabelValues("duplicate").Inc()
		logger.Warn().Str("execution_id", executionID).Msg("callback already resolved")
		return true
	case errors.Is(err, bridge.ErrExpired):
		metrics.PipelineCallbacksResolved.WithLabelValues("expired").Inc()
		logger.Warn().Str("execution_id", executionID).Msg("callback expired before the pipeline finished")
		return true
	default:
		metrics.PipelineCallbacksResolved.WithLabelValues("error").Inc()
		logger.Error().Err(err).Str("execution_id", executionID).Msg("failed to resolve callback")
		return false
	}
}

func ack(ctx context.Context, logger zerolog.Logger, cp *codepipeline.Client, jobID string, ok bool) {
	var err error
	if ok {
		_, err = cp.PutJobSuccessResult(ctx, &codepipeline.PutJobSuccessResultInput{
			JobId: aws.String(jobID),
		})
	} else {
		_, err = cp.PutJobFailureResult(ctx, &codepipeline.PutJobFailureResultInput{
			JobId: aws.String(jobID),
			FailureDetails: &cptypes.FailureDetails{
				Type:    cptypes.FailureTypeJobFailed,
				Message: aws.String("failed to resume federation workflow"),
			},
		})
	}
	if err != nil {
		logger.Error().Err(err).Str("job_id", jobID).Msg("failed to acknowledge pipeline job")
	}
}
