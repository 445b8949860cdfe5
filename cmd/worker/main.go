package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	temporalclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/interceptor"
	"go.temporal.io/sdk/worker"

	"github.com/edvin/identity/internal/activity"
	"github.com/edvin/identity/internal/bridge"
	"github.com/edvin/identity/internal/config"
	"github.com/edvin/identity/internal/logging"
	"github.com/edvin/identity/internal/metrics"
	"github.com/edvin/identity/internal/paramstore"
	"github.com/edvin/identity/internal/registry"
	"github.com/edvin/identity/internal/secrets"
	"github.com/edvin/identity/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("worker"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
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
		logger.Info().Msg("temporal mTLS enabled")
	}
	tc, err := temporalclient.Dial(dialOpts)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to temporal")
	}
	defer tc.Close()

	params := paramstore.New(ssm.NewFromConfig(awsCfg), cfg.ParamRoot)
	sec := secrets.New(secretsmanager.NewFromConfig(awsCfg), cfg.ParamRoot)
	reg := registry.New(dynamodb.NewFromConfig(awsCfg), cfg.TenantsTable, cfg.ProviderTable)
	callbackBridge := bridge.New(params, tc)

	// Edge-optimized custom domains require their certificate in us-east-1.
	acmClient := acm.NewFromConfig(awsCfg, func(o *acm.Options) { o.Region = cfg.CertRegion })

	pipelineLogLevel := strings.ToUpper(cfg.LogLevel)

	w := worker.New(tc, workflow.TaskQueue, worker.Options{
		Interceptors: []interceptor.WorkerInterceptor{&workflow.ErrorTypingInterceptor{}},
	})

	// Register activities
	onboardingActivities := activity.NewOnboarding(params, sec, reg,
		cognitoidentityprovider.NewFromConfig(awsCfg), acmClient,
		route53.NewFromConfig(awsCfg), apigateway.NewFromConfig(awsCfg),
		cfg.AWSRegion, cfg.ProviderTable, pipelineLogLevel, cfg.ClientAPIStage)
	w.RegisterActivity(onboardingActivities)

	federationActivities := activity.NewFederation(params, sec, reg,
		cognitoidentityprovider.NewFromConfig(awsCfg))
	w.RegisterActivity(federationActivities)

	pipelineActivities := activity.NewPipeline(params, callbackBridge,
		codepipeline.NewFromConfig(awsCfg),
		cfg.FederationPipeline, cfg.ProviderTable, pipelineLogLevel)
	w.RegisterActivity(pipelineActivities)

	// Register workflows
	w.RegisterWorkflow(workflow.OnboardTenantWorkflow)
	w.RegisterWorkflow(workflow.FederateTenantWorkflow)

	if cfg.MetricsAddr != "" {
		metricsSrv := metrics.NewServer(cfg.MetricsAddr)
		go func() {
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("starting metrics server")
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("metrics server failed")
			}
		}()
	}

	logger.Info().Str("taskQueue", workflow.TaskQueue).Msg("starting temporal worker")
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Fatal().Err(err).Msg("worker failed")
	}
}
