package activity

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/acm"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/route53"
)

// Narrow per-service interfaces over the AWS clients, so activities can be
// unit tested without AWS.

// CognitoClient is the subset of the Cognito IDP API the activities use.
type CognitoClient interface {
	CreateUserPool(ctx context.Context, in *cognitoidentityprovider.CreateUserPoolInput, opts ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.CreateUserPoolOutput, error)
	CreateUserPoolClient(ctx context.Context, in *cognitoidentityprovider.CreateUserPoolClientInput, opts ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.CreateUserPoolClientOutput, error)
	AdminCreateUser(ctx context.Context, in *cognitoidentityprovider.AdminCreateUserInput, opts ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminCreateUserOutput, error)
	CreateIdentityProvider(ctx context.Context, in *cognitoidentityprovider.CreateIdentityProviderInput, opts ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.CreateIdentityProviderOutput, error)
	DescribeUserPoolClient(ctx context.Context, in *cognitoidentityprovider.DescribeUserPoolClientInput, opts ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.DescribeUserPoolClientOutput, error)
	UpdateUserPoolClient(ctx context.Context, in *cognitoidentityprovider.UpdateUserPoolClientInput, opts ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.UpdateUserPoolClientOutput, error)
}

// ACMClient is the subset of the ACM API the certificate steps use.
type ACMClient interface {
	RequestCertificate(ctx context.Context, in *acm.RequestCertificateInput, opts ...func(*acm.Options)) (*acm.RequestCertificateOutput, error)
	DescribeCertificate(ctx context.Context, in *acm.DescribeCertificateInput, opts ...func(*acm.Options)) (*acm.DescribeCertificateOutput, error)
}

// Route53Client publishes DNS records into the managed hosted zone.
type Route53Client interface {
	ChangeResourceRecordSets(ctx context.Context, in *route53.ChangeResourceRecordSetsInput, opts ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
}

// APIGatewayClient creates the per-tenant ingress domain.
type APIGatewayClient interface {
	CreateDomainName(ctx context.Context, in *apigateway.CreateDomainNameInput, opts ...func(*apigateway.Options)) (*apigateway.CreateDomainNameOutput, error)
	CreateBasePathMapping(ctx context.Context, in *apigateway.CreateBasePathMappingInput, opts ...func(*apigateway.Options)) (*apigateway.CreateBasePathMappingOutput, error)
}

// CodePipelineClient starts and reports on federation build pipelines.
type CodePipelineClient interface {
	StartPipelineExecution(ctx context.Context, in *codepipeline.StartPipelineExecutionInput, opts ...func(*codepipeline.Options)) (*codepipeline.StartPipelineExecutionOutput, error)
	PutJobSuccessResult(ctx context.Context, in *codepipeline.PutJobSuccessResultInput, opts ...func(*codepipeline.Options)) (*codepipeline.PutJobSuccessResultOutput, error)
	PutJobFailureResult(ctx context.Context, in *codepipeline.PutJobFailureResultInput, opts ...func(*codepipeline.Options)) (*codepipeline.PutJobFailureResultOutput, error)
}
