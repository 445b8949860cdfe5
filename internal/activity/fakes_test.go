package activity

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	acmtypes "github.com/aws/aws-sdk-go-v2/service/acm/types"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	cognitotypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// --- parameter store fake ---

type fakeSSM struct {
	params map[string]string
	puts   int
}

func newFakeSSM() *fakeSSM { return &fakeSSM{params: make(map[string]string)} }

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	v, ok := f.params[aws.ToString(in.Name)]
	if !ok {
		return nil, &ssmtypes.ParameterNotFound{}
	}
	return &ssm.GetParameterOutput{Parameter: &ssmtypes.Parameter{Name: in.Name, Value: aws.String(v)}}, nil
}

func (f *fakeSSM) GetParameters(_ context.Context, in *ssm.GetParametersInput, _ ...func(*ssm.Options)) (*ssm.GetParametersOutput, error) {
	out := &ssm.GetParametersOutput{}
	for _, name := range in.Names {
		if v, ok := f.params[name]; ok {
			out.Parameters = append(out.Parameters, ssmtypes.Parameter{Name: aws.String(name), Value: aws.String(v)})
		}
	}
	return out, nil
}

func (f *fakeSSM) PutParameter(_ context.Context, in *ssm.PutParameterInput, _ ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
	f.params[aws.ToString(in.Name)] = aws.ToString(in.Value)
	f.puts++
	return &ssm.PutParameterOutput{}, nil
}

func (f *fakeSSM) DeleteParameters(_ context.Context, in *ssm.DeleteParametersInput, _ ...func(*ssm.Options)) (*ssm.DeleteParametersOutput, error) {
	for _, name := range in.Names {
		delete(f.params, name)
	}
	return &ssm.DeleteParametersOutput{}, nil
}

// --- secrets manager fake ---

type fakeSecrets struct {
	secrets   map[string]string
	passwords []string
	nextPw    int
}

func newFakeSecrets(passwords ...string) *fakeSecrets {
	return &fakeSecrets{secrets: make(map[string]string), passwords: passwords}
}

func (f *fakeSecrets) CreateSecret(_ context.Context, in *secretsmanager.CreateSecretInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error) {
	name := aws.ToString(in.Name)
	if _, exists := f.secrets[name]; exists {
		return nil, &smtypes.ResourceExistsException{Message: aws.String("secret exists")}
	}
	f.secrets[name] = aws.ToString(in.SecretString)
	return &secretsmanager.CreateSecretOutput{Name: in.Name, ARN: aws.String("arn:" + name)}, nil
}

func (f *fakeSecrets) DescribeSecret(_ context.Context, in *secretsmanager.DescribeSecretInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error) {
	name := aws.ToString(in.SecretId)
	if _, ok := f.secrets[name]; !ok {
		return nil, &smtypes.ResourceNotFoundException{Message: aws.String("not found")}
	}
	return &secretsmanager.DescribeSecretOutput{Name: aws.String(name)}, nil
}

func (f *fakeSecrets) GetRandomPassword(_ context.Context, in *secretsmanager.GetRandomPasswordInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetRandomPasswordOutput, error) {
	pw := fmt.Sprintf("generated-password-%d", f.nextPw)
	if f.nextPw < len(f.passwords) {
		pw = f.passwords[f.nextPw]
	}
	f.nextPw++
	return &secretsmanager.GetRandomPasswordOutput{RandomPassword: aws.String(pw)}, nil
}

// --- dynamodb fake, keyed on the "id" attribute ---

type fakeDynamo struct {
	tables map[string]map[string]map[string]ddbtypes.AttributeValue
}

func newFakeDynamo() *fakeDynamo {
	return &fakeDynamo{tables: make(map[string]map[string]map[string]ddbtypes.AttributeValue)}
}

func (f *fakeDynamo) table(name string) map[string]map[string]ddbtypes.AttributeValue {
	if f.tables[name] == nil {
		f.tables[name] = make(map[string]map[string]ddbtypes.AttributeValue)
	}
	return f.tables[name]
}

func itemID(item map[string]ddbtypes.AttributeValue) string {
	if id, ok := item["id"].(*ddbtypes.AttributeValueMemberS); ok {
		return id.Value
	}
	return ""
}

func (f *fakeDynamo) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.table(aws.ToString(in.TableName))[itemID(in.Item)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	item := f.table(aws.ToString(in.TableName))[itemID(in.Key)]
	return &dynamodb.GetItemOutput{Item: item}, nil
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	want, _ := in.ExpressionAttributeValues[":s"].(*ddbtypes.AttributeValueMemberS)
	out := &dynamodb.QueryOutput{}
	for _, item := range f.table(aws.ToString(in.TableName)) {
		if sub, ok := item["subdomain"].(*ddbtypes.AttributeValueMemberS); ok && want != nil && sub.Value == want.Value {
			out.Items = append(out.Items, item)
		}
	}
	return out, nil
}

func (f *fakeDynamo) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	item := f.table(aws.ToString(in.TableName))[itemID(in.Key)]
	if item == nil {
		return nil, fmt.Errorf("item not found")
	}
	// Only update expression used is SET cognito.idp_identifier = :p.
	val := in.ExpressionAttributeValues[":p"].(*ddbtypes.AttributeValueMemberS)
	cognito, ok := item["cognito"].(*ddbtypes.AttributeValueMemberM)
	if !ok {
		return nil, fmt.Errorf("cognito attribute missing")
	}
	cognito.Value["idp_identifier"] = &ddbtypes.AttributeValueMemberS{Value: val.Value}
	return &dynamodb.UpdateItemOutput{}, nil
}

// --- cognito fake ---

type fakeCognito struct {
	nextPoolID        int
	nextClientID      int
	pools             []string
	clients           []*cognitoidentityprovider.CreateUserPoolClientInput
	adminUsers        []*cognitoidentityprovider.AdminCreateUserInput
	identityProviders []*cognitoidentityprovider.CreateIdentityProviderInput
	updatedClients    []*cognitoidentityprovider.UpdateUserPoolClientInput
	describedClient   *cognitotypes.UserPoolClientType
}

func (f *fakeCognito) CreateUserPool(_ context.Context, in *cognitoidentityprovider.CreateUserPoolInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.CreateUserPoolOutput, error) {
	f.nextPoolID++
	id := fmt.Sprintf("pool-%d", f.nextPoolID)
	f.pools = append(f.pools, id)
	return &cognitoidentityprovider.CreateUserPoolOutput{
		UserPool: &cognitotypes.UserPoolType{Id: aws.String(id), Name: in.PoolName},
	}, nil
}

func (f *fakeCognito) CreateUserPoolClient(_ context.Context, in *cognitoidentityprovider.CreateUserPoolClientInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.CreateUserPoolClientOutput, error) {
	f.nextClientID++
	f.clients = append(f.clients, in)
	client := &cognitotypes.UserPoolClientType{
		ClientId:   aws.String(fmt.Sprintf("client-%d", f.nextClientID)),
		UserPoolId: in.UserPoolId,
		ClientName: in.ClientName,
	}
	if in.GenerateSecret {
		client.ClientSecret = aws.String(fmt.Sprintf("client-secret-%d", f.nextClientID))
	}
	return &cognitoidentityprovider.CreateUserPoolClientOutput{UserPoolClient: client}, nil
}

func (f *fakeCognito) AdminCreateUser(_ context.Context, in *cognitoidentityprovider.AdminCreateUserInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminCreateUserOutput, error) {
	f.adminUsers = append(f.adminUsers, in)
	return &cognitoidentityprovider.AdminCreateUserOutput{}, nil
}

func (f *fakeCognito) CreateIdentityProvider(_ context.Context, in *cognitoidentityprovider.CreateIdentityProviderInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.CreateIdentityProviderOutput, error) {
	f.identityProviders = append(f.identityProviders, in)
	return &cognitoidentityprovider.CreateIdentityProviderOutput{}, nil
}

func (f *fakeCognito) DescribeUserPoolClient(_ context.Context, in *cognitoidentityprovider.DescribeUserPoolClientInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.DescribeUserPoolClientOutput, error) {
	client := f.describedClient
	if client == nil {
		client = &cognitotypes.UserPoolClientType{
			ClientId:                   in.ClientId,
			UserPoolId:                 in.UserPoolId,
			SupportedIdentityProviders: []string{"COGNITO"},
		}
	}
	return &cognitoidentityprovider.DescribeUserPoolClientOutput{UserPoolClient: client}, nil
}

func (f *fakeCognito) UpdateUserPoolClient(_ context.Context, in *cognitoidentityprovider.UpdateUserPoolClientInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.UpdateUserPoolClientOutput, error) {
	f.updatedClients = append(f.updatedClients, in)
	return &cognitoidentityprovider.UpdateUserPoolClientOutput{}, nil
}

// --- acm fake ---

type fakeACM struct {
	requests    []*acm.RequestCertificateInput
	certificate *acmtypes.CertificateDetail
}

func (f *fakeACM) RequestCertificate(_ context.Context, in *acm.RequestCertificateInput, _ ...func(*acm.Options)) (*acm.RequestCertificateOutput, error) {
	f.requests = append(f.requests, in)
	return &acm.RequestCertificateOutput{
		CertificateArn: aws.String("arn:aws:acm:us-east-1:000000000000:certificate/test"),
	}, nil
}

func (f *fakeACM) DescribeCertificate(_ context.Context, in *acm.DescribeCertificateInput, _ ...func(*acm.Options)) (*acm.DescribeCertificateOutput, error) {
	cert := f.certificate
	if cert == nil {
		cert = &acmtypes.CertificateDetail{CertificateArn: in.CertificateArn}
	}
	return &acm.DescribeCertificateOutput{Certificate: cert}, nil
}

// --- route53 fake ---

type fakeRoute53 struct {
	changes []*route53.ChangeResourceRecordSetsInput
}

func (f *fakeRoute53) ChangeResourceRecordSets(_ context.Context, in *route53.ChangeResourceRecordSetsInput, _ ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
	f.changes = append(f.changes, in)
	return &route53.ChangeResourceRecordSetsOutput{}, nil
}

// --- api gateway fake ---

type fakeAPIGateway struct {
	domains  []*apigateway.CreateDomainNameInput
	mappings []*apigateway.CreateBasePathMappingInput
}

func (f *fakeAPIGateway) CreateDomainName(_ context.Context, in *apigateway.CreateDomainNameInput, _ ...func(*apigateway.Options)) (*apigateway.CreateDomainNameOutput, error) {
	f.domains = append(f.domains, in)
	return &apigateway.CreateDomainNameOutput{
		DomainName:               in.DomainName,
		DistributionDomainName:   aws.String("d111abcdef.cloudfront.net"),
		DistributionHostedZoneId: aws.String("Z2FDTNDATAQYW2"),
	}, nil
}

func (f *fakeAPIGateway) CreateBasePathMapping(_ context.Context, in *apigateway.CreateBasePathMappingInput, _ ...func(*apigateway.Options)) (*apigateway.CreateBasePathMappingOutput, error) {
	f.mappings = append(f.mappings, in)
	return &apigateway.CreateBasePathMappingOutput{}, nil
}

// --- codepipeline fake ---

type fakeCodePipeline struct {
	executions  int
	executionID string
	startErr    error
}

func (f *fakeCodePipeline) StartPipelineExecution(_ context.Context, _ *codepipeline.StartPipelineExecutionInput, _ ...func(*codepipeline.Options)) (*codepipeline.StartPipelineExecutionOutput, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	f.executions++
	id := f.executionID
	if id == "" {
		id = fmt.Sprintf("exec-%d", f.executions)
	}
	return &codepipeline.StartPipelineExecutionOutput{PipelineExecutionId: aws.String(id)}, nil
}

func (f *fakeCodePipeline) PutJobSuccessResult(_ context.Context, _ *codepipeline.PutJobSuccessResultInput, _ ...func(*codepipeline.Options)) (*codepipeline.PutJobSuccessResultOutput, error) {
	return &codepipeline.PutJobSuccessResultOutput{}, nil
}

func (f *fakeCodePipeline) PutJobFailureResult(_ context.Context, _ *codepipeline.PutJobFailureResultInput, _ ...func(*codepipeline.Options)) (*codepipeline.PutJobFailureResultOutput, error) {
	return &codepipeline.PutJobFailureResultOutput{}, nil
}
