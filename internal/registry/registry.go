// Package registry persists tenant records and OIDC provider configuration
// in DynamoDB. The tenants table is keyed by tenant UUID with a subdomain
// GSI; the provider table holds "tenant:<uuid>" and "client:<uuid>" items
// consumed by the OIDC backing provider at runtime.
package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/edvin/identity/internal/model"
)

// ErrTenantNotFound is returned when no tenant record matches the lookup.
var ErrTenantNotFound = errors.New("tenant not found")

// SubdomainIndex is the GSI on the tenants table keyed by subdomain.
const SubdomainIndex = "subdomain-index"

// Client is the subset of the DynamoDB API the registry uses.
type Client interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, opts ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
}

// Store reads and writes registry records.
type Store struct {
	client        Client
	tenantsTable  string
	providerTable string
}

func New(client Client, tenantsTable, providerTable string) *Store {
	return &Store{client: client, tenantsTable: tenantsTable, providerTable: providerTable}
}

// PutTenant writes the tenant record. The CONFIG step is the only writer.
func (s *Store) PutTenant(ctx context.Context, tenant *model.Tenant) error {
	item, err := attributevalue.MarshalMap(tenant)
	if err != nil {
		return fmt.Errorf("marshal tenant %s: %w", tenant.ID, err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tenantsTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put tenant %s: %w", tenant.ID, err)
	}
	return nil
}

// GetTenant fetches a tenant record by UUID.
func (s *Store) GetTenant(ctx context.Context, id string) (*model.Tenant, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tenantsTable),
		Key: map[string]ddbtypes.AttributeValue{
			"id": &ddbtypes.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get tenant %s: %w", id, err)
	}
	if out.Item == nil {
		return nil, ErrTenantNotFound
	}
	var tenant model.Tenant
	if err := attributevalue.UnmarshalMap(out.Item, &tenant); err != nil {
		return nil, fmt.Errorf("unmarshal tenant %s: %w", id, err)
	}
	return &tenant, nil
}

// GetTenantBySubdomain resolves a tenant via the subdomain GSI.
func (s *Store) GetTenantBySubdomain(ctx context.Context, subdomain string) (*model.Tenant, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tenantsTable),
		IndexName:              aws.String(SubdomainIndex),
		KeyConditionExpression: aws.String("subdomain = :s"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":s": &ddbtypes.AttributeValueMemberS{Value: subdomain},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query tenant by subdomain %s: %w", subdomain, err)
	}
	if len(out.Items) == 0 {
		return nil, ErrTenantNotFound
	}
	var tenant model.Tenant
	if err := attributevalue.UnmarshalMap(out.Items[0], &tenant); err != nil {
		return nil, fmt.Errorf("unmarshal tenant %s: %w", subdomain, err)
	}
	return &tenant, nil
}

// SetIDPIdentifier records the federated identity provider name on the
// tenant. It only ever sets the value; nothing clears it afterwards.
func (s *Store) SetIDPIdentifier(ctx context.Context, tenantID, providerName string) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tenantsTable),
		Key: map[string]ddbtypes.AttributeValue{
			"id": &ddbtypes.AttributeValueMemberS{Value: tenantID},
		},
		UpdateExpression: aws.String("SET cognito.idp_identifier = :p"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":p": &ddbtypes.AttributeValueMemberS{Value: providerName},
		},
	})
	if err != nil {
		return fmt.Errorf("set idp identifier for tenant %s: %w", tenantID, err)
	}
	return nil
}

// PutTenantSettings writes the per-tenant record of the provider table.
func (s *Store) PutTenantSettings(ctx context.Context, settings *model.TenantSettings) error {
	item, err := attributevalue.MarshalMap(settings)
	if err != nil {
		return fmt.Errorf("marshal tenant settings %s: %w", settings.ID, err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.providerTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put tenant settings %s: %w", settings.ID, err)
	}
	return nil
}

// PutAppClient writes the tenant's app-client record of the provider table.
func (s *Store) PutAppClient(ctx context.Context, client *model.AppClient) error {
	item, err := attributevalue.MarshalMap(client)
	if err != nil {
		return fmt.Errorf("marshal app client %s: %w", client.ID, err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.providerTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put app client %s: %w", client.ID, err)
	}
	return nil
}
