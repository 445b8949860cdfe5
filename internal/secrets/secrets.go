// Package secrets wraps the secret store used for signing keys, cookie
// keys, and client secrets. Secret names follow the same per-tenant
// namespace convention as the parameter store.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// Per-tenant secret names, scoped by subdomain via TenantKey.
const (
	NameFederationClientSecret = "federationclientsecret"
	NameCookieKeys             = "cookie-secrets"
	NameJWKS                   = "jwks"
	NameLDAPPassword           = "ldapuserpassword"
	NameAppClientSecret        = "oidcappclientsecret"
)

// Client is the subset of the Secrets Manager API the store uses.
type Client interface {
	CreateSecret(ctx context.Context, in *secretsmanager.CreateSecretInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
	DescribeSecret(ctx context.Context, in *secretsmanager.DescribeSecretInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error)
	GetRandomPassword(ctx context.Context, in *secretsmanager.GetRandomPasswordInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.GetRandomPasswordOutput, error)
}

// Store creates and inspects tenant secrets.
type Store struct {
	client Client
	root   string
}

func New(client Client, root string) *Store {
	return &Store{client: client, root: strings.TrimRight(root, "/")}
}

// TenantKey returns the full name of a tenant-scoped secret.
func (s *Store) TenantKey(subdomain, name string) string {
	return s.root + "/" + subdomain + "/" + name
}

// Create stores a new secret. Creating a secret that already exists is an
// error; federation relies on that to detect an already-bootstrapped tenant.
func (s *Store) Create(ctx context.Context, name, description, value string) error {
	_, err := s.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(name),
		Description:  aws.String(description),
		SecretString: aws.String(value),
	})
	if err != nil {
		return fmt.Errorf("create secret %s: %w", name, err)
	}
	return nil
}

// Exists reports whether a secret with the given name exists.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.DescribeSecret(ctx, &secretsmanager.DescribeSecretInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		var notFound *smtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("describe secret %s: %w", name, err)
	}
	return true, nil
}

// RandomPassword returns a generated password of the given length.
func (s *Store) RandomPassword(ctx context.Context, length int64) (string, error) {
	out, err := s.client.GetRandomPassword(ctx, &secretsmanager.GetRandomPasswordInput{
		PasswordLength: aws.Int64(length),
	})
	if err != nil {
		return "", fmt.Errorf("get random password: %w", err)
	}
	return aws.ToString(out.RandomPassword), nil
}
