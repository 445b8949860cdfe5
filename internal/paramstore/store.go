// Package paramstore wraps the parameter store behind the namespace
// convention shared by every component: global keys live directly under a
// fixed root, per-tenant keys under /{root}/{subdomain}/, and
// per-pipeline-execution keys under /{root}/{executionID}/. Callers never
// build raw parameter names themselves, which keeps the three namespaces
// from colliding.
package paramstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// ErrNotFound is returned when a parameter does not exist.
var ErrNotFound = errors.New("parameter not found")

// Client is the subset of the SSM API the store uses.
type Client interface {
	GetParameter(ctx context.Context, in *ssm.GetParameterInput, opts ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	GetParameters(ctx context.Context, in *ssm.GetParametersInput, opts ...func(*ssm.Options)) (*ssm.GetParametersOutput, error)
	PutParameter(ctx context.Context, in *ssm.PutParameterInput, opts ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
	DeleteParameters(ctx context.Context, in *ssm.DeleteParametersInput, opts ...func(*ssm.Options)) (*ssm.DeleteParametersOutput, error)
}

// Store reads and writes namespaced parameters.
type Store struct {
	client Client
	root   string
}

func New(client Client, root string) *Store {
	return &Store{client: client, root: strings.TrimRight(root, "/")}
}

// GlobalKey returns the full name of a global parameter.
func (s *Store) GlobalKey(name string) string {
	return s.root + "/" + name
}

// ScopedKey returns the full name of a parameter scoped to a tenant
// subdomain or a pipeline execution id.
func (s *Store) ScopedKey(scope, name string) string {
	return s.root + "/" + scope + "/" + name
}

// Get returns a single parameter value. Missing parameters yield ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	out, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{Name: aws.String(key)})
	if err != nil {
		var notFound *ssmtypes.ParameterNotFound
		if errors.As(err, &notFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get parameter %s: %w", key, err)
	}
	return aws.ToString(out.Parameter.Value), nil
}

// Values is a batch read result. Lookups match on the trailing name
// segment so callers can ask for "hostedzoneid" regardless of namespace.
type Values map[string]string

// Value returns the value whose key ends in name, or "" if absent.
func (v Values) Value(name string) string {
	for key, value := range v {
		if strings.HasSuffix(key, "/"+name) {
			return value
		}
	}
	return ""
}

// GetMany fetches several parameters in one call. Missing keys are simply
// absent from the result; the caller decides whether that is an error.
func (s *Store) GetMany(ctx context.Context, keys ...string) (Values, error) {
	out, err := s.client.GetParameters(ctx, &ssm.GetParametersInput{Names: keys})
	if err != nil {
		return nil, fmt.Errorf("get parameters: %w", err)
	}
	values := make(Values, len(out.Parameters))
	for _, p := range out.Parameters {
		values[aws.ToString(p.Name)] = aws.ToString(p.Value)
	}
	return values, nil
}

// Put writes a parameter, overwriting any existing value.
func (s *Store) Put(ctx context.Context, key, value, description string) error {
	_, err := s.client.PutParameter(ctx, &ssm.PutParameterInput{
		Name:        aws.String(key),
		Value:       aws.String(value),
		Description: aws.String(description),
		Type:        ssmtypes.ParameterTypeString,
		Tier:        ssmtypes.ParameterTierStandard,
		Overwrite:   aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("put parameter %s: %w", key, err)
	}
	return nil
}

// Delete removes parameters. Keys that are already gone are not an error.
func (s *Store) Delete(ctx context.Context, keys ...string) error {
	_, err := s.client.DeleteParameters(ctx, &ssm.DeleteParametersInput{Names: keys})
	if err != nil {
		return fmt.Errorf("delete parameters: %w", err)
	}
	return nil
}
