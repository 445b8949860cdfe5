// Package jwks generates the per-tenant signing key set consumed by the
// tenant's OIDC backing provider.
package jwks

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/edvin/identity/internal/platform"
)

// The provider negotiates the signing algorithm per client, so every
// tenant key set always carries all four key types.
var curves = []elliptic.Curve{elliptic.P256(), elliptic.P384(), elliptic.P521()}

const rsaBits = 1024

// Generate returns a fresh key set with EC P-256, P-384, P-521 and RSA
// keys, private material included.
func Generate() (jwk.Set, error) {
	set := jwk.NewSet()

	for _, curve := range curves {
		raw, err := ecdsa.GenerateKey(curve, rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("generate EC %s key: %w", curve.Params().Name, err)
		}
		if err := addKey(set, raw); err != nil {
			return nil, err
		}
	}

	raw, err := rsa.GenerateKey(rand.Reader, rsaBits)
	if err != nil {
		return nil, fmt.Errorf("generate RSA key: %w", err)
	}
	if err := addKey(set, raw); err != nil {
		return nil, err
	}

	return set, nil
}

// GenerateJSON returns a fresh key set serialized for secret storage.
func GenerateJSON() (string, error) {
	set, err := Generate()
	if err != nil {
		return "", err
	}
	raw, err := json.Marshal(set)
	if err != nil {
		return "", fmt.Errorf("marshal key set: %w", err)
	}
	return string(raw), nil
}

func addKey(set jwk.Set, raw any) error {
	key, err := jwk.FromRaw(raw)
	if err != nil {
		return fmt.Errorf("wrap key: %w", err)
	}
	if err := key.Set(jwk.KeyIDKey, platform.NewID()); err != nil {
		return fmt.Errorf("set key id: %w", err)
	}
	if err := set.AddKey(key); err != nil {
		return fmt.Errorf("add key to set: %w", err)
	}
	return nil
}
