// Package vault defines the key-custody collaborator used by the Identity,
// VC, and VP Engines: a name-addressed registry that can create, rename,
// sign under, and verify against many keys, rather than one signer bound
// to one static key — matching the engine's contract of minting a fresh
// vault key per DID and per verification method.
package vault

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/dc4eu/didengine/pkg/model"
)

// KeyType enumerates the key algorithms a Vault may be asked to create.
// Ed25519 is the only type this engine ever requests, but the enum keeps
// the door open for others.
type KeyType string

// Ed25519 is the sole supported vault key type.
const Ed25519 KeyType = "Ed25519"

// Vault is the key-custody collaborator: it creates and renames named keys,
// signs under them, and verifies signatures without ever exposing private
// key material to the caller.
type Vault interface {
	// CreateKey creates a new key named name and returns its public key
	// bytes. name must not already be in use.
	CreateKey(ctx context.Context, name string, keyType KeyType) ([]byte, error)

	// RenameKey atomically renames the key from to to. from must exist and
	// to must not already be in use.
	RenameKey(ctx context.Context, from, to string) error

	// Sign signs data with the named key and returns a 64-byte Ed25519
	// signature.
	Sign(ctx context.Context, name string, data []byte) ([]byte, error)

	// Verify reports whether sig is a valid signature over data under the
	// named key.
	Verify(ctx context.Context, name string, data, sig []byte) (bool, error)

	// PublicKey returns the public key bytes for the named key.
	PublicKey(ctx context.Context, name string) ([]byte, error)
}

// SoftwareVault is an in-memory Vault implementation: keys live only for
// the process lifetime. It is the default backend (see model.Vault.Backend)
// and the only one this engine ships, serving as the always-available
// baseline beside a hardware-backed alternative named in configuration but
// not implemented.
type SoftwareVault struct {
	mu   sync.RWMutex
	keys map[string]ed25519.PrivateKey
}

// NewSoftwareVault returns an empty SoftwareVault.
func NewSoftwareVault() *SoftwareVault {
	return &SoftwareVault{keys: make(map[string]ed25519.PrivateKey)}
}

func (v *SoftwareVault) CreateKey(_ context.Context, name string, keyType KeyType) ([]byte, error) {
	if keyType != Ed25519 {
		return nil, model.WrapOp("vaultCreateKey", model.ErrInvalidArgument, fmt.Errorf("unsupported key type %q", keyType))
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.keys[name]; exists {
		return nil, model.WrapOp("vaultCreateKey", model.ErrInvalidArgument, fmt.Errorf("key %q already exists", name))
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, model.WrapOp("vaultCreateKey", model.ErrVault, err)
	}

	v.keys[name] = priv
	return []byte(pub), nil
}

func (v *SoftwareVault) RenameKey(_ context.Context, from, to string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	priv, exists := v.keys[from]
	if !exists {
		return model.WrapOp("vaultRenameKey", model.ErrNotFound, fmt.Errorf("key %q does not exist", from))
	}
	if _, exists := v.keys[to]; exists {
		return model.WrapOp("vaultRenameKey", model.ErrInvalidArgument, fmt.Errorf("key %q already exists", to))
	}

	v.keys[to] = priv
	delete(v.keys, from)
	return nil
}

func (v *SoftwareVault) Sign(_ context.Context, name string, data []byte) ([]byte, error) {
	v.mu.RLock()
	priv, exists := v.keys[name]
	v.mu.RUnlock()

	if !exists {
		return nil, model.WrapOp("vaultSign", model.ErrNotFound, fmt.Errorf("key %q does not exist", name))
	}

	return ed25519.Sign(priv, data), nil
}

func (v *SoftwareVault) Verify(_ context.Context, name string, data, sig []byte) (bool, error) {
	v.mu.RLock()
	priv, exists := v.keys[name]
	v.mu.RUnlock()

	if !exists {
		return false, model.WrapOp("vaultVerify", model.ErrNotFound, fmt.Errorf("key %q does not exist", name))
	}

	return ed25519.Verify(priv.Public().(ed25519.PublicKey), data, sig), nil
}

func (v *SoftwareVault) PublicKey(_ context.Context, name string) ([]byte, error) {
	v.mu.RLock()
	priv, exists := v.keys[name]
	v.mu.RUnlock()

	if !exists {
		return nil, model.WrapOp("vaultPublicKey", model.ErrNotFound, fmt.Errorf("key %q does not exist", name))
	}

	return []byte(priv.Public().(ed25519.PublicKey)), nil
}
