package valueobjects

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/curve25519"
)

// clientKeySalt is part of the persisted derivation. Changing it silently
// re-keys every issued client.
const clientKeySalt = "amneziawg-key-salt"

var ErrKeyDerivation = errors.New("key derivation failed")

// DeriveClientPrivateKey maps a credential UUID to a clamped X25519 private
// key, base64 (standard) encoded. The same UUID always yields the same key.
func DeriveClientPrivateKey(credentialUUID string) string {
	key := sha256.Sum256([]byte(credentialUUID + clientKeySalt))
	clamp(&key)
	return base64.StdEncoding.EncodeToString(key[:])
}

// DerivePublicKey computes the X25519 public key for a base64 private key.
func DerivePublicKey(privateKeyB64 string) (string, error) {
	priv, err := base64.StdEncoding.DecodeString(privateKeyB64)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	if len(priv) != curve25519.ScalarSize {
		return "", fmt.Errorf("%w: private key is %d bytes, want %d", ErrKeyDerivation, len(priv), curve25519.ScalarSize)
	}

	pub, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrKeyDerivation, err)
	}
	return base64.StdEncoding.EncodeToString(pub), nil
}

// clamp applies RFC 7748 scalar clamping.
func clamp(k *[32]byte) {
	k[0] &= 248
	k[31] &= 127
	k[31] |= 64
}
