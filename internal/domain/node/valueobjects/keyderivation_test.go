package valueobjects

import (
	"encoding/base64"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveClientPrivateKey_DeterministicAndClamped(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := uuid.NewString()

		first := DeriveClientPrivateKey(id)
		assert.Equal(t, first, DeriveClientPrivateKey(id))

		raw, err := base64.StdEncoding.DecodeString(first)
		require.NoError(t, err)
		require.Len(t, raw, 32)
		assert.Zero(t, raw[0]&0b111)
		assert.Zero(t, raw[31]&0x80)
		assert.Equal(t, byte(0x40), raw[31]&0x40)
	}
}

func TestDeriveClientPrivateKey_KnownVector(t *testing.T) {
	// pins the salt and clamping so a change is caught before clients re-key
	priv := DeriveClientPrivateKey("00000000-0000-0000-0000-000000000000")
	assert.Equal(t, "SDdNeMA0fgwGg0+4GIb6g/QN1BZrNsaHNOuINHGEmEU=", priv)
}

func TestDerivePublicKey_StableAndDistinct(t *testing.T) {
	a := uuid.NewString()
	b := uuid.NewString()

	pubA1, err := DerivePublicKey(DeriveClientPrivateKey(a))
	require.NoError(t, err)
	pubA2, err := DerivePublicKey(DeriveClientPrivateKey(a))
	require.NoError(t, err)
	pubB, err := DerivePublicKey(DeriveClientPrivateKey(b))
	require.NoError(t, err)

	assert.Equal(t, pubA1, pubA2)
	assert.NotEqual(t, pubA1, pubB)
	assert.NotEqual(t, DeriveClientPrivateKey(a), pubA1)
}

func TestDerivePublicKey_RejectsMalformed(t *testing.T) {
	_, err := DerivePublicKey("not base64!!")
	assert.ErrorIs(t, err, ErrKeyDerivation)

	_, err = DerivePublicKey(base64.StdEncoding.EncodeToString(make([]byte, 31)))
	assert.ErrorIs(t, err, ErrKeyDerivation)
}

func TestDerivePublicKey_MatchesRFC7748Vector(t *testing.T) {
	// RFC 7748 section 6.1, Alice
	priv, err := base64.StdEncoding.DecodeString("dwdtCnMYpX08FsFyUbJmRd9ML4frwJkqsXf7pR25LCo=")
	require.NoError(t, err)
	pub, err := DerivePublicKey(base64.StdEncoding.EncodeToString(priv))
	require.NoError(t, err)
	assert.Equal(t, "hSDwCYkwp1R0i33ctD73Wg2/Og0mOBr066SpjqqbTmo=", pub)
}
