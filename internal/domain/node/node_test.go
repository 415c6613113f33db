package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "github.com/orris-inc/passage/internal/domain/node/valueobjects"
)

func TestReconstructNode(t *testing.T) {
	n, err := ReconstructNode(1, "de-1", "1.2.3.4", "", "PUBKEY", "ab12", "cdn.example.com", true)
	require.NoError(t, err)
	assert.Equal(t, "PUBKEY", n.RealityPub())

	_, err = ReconstructNode(2, "empty", "", "", "", "", "", true)
	assert.Error(t, err)
}

func TestReconstructInbound_PortRange(t *testing.T) {
	_, err := ReconstructInbound(1, 1, "vless-in", vo.ProtocolVLESS, "0.0.0.0", 0, vo.StreamSettings{}, true)
	assert.Error(t, err)

	in, err := ReconstructInbound(1, 1, "vless-in", vo.ProtocolVLESS, "0.0.0.0", 443, vo.StreamSettings{Network: "tcp"}, true)
	require.NoError(t, err)
	assert.Equal(t, "tcp", in.StreamSettings().Transport(in.Protocol()))
}
