package codec

import (
	"fmt"

	vo "github.com/orris-inc/passage/internal/domain/node/valueobjects"
)

const defaultWireGuardMTU = 1280

type amneziaWGCodec struct{}

func (amneziaWGCodec) sealed() {}

func (amneziaWGCodec) Protocol() vo.Protocol { return vo.ProtocolAmneziaWG }

func (amneziaWGCodec) RenderURI(Target) (string, error) {
	return "", ErrNoURIForm
}

// RenderOutbounds derives the client key from the credential and exposes only
// the public half of the server key.
func (amneziaWGCodec) RenderOutbounds(t Target) ([]Outbound, error) {
	e := resolve(t)
	wg := e.settings.WireGuard
	if wg == nil {
		return nil, fmt.Errorf("%w: inbound %d has no wireguard settings", vo.ErrKeyDerivation, t.Inbound.ID())
	}

	peerPublic, err := vo.DerivePublicKey(wg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("inbound %d: %w", t.Inbound.ID(), err)
	}

	mtu := wg.MTU
	if mtu == 0 {
		mtu = defaultWireGuardMTU
	}

	o := baseOutbound(t, e)
	o.SNI = ""
	o.WireGuard = &WireGuardOptions{
		PrivateKey:    vo.DeriveClientPrivateKey(t.Credential.UUID()),
		PeerPublicKey: peerPublic,
		LocalAddress:  ClientAddress(t.WireGuardSubnet, t.UserID),
		MTU:           mtu,
		Jc:            wg.Jc,
		Jmin:          wg.Jmin,
		Jmax:          wg.Jmax,
		S1:            wg.S1,
		S2:            wg.S2,
		H1:            wg.H1,
		H2:            wg.H2,
		H3:            wg.H3,
		H4:            wg.H4,
	}
	return []Outbound{o}, nil
}

// ClientAddress places userID inside subnet.0/24, skipping .0 and .1.
func ClientAddress(subnet string, userID uint) string {
	return fmt.Sprintf("%s.%d/32", subnet, userID%250+2)
}
