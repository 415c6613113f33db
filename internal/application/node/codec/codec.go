// Package codec renders subscriber credentials into protocol connection URIs
// and structured client outbounds. The set of codecs is closed: each protocol
// tag maps to exactly one implementation registered in NewRegistry.
package codec

import (
	"errors"

	"github.com/orris-inc/passage/internal/domain/node"
	vo "github.com/orris-inc/passage/internal/domain/node/valueobjects"
	subvo "github.com/orris-inc/passage/internal/domain/subscription/valueobjects"
)

// ErrNoURIForm is returned by codecs whose protocol has no share-link form.
var ErrNoURIForm = errors.New("protocol has no uri form")

// Target is everything a codec needs to render one inbound for one subscriber.
type Target struct {
	Credential subvo.Credential
	UserID     uint
	TelegramID int64
	Node       *node.Node
	Inbound    *node.Inbound
	// WireGuardSubnet is the first three octets of the client /24, e.g. "10.8.0".
	WireGuardSubnet string
}

// Codec renders a single protocol. The unexported method keeps the set of
// implementations inside this package.
type Codec interface {
	Protocol() vo.Protocol
	RenderURI(t Target) (string, error)
	RenderOutbounds(t Target) ([]Outbound, error)
	sealed()
}

// Outbound is a protocol-neutral client outbound that profile formatters turn
// into sing-box or Clash documents.
type Outbound struct {
	Tag       string
	Protocol  vo.Protocol
	Server    string
	Port      int
	Transport string
	Security  vo.Security

	UUID     string
	Username string
	Password string
	Flow     string

	SNI         string
	ALPN        []string
	Fingerprint string
	Insecure    bool
	Reality     *RealityOptions
	WS          *vo.WSSettings
	GRPC        *vo.GRPCSettings

	Obfs              *vo.ObfsSettings
	CongestionControl string
	WireGuard         *WireGuardOptions
}

type RealityOptions struct {
	PublicKey string
	ShortID   string
}

// WireGuardOptions is the client side of an AmneziaWG peering.
type WireGuardOptions struct {
	PrivateKey    string
	PeerPublicKey string
	LocalAddress  string
	MTU           int
	Jc            int
	Jmin          int
	Jmax          int
	S1            int
	S2            int
	H1            uint32
	H2            uint32
	H3            uint32
	H4            uint32
}

// Registry looks codecs up by inbound protocol tag.
type Registry struct {
	codecs map[vo.Protocol]Codec
}

func NewRegistry() *Registry {
	r := &Registry{codecs: make(map[vo.Protocol]Codec)}
	for _, c := range []Codec{
		vlessCodec{},
		hysteria2Codec{},
		trojanCodec{},
		tuicCodec{},
		naiveCodec{},
		amneziaWGCodec{},
	} {
		r.codecs[c.Protocol()] = c
	}
	return r
}

// Lookup returns the codec for p. Unknown tags report false.
func (r *Registry) Lookup(p vo.Protocol) (Codec, bool) {
	c, ok := r.codecs[p]
	return c, ok
}
