package valueobjects

// Protocol is the inbound protocol tag as stored in node configuration.
type Protocol string

const (
	ProtocolVLESS     Protocol = "vless"
	ProtocolHysteria2 Protocol = "hysteria2"
	ProtocolTrojan    Protocol = "trojan"
	ProtocolTUIC      Protocol = "tuic"
	ProtocolNaive     Protocol = "naive"
	ProtocolAmneziaWG Protocol = "amneziawg"
)

var knownProtocols = map[Protocol]bool{
	ProtocolVLESS:     true,
	ProtocolHysteria2: true,
	ProtocolTrojan:    true,
	ProtocolTUIC:      true,
	ProtocolNaive:     true,
	ProtocolAmneziaWG: true,
}

func (p Protocol) String() string {
	return string(p)
}

// IsKnown reports whether a codec exists for p. Unknown tags are skipped by
// renderers rather than treated as errors.
func (p Protocol) IsKnown() bool {
	return knownProtocols[p]
}

// DefaultTransport is the transport label used when stream settings carry no network.
func (p Protocol) DefaultTransport() string {
	switch p {
	case ProtocolHysteria2, ProtocolTUIC, ProtocolAmneziaWG:
		return "udp"
	default:
		return "tcp"
	}
}
