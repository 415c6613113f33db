package codec

import (
	vo "github.com/orris-inc/passage/internal/domain/node/valueobjects"
)

type trojanCodec struct{}

func (trojanCodec) sealed() {}

func (trojanCodec) Protocol() vo.Protocol { return vo.ProtocolTrojan }

func (trojanCodec) RenderURI(t Target) (string, error) {
	e := resolve(t)

	var q query
	q.add("security", vo.SecurityTLS.String())
	q.add("sni", e.sni)
	q.add("fp", fingerprintChrome)
	q.add("type", e.transport)
	q.addTransport(e)

	return buildURI("trojan", t.Credential.UUID(), e, q), nil
}

func (trojanCodec) RenderOutbounds(t Target) ([]Outbound, error) {
	e := resolve(t)

	o := baseOutbound(t, e)
	o.Security = vo.SecurityTLS
	o.Password = t.Credential.UUID()
	o.Fingerprint = fingerprintChrome
	return []Outbound{o}, nil
}
