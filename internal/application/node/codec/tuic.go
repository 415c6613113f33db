package codec

import (
	vo "github.com/orris-inc/passage/internal/domain/node/valueobjects"
)

type tuicCodec struct{}

func (tuicCodec) sealed() {}

func (tuicCodec) Protocol() vo.Protocol { return vo.ProtocolTUIC }

func (tuicCodec) RenderURI(t Target) (string, error) {
	e := resolve(t)

	var q query
	q.add("sni", e.sni)
	q.add("alpn", "h3")
	q.add("congestion_control", e.settings.CongestionControlOrDefault())

	userinfo := t.Credential.UUID() + ":" + t.Credential.UUIDWithoutDashes()
	return buildURI("tuic", userinfo, e, q), nil
}

func (tuicCodec) RenderOutbounds(t Target) ([]Outbound, error) {
	e := resolve(t)

	o := baseOutbound(t, e)
	o.UUID = t.Credential.UUID()
	o.Password = t.Credential.UUIDWithoutDashes()
	o.ALPN = []string{"h3"}
	o.CongestionControl = e.settings.CongestionControlOrDefault()
	return []Outbound{o}, nil
}
