package codec

import (
	vo "github.com/orris-inc/passage/internal/domain/node/valueobjects"
)

type vlessCodec struct{}

func (vlessCodec) sealed() {}

func (vlessCodec) Protocol() vo.Protocol { return vo.ProtocolVLESS }

func (vlessCodec) RenderURI(t Target) (string, error) {
	e := resolve(t)

	var q query
	q.add("security", e.security.String())
	switch e.security {
	case vo.SecurityReality:
		q.add("sni", e.sni)
		q.add("pbk", t.Node.RealityPub())
		q.addIf("sid", shortID(t, e.settings))
		q.add("fp", fingerprintChrome)
	case vo.SecurityTLS:
		q.add("sni", e.sni)
	}
	q.add("type", e.transport)
	q.addTransport(e)
	if e.transport == "tcp" {
		q.add("headerType", "none")
		if e.security.IsReality() {
			q.add("flow", flowVision)
		}
	}

	return buildURI("vless", t.Credential.UUID(), e, q), nil
}

// RenderOutbounds fans a Reality inbound with several real server names out
// into one outbound per name so clients can fail over between them.
func (vlessCodec) RenderOutbounds(t Target) ([]Outbound, error) {
	e := resolve(t)

	o := baseOutbound(t, e)
	o.UUID = t.Credential.UUID()

	switch e.security {
	case vo.SecurityReality:
		o.Fingerprint = fingerprintChrome
		o.Reality = &RealityOptions{PublicKey: t.Node.RealityPub(), ShortID: shortID(t, e.settings)}
		if e.transport == "tcp" {
			o.Flow = flowVision
		}
	case vo.SecurityTLS:
		o.Fingerprint = fingerprintChrome
	}

	if !e.security.IsReality() || e.settings.RealitySettings == nil {
		return []Outbound{o}, nil
	}
	names := vo.RealServerNames(e.settings.RealitySettings.ServerNames)
	if len(names) < 2 {
		return []Outbound{o}, nil
	}

	out := make([]Outbound, 0, len(names))
	for _, sni := range names {
		fan := o
		fan.SNI = sni
		fan.Tag = o.Tag + " (" + sni + ")"
		out = append(out, fan)
	}
	return out, nil
}
