package codec

import (
	"strconv"

	vo "github.com/orris-inc/passage/internal/domain/node/valueobjects"
)

type naiveCodec struct{}

func (naiveCodec) sealed() {}

func (naiveCodec) Protocol() vo.Protocol { return vo.ProtocolNaive }

func (naiveCodec) RenderURI(t Target) (string, error) {
	e := resolve(t)

	var q query
	q.add("sni", e.sni)
	if e.security.IsReality() {
		q.add("pbk", t.Node.RealityPub())
		q.addIf("sid", shortID(t, e.settings))
	}

	return buildURI("naive+https", telegramAuth(t), e, q), nil
}

func (naiveCodec) RenderOutbounds(t Target) ([]Outbound, error) {
	e := resolve(t)

	o := baseOutbound(t, e)
	o.Username = strconv.FormatInt(t.TelegramID, 10)
	o.Password = t.Credential.UUIDWithoutDashes()
	if e.security.IsReality() {
		o.Reality = &RealityOptions{PublicKey: t.Node.RealityPub(), ShortID: shortID(t, e.settings)}
	}
	return []Outbound{o}, nil
}
