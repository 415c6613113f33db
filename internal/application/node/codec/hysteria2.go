package codec

import (
	"strconv"

	vo "github.com/orris-inc/passage/internal/domain/node/valueobjects"
)

type hysteria2Codec struct{}

func (hysteria2Codec) sealed() {}

func (hysteria2Codec) Protocol() vo.Protocol { return vo.ProtocolHysteria2 }

// telegramAuth is the "{tg_id}:{uuid without dashes}" secret used by
// hysteria2 and naive.
func telegramAuth(t Target) string {
	return strconv.FormatInt(t.TelegramID, 10) + ":" + t.Credential.UUIDWithoutDashes()
}

func (hysteria2Codec) RenderURI(t Target) (string, error) {
	e := resolve(t)

	var q query
	q.add("sni", e.sni)
	q.add("insecure", "1")
	if e.settings.IsSalamander() {
		q.add("obfs", "salamander")
		q.add("obfs-password", e.settings.Obfs.Password)
	}

	return buildURI("hysteria2", telegramAuth(t), e, q), nil
}

func (hysteria2Codec) RenderOutbounds(t Target) ([]Outbound, error) {
	e := resolve(t)

	o := baseOutbound(t, e)
	o.Password = telegramAuth(t)
	o.Insecure = true
	if e.settings.IsSalamander() {
		o.Obfs = &vo.ObfsSettings{Type: "salamander", Password: e.settings.Obfs.Password}
	}
	return []Outbound{o}, nil
}
