package codec

import (
	"fmt"
	"net/url"
	"strings"

	vo "github.com/orris-inc/passage/internal/domain/node/valueobjects"
)

const (
	fingerprintChrome = "chrome"
	flowVision        = "xtls-rprx-vision"
)

// endpoint holds the values every codec derives the same way.
type endpoint struct {
	address   string
	port      int
	transport string
	security  vo.Security
	sni       string
	remark    string
	settings  vo.StreamSettings
}

func resolve(t Target) endpoint {
	settings := t.Inbound.StreamSettings()
	protocol := t.Inbound.Protocol()
	address := vo.ResolveAddress(t.Inbound.Listen(), t.Node.IP())
	transport := settings.Transport(protocol)

	return endpoint{
		address:   address,
		port:      t.Inbound.Port(),
		transport: transport,
		security:  settings.SecurityOrNone(),
		sni:       vo.ResolveSNI(settings.ServerNames(), t.Node.RealitySNI(), address),
		remark:    Remark(t.Node.Name(), t.Node.ID(), protocol, transport),
		settings:  settings,
	}
}

// Remark is the human label shared by URIs and outbound tags.
func Remark(nodeName string, nodeID uint, p vo.Protocol, transport string) string {
	return fmt.Sprintf("%s-%d %s-%s", nodeName, nodeID, p, transport)
}

func (e endpoint) hostPort() string {
	return vo.HostPort(e.address, e.port)
}

// fragment is the percent-encoded remark appended to URIs.
func (e endpoint) fragment() string {
	return "#" + url.PathEscape(e.remark)
}

// shortID prefers the node's short id and falls back to the inbound's first.
func shortID(t Target, settings vo.StreamSettings) string {
	if sid := t.Node.ShortID(); sid != "" {
		return sid
	}
	if settings.RealitySettings != nil {
		for _, sid := range settings.RealitySettings.ShortIDs {
			if sid != "" {
				return sid
			}
		}
	}
	return ""
}

// query keeps parameters in insertion order; clients compare links textually.
type query []string

func (q *query) add(key, value string) {
	*q = append(*q, key+"="+url.QueryEscape(value))
}

func (q *query) addIf(key, value string) {
	if value != "" {
		q.add(key, value)
	}
}

func (q query) String() string {
	return strings.Join(q, "&")
}

// addTransport appends the transport-specific parameters that follow type.
func (q *query) addTransport(e endpoint) {
	switch e.transport {
	case "ws":
		if ws := e.settings.WSSettings; ws != nil {
			q.addIf("path", ws.Path)
			q.addIf("host", ws.Host)
		}
	case "grpc":
		if g := e.settings.GRPCSettings; g != nil {
			q.addIf("serviceName", g.ServiceName)
		}
	}
}

func buildURI(scheme, userinfo string, e endpoint, q query) string {
	return scheme + "://" + userinfo + "@" + e.hostPort() + "?" + q.String() + e.fragment()
}

// baseOutbound fills the fields shared by every stream protocol.
func baseOutbound(t Target, e endpoint) Outbound {
	o := Outbound{
		Tag:       e.remark,
		Protocol:  t.Inbound.Protocol(),
		Server:    e.address,
		Port:      e.port,
		Transport: e.transport,
		Security:  e.security,
		SNI:       e.sni,
	}
	switch e.transport {
	case "ws":
		o.WS = e.settings.WSSettings
	case "grpc":
		o.GRPC = e.settings.GRPCSettings
	}
	return o
}
