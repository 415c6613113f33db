package usecases

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/orris-inc/passage/internal/application/node/codec"
	vo "github.com/orris-inc/passage/internal/domain/node/valueobjects"
)

const (
	FormatSingBox = "singbox"
	FormatClash   = "clash"
	FormatBase64  = "base64"

	selectorTag = "proxy"
	directTag   = "direct"
)

// Profile is the rendered material a formatter turns into a document.
type Profile struct {
	Outbounds []codec.Outbound
	URIs      []string
}

// uniqueTags renames outbounds whose tag is already taken, first by port and
// then by a counter. Clients refuse documents with duplicate tags.
func uniqueTags(outbounds []codec.Outbound) []codec.Outbound {
	seen := map[string]bool{selectorTag: true, directTag: true}
	for i := range outbounds {
		tag := outbounds[i].Tag
		if seen[tag] {
			tag = fmt.Sprintf("%s (%d)", outbounds[i].Tag, outbounds[i].Port)
		}
		for n := 2; seen[tag]; n++ {
			tag = fmt.Sprintf("%s (%d) #%d", outbounds[i].Tag, outbounds[i].Port, n)
		}
		seen[tag] = true
		outbounds[i].Tag = tag
	}
	return outbounds
}

type ProfileFormatter interface {
	Format(p Profile) (string, error)
	ContentType() string
}

type Base64Formatter struct{}

func NewBase64Formatter() *Base64Formatter {
	return &Base64Formatter{}
}

func (f *Base64Formatter) Format(p Profile) (string, error) {
	content := strings.Join(p.URIs, "\n")
	return base64.StdEncoding.EncodeToString([]byte(content)), nil
}

func (f *Base64Formatter) ContentType() string {
	return "text/plain; charset=utf-8"
}

type SingBoxFormatter struct{}

func NewSingBoxFormatter() *SingBoxFormatter {
	return &SingBoxFormatter{}
}

type singBoxConfig struct {
	Log       singBoxLog        `json:"log"`
	Outbounds []singBoxOutbound `json:"outbounds"`
}

type singBoxLog struct {
	Level string `json:"level"`
}

type singBoxOutbound struct {
	Type              string            `json:"type"`
	Tag               string            `json:"tag"`
	Outbounds         []string          `json:"outbounds,omitempty"`
	Server            string            `json:"server,omitempty"`
	ServerPort        int               `json:"server_port,omitempty"`
	UUID              string            `json:"uuid,omitempty"`
	Username          string            `json:"username,omitempty"`
	Password          string            `json:"password,omitempty"`
	Flow              string            `json:"flow,omitempty"`
	CongestionControl string            `json:"congestion_control,omitempty"`
	TLS               *singBoxTLS       `json:"tls,omitempty"`
	Transport         *singBoxTransport `json:"transport,omitempty"`
	Obfs              *singBoxObfs      `json:"obfs,omitempty"`
	// WireGuard specific fields
	PrivateKey    string          `json:"private_key,omitempty"`
	PeerPublicKey string          `json:"peer_public_key,omitempty"`
	LocalAddress  []string        `json:"local_address,omitempty"`
	MTU           int             `json:"mtu,omitempty"`
	Amnezia       *singBoxAmnezia `json:"amnezia,omitempty"`
}

type singBoxTLS struct {
	Enabled    bool            `json:"enabled"`
	ServerName string          `json:"server_name,omitempty"`
	Insecure   bool            `json:"insecure,omitempty"`
	ALPN       []string        `json:"alpn,omitempty"`
	UTLS       *singBoxUTLS    `json:"utls,omitempty"`
	Reality    *singBoxReality `json:"reality,omitempty"`
}

type singBoxUTLS struct {
	Enabled     bool   `json:"enabled"`
	Fingerprint string `json:"fingerprint"`
}

type singBoxReality struct {
	Enabled   bool   `json:"enabled"`
	PublicKey string `json:"public_key"`
	ShortID   string `json:"short_id,omitempty"`
}

type singBoxTransport struct {
	Type        string            `json:"type"`
	Path        string            `json:"path,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	ServiceName string            `json:"service_name,omitempty"`
}

type singBoxObfs struct {
	Type     string `json:"type"`
	Password string `json:"password"`
}

type singBoxAmnezia struct {
	Jc   int    `json:"jc"`
	Jmin int    `json:"jmin"`
	Jmax int    `json:"jmax"`
	S1   int    `json:"s1"`
	S2   int    `json:"s2"`
	H1   uint32 `json:"h1"`
	H2   uint32 `json:"h2"`
	H3   uint32 `json:"h3"`
	H4   uint32 `json:"h4"`
}

// Format emits a proxy selector first so clients route through it by
// default, then every outbound, then a direct outbound.
func (f *SingBoxFormatter) Format(p Profile) (string, error) {
	tags := make([]string, 0, len(p.Outbounds))
	outbounds := make([]singBoxOutbound, 0, len(p.Outbounds)+2)
	outbounds = append(outbounds, singBoxOutbound{})

	for _, o := range p.Outbounds {
		outbounds = append(outbounds, f.buildOutbound(o))
		tags = append(tags, o.Tag)
	}

	outbounds[0] = singBoxOutbound{Type: "selector", Tag: selectorTag, Outbounds: append(tags, directTag)}
	outbounds = append(outbounds, singBoxOutbound{Type: "direct", Tag: directTag})

	data, err := json.MarshalIndent(singBoxConfig{Log: singBoxLog{Level: "warn"}, Outbounds: outbounds}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal sing-box config: %w", err)
	}
	return string(data), nil
}

func (f *SingBoxFormatter) buildOutbound(o codec.Outbound) singBoxOutbound {
	out := singBoxOutbound{
		Type:       string(o.Protocol),
		Tag:        o.Tag,
		Server:     o.Server,
		ServerPort: o.Port,
		UUID:       o.UUID,
		Username:   o.Username,
		Password:   o.Password,
		Flow:       o.Flow,
	}

	switch o.Protocol {
	case vo.ProtocolVLESS:
		if o.Security != vo.SecurityNone {
			out.TLS = f.buildTLS(o)
		}
	case vo.ProtocolTUIC:
		out.CongestionControl = o.CongestionControl
		out.TLS = f.buildTLS(o)
	case vo.ProtocolHysteria2:
		out.TLS = f.buildTLS(o)
		if o.Obfs != nil {
			out.Obfs = &singBoxObfs{Type: o.Obfs.Type, Password: o.Obfs.Password}
		}
	case vo.ProtocolAmneziaWG:
		out.Type = "wireguard"
		if wg := o.WireGuard; wg != nil {
			out.PrivateKey = wg.PrivateKey
			out.PeerPublicKey = wg.PeerPublicKey
			out.LocalAddress = []string{wg.LocalAddress}
			out.MTU = wg.MTU
			out.Amnezia = &singBoxAmnezia{
				Jc:   wg.Jc,
				Jmin: wg.Jmin,
				Jmax: wg.Jmax,
				S1:   wg.S1,
				S2:   wg.S2,
				H1:   wg.H1,
				H2:   wg.H2,
				H3:   wg.H3,
				H4:   wg.H4,
			}
		}
	default:
		out.TLS = f.buildTLS(o)
	}

	switch {
	case o.WS != nil:
		out.Transport = &singBoxTransport{Type: "ws", Path: o.WS.Path}
		if o.WS.Host != "" {
			out.Transport.Headers = map[string]string{"Host": o.WS.Host}
		}
	case o.GRPC != nil:
		out.Transport = &singBoxTransport{Type: "grpc", ServiceName: o.GRPC.ServiceName}
	}

	return out
}

func (f *SingBoxFormatter) buildTLS(o codec.Outbound) *singBoxTLS {
	tls := &singBoxTLS{
		Enabled:    true,
		ServerName: o.SNI,
		Insecure:   o.Insecure,
		ALPN:       o.ALPN,
	}
	if o.Fingerprint != "" {
		tls.UTLS = &singBoxUTLS{Enabled: true, Fingerprint: o.Fingerprint}
	}
	if o.Reality != nil {
		tls.Reality = &singBoxReality{Enabled: true, PublicKey: o.Reality.PublicKey, ShortID: o.Reality.ShortID}
	}
	return tls
}

func (f *SingBoxFormatter) ContentType() string {
	return "application/json; charset=utf-8"
}

type ClashFormatter struct{}

func NewClashFormatter() *ClashFormatter {
	return &ClashFormatter{}
}

type clashProxy struct {
	Name           string `yaml:"name"`
	Type           string `yaml:"type"`
	Server         string `yaml:"server"`
	Port           int    `yaml:"port"`
	UUID           string `yaml:"uuid,omitempty"`
	Password       string `yaml:"password,omitempty"`
	UDP            bool   `yaml:"udp,omitempty"`
	TLS            bool   `yaml:"tls,omitempty"`
	ServerName     string `yaml:"servername,omitempty"`
	SNI            string `yaml:"sni,omitempty"`
	SkipCertVerify bool   `yaml:"skip-cert-verify,omitempty"`
	Network        string `yaml:"network,omitempty"`
	// VLESS specific fields
	Flow        string            `yaml:"flow,omitempty"`
	Fingerprint string            `yaml:"client-fingerprint,omitempty"`
	RealityOpts *clashRealityOpts `yaml:"reality-opts,omitempty"`
	WSOpts      *clashWSOpts      `yaml:"ws-opts,omitempty"`
	GRPCOpts    *clashGRPCOpts    `yaml:"grpc-opts,omitempty"`
	// Hysteria2 specific fields
	Obfs         string `yaml:"obfs,omitempty"`
	ObfsPassword string `yaml:"obfs-password,omitempty"`
	// TUIC specific fields
	CongestionController string   `yaml:"congestion-controller,omitempty"`
	ALPN                 []string `yaml:"alpn,omitempty"`
	// WireGuard specific fields
	PrivateKey string          `yaml:"private-key,omitempty"`
	PublicKey  string          `yaml:"public-key,omitempty"`
	IP         string          `yaml:"ip,omitempty"`
	MTU        int             `yaml:"mtu,omitempty"`
	Amnezia    *clashAmneziaWG `yaml:"amnezia-wg-option,omitempty"`
}

type clashRealityOpts struct {
	PublicKey string `yaml:"public-key"`
	ShortID   string `yaml:"short-id,omitempty"`
}

type clashWSOpts struct {
	Path    string            `yaml:"path,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
}

type clashGRPCOpts struct {
	GRPCServiceName string `yaml:"grpc-service-name,omitempty"`
}

type clashAmneziaWG struct {
	Jc   int    `yaml:"jc"`
	Jmin int    `yaml:"jmin"`
	Jmax int    `yaml:"jmax"`
	S1   int    `yaml:"s1"`
	S2   int    `yaml:"s2"`
	H1   uint32 `yaml:"h1"`
	H2   uint32 `yaml:"h2"`
	H3   uint32 `yaml:"h3"`
	H4   uint32 `yaml:"h4"`
}

type clashProxyGroup struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Proxies []string `yaml:"proxies"`
}

type clashConfig struct {
	Proxies     []clashProxy      `yaml:"proxies"`
	ProxyGroups []clashProxyGroup `yaml:"proxy-groups"`
	Rules       []string          `yaml:"rules"`
}

// Format skips naive outbounds, which Clash cannot dial.
func (f *ClashFormatter) Format(p Profile) (string, error) {
	config := clashConfig{
		Proxies: make([]clashProxy, 0, len(p.Outbounds)),
		Rules:   []string{"MATCH,PROXY"},
	}

	names := make([]string, 0, len(p.Outbounds))
	for _, o := range p.Outbounds {
		proxy, ok := f.buildProxy(o)
		if !ok {
			continue
		}
		config.Proxies = append(config.Proxies, proxy)
		names = append(names, proxy.Name)
	}
	config.ProxyGroups = []clashProxyGroup{{Name: "PROXY", Type: "select", Proxies: append(names, "DIRECT")}}

	yamlBytes, err := yaml.Marshal(config)
	if err != nil {
		return "", fmt.Errorf("failed to marshal clash config: %w", err)
	}
	return string(yamlBytes), nil
}

func (f *ClashFormatter) buildProxy(o codec.Outbound) (clashProxy, bool) {
	proxy := clashProxy{
		Name:   o.Tag,
		Server: o.Server,
		Port:   o.Port,
		UDP:    true,
	}

	switch o.Protocol {
	case vo.ProtocolVLESS:
		proxy.Type = "vless"
		proxy.UUID = o.UUID
		proxy.Flow = o.Flow
		proxy.Network = o.Transport
		if o.Security != vo.SecurityNone {
			proxy.TLS = true
			proxy.ServerName = o.SNI
			proxy.Fingerprint = o.Fingerprint
		}
		if o.Reality != nil {
			proxy.RealityOpts = &clashRealityOpts{PublicKey: o.Reality.PublicKey, ShortID: o.Reality.ShortID}
		}
	case vo.ProtocolTrojan:
		proxy.Type = "trojan"
		proxy.Password = o.Password
		proxy.SNI = o.SNI
		proxy.Fingerprint = o.Fingerprint
		proxy.Network = o.Transport
	case vo.ProtocolHysteria2:
		proxy.Type = "hysteria2"
		proxy.Password = o.Password
		proxy.SNI = o.SNI
		proxy.SkipCertVerify = o.Insecure
		if o.Obfs != nil {
			proxy.Obfs = o.Obfs.Type
			proxy.ObfsPassword = o.Obfs.Password
		}
	case vo.ProtocolTUIC:
		proxy.Type = "tuic"
		proxy.UUID = o.UUID
		proxy.Password = o.Password
		proxy.SNI = o.SNI
		proxy.ALPN = o.ALPN
		proxy.CongestionController = o.CongestionControl
	case vo.ProtocolAmneziaWG:
		wg := o.WireGuard
		if wg == nil {
			return clashProxy{}, false
		}
		proxy.Type = "wireguard"
		proxy.PrivateKey = wg.PrivateKey
		proxy.PublicKey = wg.PeerPublicKey
		proxy.IP = strings.TrimSuffix(wg.LocalAddress, "/32")
		proxy.MTU = wg.MTU
		proxy.Amnezia = &clashAmneziaWG{
			Jc:   wg.Jc,
			Jmin: wg.Jmin,
			Jmax: wg.Jmax,
			S1:   wg.S1,
			S2:   wg.S2,
			H1:   wg.H1,
			H2:   wg.H2,
			H3:   wg.H3,
			H4:   wg.H4,
		}
	default:
		return clashProxy{}, false
	}

	switch {
	case o.WS != nil:
		proxy.WSOpts = &clashWSOpts{Path: o.WS.Path}
		if o.WS.Host != "" {
			proxy.WSOpts.Headers = map[string]string{"Host": o.WS.Host}
		}
	case o.GRPC != nil:
		proxy.GRPCOpts = &clashGRPCOpts{GRPCServiceName: o.GRPC.ServiceName}
	}

	return proxy, true
}

func (f *ClashFormatter) ContentType() string {
	return "text/yaml; charset=utf-8"
}
