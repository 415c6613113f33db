package valueobjects

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StreamSettings is the transport description stored as JSON on an inbound.
type StreamSettings struct {
	Network           string           `json:"network,omitempty"`
	Security          Security         `json:"security,omitempty"`
	TLSSettings       *TLSSettings     `json:"tlsSettings,omitempty"`
	RealitySettings   *RealitySettings `json:"realitySettings,omitempty"`
	WSSettings        *WSSettings      `json:"wsSettings,omitempty"`
	GRPCSettings      *GRPCSettings    `json:"grpcSettings,omitempty"`
	Obfs              *ObfsSettings    `json:"obfs,omitempty"`
	CongestionControl string           `json:"congestion_control,omitempty"`
	WireGuard         *WireGuard       `json:"wireguard,omitempty"`
}

type TLSSettings struct {
	ServerName string   `json:"serverName,omitempty"`
	ALPN       []string `json:"alpn,omitempty"`
}

type RealitySettings struct {
	ServerNames []string `json:"serverNames,omitempty"`
	ShortIDs    []string `json:"shortIds,omitempty"`
	PrivateKey  string   `json:"privateKey,omitempty"`
}

type WSSettings struct {
	Path string `json:"path,omitempty"`
	Host string `json:"host,omitempty"`
}

type GRPCSettings struct {
	ServiceName string `json:"serviceName,omitempty"`
}

type ObfsSettings struct {
	Type     string `json:"type,omitempty"`
	Password string `json:"password,omitempty"`
}

// WireGuard holds the server side of an AmneziaWG inbound. The jitter and
// header fields are handed to clients unchanged.
type WireGuard struct {
	PrivateKey string `json:"private_key,omitempty"`
	MTU        int    `json:"mtu,omitempty"`
	Jc         int    `json:"jc"`
	Jmin       int    `json:"jmin"`
	Jmax       int    `json:"jmax"`
	S1         int    `json:"s1"`
	S2         int    `json:"s2"`
	H1         uint32 `json:"h1"`
	H2         uint32 `json:"h2"`
	H3         uint32 `json:"h3"`
	H4         uint32 `json:"h4"`
}

// ParseStreamSettings decodes raw JSON; empty input yields zero settings.
func ParseStreamSettings(raw []byte) (StreamSettings, error) {
	var s StreamSettings
	if len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return StreamSettings{}, fmt.Errorf("invalid stream settings: %w", err)
	}
	return s, nil
}

func (s StreamSettings) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// Transport returns the configured network or the protocol default.
func (s StreamSettings) Transport(p Protocol) string {
	if n := strings.ToLower(strings.TrimSpace(s.Network)); n != "" {
		return n
	}
	return p.DefaultTransport()
}

// SecurityOrNone normalises an empty security field.
func (s StreamSettings) SecurityOrNone() Security {
	if s.Security == "" {
		return SecurityNone
	}
	return Security(strings.ToLower(string(s.Security)))
}

// ServerNames lists the inbound's own SNI candidates in configured order.
func (s StreamSettings) ServerNames() []string {
	var names []string
	if s.TLSSettings != nil && s.TLSSettings.ServerName != "" {
		names = append(names, s.TLSSettings.ServerName)
	}
	if s.RealitySettings != nil {
		names = append(names, s.RealitySettings.ServerNames...)
	}
	return names
}

func (s StreamSettings) IsSalamander() bool {
	return s.Obfs != nil && strings.EqualFold(s.Obfs.Type, "salamander") && s.Obfs.Password != ""
}

func (s StreamSettings) CongestionControlOrDefault() string {
	if s.CongestionControl == "" {
		return "cubic"
	}
	return s.CongestionControl
}
