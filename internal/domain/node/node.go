package node

import (
	"fmt"

	vo "github.com/orris-inc/passage/internal/domain/node/valueobjects"
)

// Node is a proxy egress point. Nodes and their inbounds are configuration
// owned by the admin surface and are only read here.
type Node struct {
	id         uint
	name       string
	ip         string
	domain     string
	realityPub string
	shortID    string
	realitySNI string
	isActive   bool
}

func ReconstructNode(id uint, name, ip, domain, realityPub, shortID, realitySNI string, isActive bool) (*Node, error) {
	if id == 0 {
		return nil, fmt.Errorf("node ID cannot be zero")
	}
	if ip == "" {
		return nil, fmt.Errorf("node %d has no IP", id)
	}
	return &Node{
		id:         id,
		name:       name,
		ip:         ip,
		domain:     domain,
		realityPub: realityPub,
		shortID:    shortID,
		realitySNI: realitySNI,
		isActive:   isActive,
	}, nil
}

func (n *Node) ID() uint           { return n.id }
func (n *Node) Name() string       { return n.name }
func (n *Node) IP() string         { return n.ip }
func (n *Node) Domain() string     { return n.domain }
func (n *Node) RealityPub() string { return n.realityPub }
func (n *Node) ShortID() string    { return n.shortID }
func (n *Node) RealitySNI() string { return n.realitySNI }
func (n *Node) IsActive() bool     { return n.isActive }

// Inbound is one listening protocol endpoint on a node.
type Inbound struct {
	id             uint
	nodeID         uint
	tag            string
	protocol       vo.Protocol
	listen         string
	port           int
	streamSettings vo.StreamSettings
	isEnabled      bool
}

func ReconstructInbound(id, nodeID uint, tag string, protocol vo.Protocol, listen string, port int, settings vo.StreamSettings, isEnabled bool) (*Inbound, error) {
	if id == 0 || nodeID == 0 {
		return nil, fmt.Errorf("inbound requires id and node id")
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("inbound %d has invalid port %d", id, port)
	}
	return &Inbound{
		id:             id,
		nodeID:         nodeID,
		tag:            tag,
		protocol:       protocol,
		listen:         listen,
		port:           port,
		streamSettings: settings,
		isEnabled:      isEnabled,
	}, nil
}

func (i *Inbound) ID() uint                          { return i.id }
func (i *Inbound) NodeID() uint                      { return i.nodeID }
func (i *Inbound) Tag() string                       { return i.tag }
func (i *Inbound) Protocol() vo.Protocol             { return i.protocol }
func (i *Inbound) Listen() string                    { return i.listen }
func (i *Inbound) Port() int                         { return i.port }
func (i *Inbound) StreamSettings() vo.StreamSettings { return i.streamSettings }
func (i *Inbound) IsEnabled() bool                   { return i.isEnabled }

// NodeWithInbounds groups a node with its enabled inbounds for rendering.
type NodeWithInbounds struct {
	Node     *Node
	Inbounds []*Inbound
}
