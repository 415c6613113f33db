package valueobjects

import (
	"net"
	"strconv"
	"strings"
)

// ResolveAddress returns nodeIP for wildcard listen addresses and the listen
// address otherwise.
func ResolveAddress(listen, nodeIP string) string {
	switch strings.TrimSpace(listen) {
	case "", "::", "0.0.0.0", "[::]":
		return nodeIP
	default:
		return strings.TrimSpace(listen)
	}
}

// HostPort joins host and port, bracketing IPv6 literals.
func HostPort(host string, port int) string {
	return net.JoinHostPort(strings.Trim(host, "[]"), strconv.Itoa(port))
}
