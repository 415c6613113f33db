package valueobjects

import "strings"

// placeholderSNIs are decoy defaults left by node setup and never served.
var placeholderSNIs = map[string]bool{
	"":                 true,
	"www.google.com":   true,
	"google.com":       true,
	"drive.google.com": true,
}

func IsPlaceholderSNI(name string) bool {
	return placeholderSNIs[strings.ToLower(strings.TrimSpace(name))]
}

// RealServerNames filters placeholders out of names, keeping order.
func RealServerNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if !IsPlaceholderSNI(n) {
			out = append(out, strings.TrimSpace(n))
		}
	}
	return out
}

// ResolveSNI picks the inbound's first real server name, then the node's
// reality SNI, then the connection address.
func ResolveSNI(inboundNames []string, nodeSNI, address string) string {
	if real := RealServerNames(inboundNames); len(real) > 0 {
		return real[0]
	}
	if !IsPlaceholderSNI(nodeSNI) {
		return strings.TrimSpace(nodeSNI)
	}
	return address
}
