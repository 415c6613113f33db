package device

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// IPRecord is the last sighting of one client address for a subscription.
type IPRecord struct {
	subscriptionID uint
	clientIP       string
	userAgent      string
	lastSeenAt     time.Time
}

const maxUserAgentLen = 255

func NewIPRecord(subscriptionID uint, clientIP, userAgent string, seenAt time.Time) (*IPRecord, error) {
	if subscriptionID == 0 {
		return nil, fmt.Errorf("subscription ID is required")
	}
	if !IsRecordableIP(clientIP) {
		return nil, fmt.Errorf("client IP %q cannot be recorded", clientIP)
	}
	return &IPRecord{
		subscriptionID: subscriptionID,
		clientIP:       strings.TrimSpace(clientIP),
		userAgent:      truncateUserAgent(userAgent),
		lastSeenAt:     seenAt,
	}, nil
}

// truncateUserAgent caps ua at maxUserAgentLen bytes without splitting a
// multi-byte character and drops invalid UTF-8 sequences.
func truncateUserAgent(ua string) string {
	ua = strings.ToValidUTF8(ua, "")
	if len(ua) <= maxUserAgentLen {
		return ua
	}
	n := maxUserAgentLen
	for n > 0 && !utf8.RuneStart(ua[n]) {
		n--
	}
	return ua[:n]
}

func ReconstructIPRecord(subscriptionID uint, clientIP, userAgent string, lastSeenAt time.Time) *IPRecord {
	return &IPRecord{
		subscriptionID: subscriptionID,
		clientIP:       clientIP,
		userAgent:      userAgent,
		lastSeenAt:     lastSeenAt,
	}
}

func (r *IPRecord) SubscriptionID() uint  { return r.subscriptionID }
func (r *IPRecord) ClientIP() string      { return r.clientIP }
func (r *IPRecord) UserAgent() string     { return r.userAgent }
func (r *IPRecord) LastSeenAt() time.Time { return r.lastSeenAt }

// IsRecordableIP rejects the empty and unspecified addresses.
func IsRecordableIP(ip string) bool {
	ip = strings.TrimSpace(ip)
	return ip != "" && ip != "0.0.0.0"
}
