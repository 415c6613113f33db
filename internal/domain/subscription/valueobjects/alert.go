package valueobjects

import "sort"

type AlertKind string

const (
	AlertTraffic80   AlertKind = "traffic_80"
	AlertTraffic90   AlertKind = "traffic_90"
	AlertExpiry3Days AlertKind = "expiry_3_days"
)

// TrafficThresholds is ordered from lowest to highest percentage.
var TrafficThresholds = []struct {
	Percent float64
	Kind    AlertKind
}{
	{80, AlertTraffic80},
	{90, AlertTraffic90},
}

// AlertSet is the set of alert markers already delivered for a subscription.
type AlertSet map[AlertKind]struct{}

func NewAlertSet(kinds ...AlertKind) AlertSet {
	s := make(AlertSet, len(kinds))
	for _, k := range kinds {
		s[k] = struct{}{}
	}
	return s
}

func (s AlertSet) Has(k AlertKind) bool {
	_, ok := s[k]
	return ok
}

// Add inserts k and reports whether it was new.
func (s AlertSet) Add(k AlertKind) bool {
	if s.Has(k) {
		return false
	}
	s[k] = struct{}{}
	return true
}

// Slice returns the kinds in a stable order for persistence.
func (s AlertSet) Slice() []AlertKind {
	out := make([]AlertKind, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
