package telegram

import (
	"fmt"
	"time"

	"github.com/orris-inc/passage/internal/application/subscription/usecases"
	vo "github.com/orris-inc/passage/internal/domain/subscription/valueobjects"
	"github.com/orris-inc/passage/internal/shared/biztime"
)

const dateLayout = "2006-01-02 15:04"

func formatDate(t time.Time) string {
	return t.In(biztime.Location()).Format(dateLayout)
}

// formatAmount renders a balance in cents.
func formatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// BuildRenewalMessage builds the auto-renewal outcome message (HTML format).
// Failed renewals have no user-facing message.
func BuildRenewalMessage(outcome usecases.RenewalOutcome) (string, bool) {
	switch outcome.Status {
	case usecases.RenewalSuccess:
		return fmt.Sprintf(`✅ <b>Subscription renewed</b>

Subscription: <code>#%d</code>
Charged: %s
Valid until: %s`,
			outcome.SubscriptionID,
			formatAmount(outcome.Amount),
			formatDate(outcome.ExpiresAt),
		), true
	case usecases.RenewalInsufficientFunds:
		return fmt.Sprintf(`⚠️ <b>Auto-renewal failed</b>

Subscription <code>#%d</code> could not be renewed: the balance does not cover %s.
It expires at %s unless you top up.`,
			outcome.SubscriptionID,
			formatAmount(outcome.Amount),
			formatDate(outcome.ExpiresAt),
		), true
	default:
		return "", false
	}
}

// BuildAlertMessage builds a traffic or expiry alert message (HTML format).
func BuildAlertMessage(alert usecases.DueAlert) (string, bool) {
	switch alert.Kind {
	case vo.AlertTraffic80, vo.AlertTraffic90:
		percent := 80
		if alert.Kind == vo.AlertTraffic90 {
			percent = 90
		}
		return fmt.Sprintf(`📊 <b>Traffic warning</b>

Subscription <code>#%d</code> has used %d%% of its traffic.`,
			alert.SubscriptionID,
			percent,
		), true
	case vo.AlertExpiry3Days:
		return fmt.Sprintf(`⏰ <b>Subscription expiring soon</b>

Subscription <code>#%d</code> expires at %s.`,
			alert.SubscriptionID,
			formatDate(alert.ExpiresAt),
		), true
	default:
		return "", false
	}
}
