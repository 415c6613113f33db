package valueobjects

// Origin records which ledger path created a subscription. The free-text note
// is never used as a tag.
type Origin string

const (
	OriginUserPurchase   Origin = "user_purchase"
	OriginFamilySync     Origin = "family_sync"
	OriginAdminGrant     Origin = "admin_grant"
	OriginGiftRedemption Origin = "gift_redemption"
	OriginTrial          Origin = "trial"
)

func (o Origin) String() string {
	return string(o)
}

func (o Origin) IsFamily() bool {
	return o == OriginFamilySync
}

var ValidOrigins = map[Origin]bool{
	OriginUserPurchase:   true,
	OriginFamilySync:     true,
	OriginAdminGrant:     true,
	OriginGiftRedemption: true,
	OriginTrial:          true,
}
