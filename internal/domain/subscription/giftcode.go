package subscription

import (
	"fmt"
	"time"
)

// GiftCode is a single-use voucher for a plan and a number of days.
type GiftCode struct {
	id           uint
	code         string
	planID       uint
	durationDays int
	createdBy    uint
	redeemedBy   *uint
	redeemedAt   *time.Time
	isActive     bool
	expiresAt    *time.Time
	createdAt    time.Time
}

func NewGiftCode(code string, planID uint, durationDays int, createdBy uint, now time.Time) (*GiftCode, error) {
	if code == "" {
		return nil, fmt.Errorf("gift code is required")
	}
	if planID == 0 {
		return nil, fmt.Errorf("plan ID is required")
	}
	if durationDays <= 0 {
		return nil, ErrInvalidDuration
	}
	return &GiftCode{
		code:         code,
		planID:       planID,
		durationDays: durationDays,
		createdBy:    createdBy,
		isActive:     true,
		createdAt:    now,
	}, nil
}

func ReconstructGiftCode(
	id uint,
	code string,
	planID uint,
	durationDays int,
	createdBy uint,
	redeemedBy *uint,
	redeemedAt *time.Time,
	isActive bool,
	expiresAt *time.Time,
	createdAt time.Time,
) *GiftCode {
	return &GiftCode{
		id:           id,
		code:         code,
		planID:       planID,
		durationDays: durationDays,
		createdBy:    createdBy,
		redeemedBy:   redeemedBy,
		redeemedAt:   redeemedAt,
		isActive:     isActive,
		expiresAt:    expiresAt,
		createdAt:    createdAt,
	}
}

func (g *GiftCode) ID() uint               { return g.id }
func (g *GiftCode) Code() string           { return g.code }
func (g *GiftCode) PlanID() uint           { return g.planID }
func (g *GiftCode) DurationDays() int      { return g.durationDays }
func (g *GiftCode) CreatedBy() uint        { return g.createdBy }
func (g *GiftCode) RedeemedBy() *uint      { return g.redeemedBy }
func (g *GiftCode) RedeemedAt() *time.Time { return g.redeemedAt }
func (g *GiftCode) IsActive() bool         { return g.isActive }
func (g *GiftCode) ExpiresAt() *time.Time  { return g.expiresAt }
func (g *GiftCode) CreatedAt() time.Time   { return g.createdAt }

func (g *GiftCode) SetID(id uint) error {
	if g.id != 0 {
		return fmt.Errorf("gift code ID is already set")
	}
	g.id = id
	return nil
}

func (g *GiftCode) SetExpiry(at time.Time) {
	g.expiresAt = &at
}

func (g *GiftCode) IsRedeemed() bool {
	return g.redeemedAt != nil
}

// CheckRedeemable reports why the code cannot be redeemed at now, if it cannot.
func (g *GiftCode) CheckRedeemable(now time.Time) error {
	if !g.isActive {
		return ErrInvalidOrExpiredCode
	}
	if g.expiresAt != nil && !g.expiresAt.After(now) {
		return ErrInvalidOrExpiredCode
	}
	if g.IsRedeemed() {
		return ErrAlreadyRedeemed
	}
	return nil
}

func (g *GiftCode) MarkRedeemed(userID uint, now time.Time) error {
	if err := g.CheckRedeemable(now); err != nil {
		return err
	}
	g.redeemedBy = &userID
	g.redeemedAt = &now
	return nil
}
