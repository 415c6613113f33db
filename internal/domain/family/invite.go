package family

import (
	"fmt"
	"time"
)

// Invite is a multi-use code linking child users to one parent.
type Invite struct {
	id        uint
	code      string
	parentID  uint
	maxUses   int
	usedCount int
	expiresAt time.Time
	createdAt time.Time
}

func NewInvite(code string, parentID uint, maxUses int, ttl time.Duration, now time.Time) (*Invite, error) {
	if code == "" {
		return nil, fmt.Errorf("invite code is required")
	}
	if parentID == 0 {
		return nil, fmt.Errorf("parent ID is required")
	}
	if maxUses <= 0 {
		return nil, ErrInvalidMaxUses
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invite ttl must be positive")
	}
	return &Invite{
		code:      code,
		parentID:  parentID,
		maxUses:   maxUses,
		expiresAt: now.Add(ttl),
		createdAt: now,
	}, nil
}

func ReconstructInvite(id uint, code string, parentID uint, maxUses, usedCount int, expiresAt, createdAt time.Time) *Invite {
	return &Invite{
		id:        id,
		code:      code,
		parentID:  parentID,
		maxUses:   maxUses,
		usedCount: usedCount,
		expiresAt: expiresAt,
		createdAt: createdAt,
	}
}

func (i *Invite) ID() uint             { return i.id }
func (i *Invite) Code() string         { return i.code }
func (i *Invite) ParentID() uint       { return i.parentID }
func (i *Invite) MaxUses() int         { return i.maxUses }
func (i *Invite) UsedCount() int       { return i.usedCount }
func (i *Invite) ExpiresAt() time.Time { return i.expiresAt }
func (i *Invite) CreatedAt() time.Time { return i.createdAt }

func (i *Invite) SetID(id uint) error {
	if i.id != 0 {
		return fmt.Errorf("invite ID is already set")
	}
	i.id = id
	return nil
}

// CheckUsable fails when the invite is expired or used up.
func (i *Invite) CheckUsable(now time.Time) error {
	if !i.expiresAt.After(now) {
		return ErrInvalidOrExpiredCode
	}
	if i.usedCount >= i.maxUses {
		return ErrInvalidOrExpiredCode
	}
	return nil
}

func (i *Invite) RemainingUses() int {
	if i.usedCount >= i.maxUses {
		return 0
	}
	return i.maxUses - i.usedCount
}
