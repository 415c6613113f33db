package user

import (
	"fmt"
	"time"
)

// User mirrors the external user directory: balance in cents, telegram
// identity, family and referral links.
type User struct {
	id         uint
	telegramID int64
	username   string
	balance    int64
	isBanned   bool
	parentID   *uint
	referrerID *uint
	startedAt  *time.Time
	trialUsed  bool
	createdAt  time.Time
	updatedAt  time.Time
}

func NewUser(telegramID int64, username string, now time.Time) (*User, error) {
	if telegramID == 0 {
		return nil, fmt.Errorf("telegram ID is required")
	}
	return &User{
		telegramID: telegramID,
		username:   username,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

func ReconstructUser(
	id uint,
	telegramID int64,
	username string,
	balance int64,
	isBanned bool,
	parentID, referrerID *uint,
	startedAt *time.Time,
	trialUsed bool,
	createdAt, updatedAt time.Time,
) *User {
	return &User{
		id:         id,
		telegramID: telegramID,
		username:   username,
		balance:    balance,
		isBanned:   isBanned,
		parentID:   parentID,
		referrerID: referrerID,
		startedAt:  startedAt,
		trialUsed:  trialUsed,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

func (u *User) ID() uint              { return u.id }
func (u *User) TelegramID() int64     { return u.telegramID }
func (u *User) Username() string      { return u.username }
func (u *User) Balance() int64        { return u.balance }
func (u *User) IsBanned() bool        { return u.isBanned }
func (u *User) ParentID() *uint       { return u.parentID }
func (u *User) ReferrerID() *uint     { return u.referrerID }
func (u *User) StartedAt() *time.Time { return u.startedAt }
func (u *User) TrialUsed() bool       { return u.trialUsed }
func (u *User) CreatedAt() time.Time  { return u.createdAt }
func (u *User) UpdatedAt() time.Time  { return u.updatedAt }

func (u *User) SetID(id uint) error {
	if u.id != 0 {
		return fmt.Errorf("user ID is already set")
	}
	u.id = id
	return nil
}

// HasStarted reports whether the user ever opened a session with the bot.
func (u *User) HasStarted() bool {
	return u.startedAt != nil
}

func (u *User) MarkStarted(now time.Time) {
	if u.startedAt == nil {
		u.startedAt = &now
		u.updatedAt = now
	}
}

func (u *User) CanAfford(amount int64) bool {
	return u.balance >= amount
}

// EnsureCanPay checks ban status and funds before a debit.
func (u *User) EnsureCanPay(amount int64) error {
	if u.isBanned {
		return ErrUserBanned
	}
	if !u.CanAfford(amount) {
		return ErrInsufficientBalance
	}
	return nil
}

func (u *User) Ban(now time.Time) {
	u.isBanned = true
	u.updatedAt = now
}

// LinkParent attaches u to parentID. Linking to the current parent again is a
// no-op and reports false.
func (u *User) LinkParent(parentID uint, now time.Time) (bool, error) {
	if parentID == u.id {
		return false, ErrSelfReference
	}
	if u.parentID != nil {
		if *u.parentID == parentID {
			return false, nil
		}
		return false, ErrAlreadyLinked
	}
	u.parentID = &parentID
	u.updatedAt = now
	return true, nil
}

func (u *User) UnlinkParent(now time.Time) {
	u.parentID = nil
	u.updatedAt = now
}

func (u *User) SetReferrer(referrerID uint, now time.Time) error {
	if referrerID == u.id {
		return ErrSelfReference
	}
	if u.referrerID == nil {
		u.referrerID = &referrerID
		u.updatedAt = now
	}
	return nil
}

func (u *User) MarkTrialUsed(now time.Time) error {
	if u.trialUsed {
		return ErrTrialAlreadyUsed
	}
	u.trialUsed = true
	u.updatedAt = now
	return nil
}
