package family

import "errors"

var (
	ErrInviteNotFound       = errors.New("family invite not found")
	ErrInvalidOrExpiredCode = errors.New("invite code is invalid or expired")
	ErrInvalidMaxUses       = errors.New("max uses must be positive")
	ErrNotAMember           = errors.New("user is not a member of this family")
)
