package valueobjects

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Credential is the proxy identity of one subscription. UUID is the protocol
// secret; AccessToken only addresses the profile download URL.
type Credential struct {
	uuid        string
	accessToken string
}

func NewCredential() Credential {
	return Credential{
		uuid:        uuid.NewString(),
		accessToken: uuid.NewString(),
	}
}

func ReconstructCredential(id, accessToken string) (Credential, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Credential{}, fmt.Errorf("invalid credential uuid: %w", err)
	}
	if _, err := uuid.Parse(accessToken); err != nil {
		return Credential{}, fmt.Errorf("invalid access token: %w", err)
	}
	return Credential{uuid: id, accessToken: accessToken}, nil
}

func (c Credential) UUID() string {
	return c.uuid
}

func (c Credential) AccessToken() string {
	return c.accessToken
}

// UUIDWithoutDashes is the 32-hex-digit form several protocols use as password.
func (c Credential) UUIDWithoutDashes() string {
	return strings.ReplaceAll(c.uuid, "-", "")
}

func (c Credential) IsZero() bool {
	return c.uuid == ""
}
