// Package id generates the human-facing voucher codes.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

const (
	// upperAlnum is the alphabet of family invite suffixes.
	upperAlnum = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	DefaultGiftPrefix = "GIFT"
	FamilyPrefix      = "FAMILY"

	giftSuffixBytes = 4
	familySuffixLen = 6
	codeSeparator   = "-"
)

// Generate returns a random string of length characters drawn from alphabet.
func Generate(alphabet string, length int) (string, error) {
	if length <= 0 || alphabet == "" {
		return "", fmt.Errorf("invalid code shape: length=%d alphabet=%q", length, alphabet)
	}

	n := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		idx, err := rand.Int(rand.Reader, n)
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out), nil
}

// NewGiftCode returns "{PREFIX}-{8 uppercase hex}".
func NewGiftCode(prefix string) (string, error) {
	if prefix == "" {
		prefix = DefaultGiftPrefix
	}
	buf := make([]byte, giftSuffixBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return prefix + codeSeparator + strings.ToUpper(hex.EncodeToString(buf)), nil
}

// NewFamilyInviteCode returns "FAMILY-{6 uppercase alphanumerics}".
func NewFamilyInviteCode() (string, error) {
	suffix, err := Generate(upperAlnum, familySuffixLen)
	if err != nil {
		return "", err
	}
	return FamilyPrefix + codeSeparator + suffix, nil
}

// NormalizeCode trims and upper-cases user input before lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// SplitCode separates a code into prefix and suffix at the first separator.
func SplitCode(code string) (prefix, suffix string, err error) {
	parts := strings.SplitN(code, codeSeparator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid code format: %q", code)
	}
	return parts[0], parts[1], nil
}
