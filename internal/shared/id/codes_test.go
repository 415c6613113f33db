package id

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	giftPattern   = regexp.MustCompile(`^GIFT-[0-9A-F]{8}$`)
	familyPattern = regexp.MustCompile(`^FAMILY-[0-9A-Z]{6}$`)
)

func TestNewGiftCode_Format(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := NewGiftCode("GIFT")
		require.NoError(t, err)
		assert.Regexp(t, giftPattern, code)
	}
}

func TestNewGiftCode_CustomPrefix(t *testing.T) {
	code, err := NewGiftCode("VPN")
	require.NoError(t, err)
	assert.Regexp(t, `^VPN-[0-9A-F]{8}$`, code)

	code, err = NewGiftCode("")
	require.NoError(t, err)
	assert.Regexp(t, giftPattern, code)
}

func TestNewFamilyInviteCode_Format(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := NewFamilyInviteCode()
		require.NoError(t, err)
		assert.Regexp(t, familyPattern, code)
		seen[code] = struct{}{}
	}
	assert.Greater(t, len(seen), 190)
}

func TestGenerate_RejectsBadShape(t *testing.T) {
	_, err := Generate(upperAlnum, 0)
	assert.Error(t, err)
	_, err = Generate("", 4)
	assert.Error(t, err)
}

func TestNormalizeAndSplit(t *testing.T) {
	assert.Equal(t, "GIFT-00AB12CD", NormalizeCode("  gift-00ab12cd \n"))

	prefix, suffix, err := SplitCode("FAMILY-AB12CD")
	require.NoError(t, err)
	assert.Equal(t, "FAMILY", prefix)
	assert.Equal(t, "AB12CD", suffix)

	_, _, err = SplitCode("nodash")
	assert.Error(t, err)
}

func FuzzSplitCode(f *testing.F) {
	for _, seed := range []string{"GIFT-0A1B2C3D", "FAMILY-XYZ123", "", "-", "A-", "-B", "a-b-c"} {
		f.Add(seed)
	}
	f.Fuzz(func(t *testing.T, input string) {
		prefix, suffix, err := SplitCode(input)
		if err != nil {
			return
		}
		if prefix+codeSeparator+suffix != input {
			t.Errorf("SplitCode(%q) does not reassemble: %q %q", input, prefix, suffix)
		}
	})
}
