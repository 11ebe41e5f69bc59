package identity

import (
	"strings"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncode_KnownValues(t *testing.T) {
	assert.Equal(t, "0041", Encode("A"))
	assert.Equal(t, "00610062", Encode("ab"))
	assert.Equal(t, "738b5c0f660e", Encode("王小明"))
	// Supplementary-plane characters occupy two UTF-16 code units.
	assert.Equal(t, "d83dde00", Encode("😀"))
	assert.Equal(t, "", Encode(""))
}

func TestEncode_InvalidUTF8ReturnedUnchanged(t *testing.T) {
	in := string([]byte{0xff, 0xfe, 'a'})
	assert.Equal(t, in, Encode(in))
}

func TestAddress(t *testing.T) {
	assert.Equal(t, "00410031003200330034@signup.invalid", Address("A", "1234"))
	assert.True(t, strings.HasSuffix(Address("王小明", "0042"), "@"+Domain))
}

func TestDecode_FallsBackToLocalPart(t *testing.T) {
	cases := []struct {
		name  string
		token string
		want  string
	}{
		{name: "empty", token: "", want: ""},
		{name: "only domain", token: "@signup.invalid", want: ""},
		{name: "not a multiple of four", token: "00410@signup.invalid", want: "00410"},
		{name: "non-hex", token: "zzzz@signup.invalid", want: "zzzz"},
		{name: "plain address", token: "alice@example.com", want: "alice"},
		{name: "no marker", token: "0041", want: "A"},
		{name: "upper-case hex", token: "004A@x", want: "J"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decode(tc.token))
		})
	}
}

func TestSplit(t *testing.T) {
	name, suffix := Split(Address("王小明", "0042"))
	assert.Equal(t, "王小明", name)
	assert.Equal(t, "0042", suffix)

	// No numeric tail: the whole string is the name.
	name, suffix = Split(Encode("Alice") + "@" + Domain)
	assert.Equal(t, "Alice", name)
	assert.Equal(t, "", suffix)

	// Exactly four digits is not longer than the suffix length.
	name, suffix = Split(Encode("1234") + "@" + Domain)
	assert.Equal(t, "1234", name)
	assert.Equal(t, "", suffix)

	// Known limitation: a name ending in four digits is read as name+suffix.
	name, suffix = Split(Encode("R2D2000") + "@" + Domain)
	assert.Equal(t, "R2D", name)
	assert.Equal(t, "2000", suffix)
}

func TestAccessors_Placeholders(t *testing.T) {
	assert.Equal(t, PlaceholderSuffix, IDSuffix(""))
	assert.Equal(t, "0000", IDSuffix(""))
	assert.Equal(t, PlaceholderName, DisplayName(""))
	assert.Equal(t, PlaceholderSuffix, IDSuffix(Encode("Alice")+"@"+Domain))

	tok := Address("Bob", "7788")
	assert.Equal(t, "Bob", DisplayName(tok))
	assert.Equal(t, "7788", IDSuffix(tok))
}

func TestValidSuffix(t *testing.T) {
	assert.True(t, ValidSuffix("0000"))
	assert.True(t, ValidSuffix("1234"))
	assert.False(t, ValidSuffix("123"))
	assert.False(t, ValidSuffix("12345"))
	assert.False(t, ValidSuffix("12a4"))
	assert.False(t, ValidSuffix("+123"))
}

func TestProperty_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		require.Equal(t, s, Decode(Encode(s)))
		require.Equal(t, s, Decode(Encode(s)+"@"+Domain))
	})
}

func TestProperty_EncodedShape(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "s")
		enc := Encode(s)
		units := utf16.Encode([]rune(s))
		require.Len(t, enc, 4*len(units))
		require.True(t, isHex(enc), "encoded %q contains non-hex characters", enc)

		addr := Address(s, "")
		require.True(t, strings.HasSuffix(addr, "@"+Domain))
		require.True(t, isHex(strings.TrimSuffix(addr, "@"+Domain)))
	})
}

func TestProperty_SplitRecoversNameAndSuffix(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := rapid.StringMatching(`[A-Za-z\x{4e00}-\x{9fa5} ]{1,12}[A-Za-z\x{4e00}-\x{9fa5}]`).Draw(t, "name")
		suffix := rapid.StringMatching(`[0-9]{4}`).Draw(t, "suffix")

		gotName, gotSuffix := Split(Address(name, suffix))
		require.Equal(t, name, gotName)
		require.Equal(t, suffix, gotSuffix)
	})
}

func TestProperty_DecodeNeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		token := rapid.String().Draw(t, "token")
		_ = Decode(token)
		_, _ = Split(token)
		_ = DisplayName(token)
		_ = IDSuffix(token)
	})
}
