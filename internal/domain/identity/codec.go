// Package identity converts a real name plus a 4-digit ID suffix into the address-shaped login
// identifier required by the auth provider, and back.
//
// Every UTF-16 code unit of the source string becomes exactly four lowercase hex digits, so the
// local part is always a valid address local part whatever script the name is written in.
//
// Split relies on a numeric-tail heuristic: if the decoded string ends in four decimal digits
// they are taken as the ID suffix. A name that itself ends in four digits and was encoded
// without a suffix is therefore split incorrectly. This is a known limitation.
package identity

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

const (
	// Domain is the fixed, non-secret domain appended to every encoded identifier.
	Domain = "signup.invalid"

	// PlaceholderName is returned by DisplayName for an absent token.
	PlaceholderName = "Guest"

	// PlaceholderSuffix is returned by IDSuffix when no suffix can be derived.
	PlaceholderSuffix = "0000"

	// SuffixLen is the number of trailing decimal digits that form the ID suffix.
	SuffixLen = 4

	groupLen = 4
)

// Encode hex-encodes each UTF-16 code unit of name as four lowercase hex digits.
// It never fails: input that is not valid UTF-8 is returned unchanged.
func Encode(name string) string {
	if !utf8.ValidString(name) {
		return name
	}
	units := utf16.Encode([]rune(name))
	var b strings.Builder
	b.Grow(len(units) * groupLen)
	for _, u := range units {
		h := strconv.FormatUint(uint64(u), 16)
		for i := len(h); i < groupLen; i++ {
			b.WriteByte('0')
		}
		b.WriteString(h)
	}
	return b.String()
}

// Address returns the login identifier for (name, idSuffix): Encode(name+idSuffix)@Domain.
func Address(name, idSuffix string) string {
	return Encode(name+idSuffix) + "@" + Domain
}

// Decode reverses Encode on the part of token before the first "@".
//
// It never fails. When that part is empty, not a multiple of four characters long, or contains
// anything other than hex digits, it is returned verbatim.
func Decode(token string) string {
	local, _, _ := strings.Cut(token, "@")
	if local == "" || len(local)%groupLen != 0 {
		return local
	}
	units := make([]uint16, 0, len(local)/groupLen)
	for i := 0; i < len(local); i += groupLen {
		chunk := local[i : i+groupLen]
		if !isHex(chunk) {
			return local
		}
		v, err := strconv.ParseUint(chunk, 16, 16)
		if err != nil {
			return local
		}
		units = append(units, uint16(v))
	}
	return string(utf16.Decode(units))
}

// Split decodes token and separates the display name from the ID suffix.
//
// The trailing SuffixLen characters are the suffix only when the decoded string is longer than
// SuffixLen and they are all decimal digits; otherwise the whole string is the display name and
// the suffix is "".
func Split(token string) (displayName, idSuffix string) {
	decoded := []rune(Decode(token))
	if len(decoded) > SuffixLen {
		tail := string(decoded[len(decoded)-SuffixLen:])
		if isDigits(tail) {
			return string(decoded[:len(decoded)-SuffixLen]), tail
		}
	}
	return string(decoded), ""
}

// DisplayName returns the name half of token, or PlaceholderName when token is empty.
func DisplayName(token string) string {
	if token == "" {
		return PlaceholderName
	}
	name, _ := Split(token)
	return name
}

// IDSuffix returns the suffix half of token, or PlaceholderSuffix when there is none.
func IDSuffix(token string) string {
	if token == "" {
		return PlaceholderSuffix
	}
	_, suffix := Split(token)
	if suffix == "" {
		return PlaceholderSuffix
	}
	return suffix
}

// ValidSuffix reports whether s is exactly SuffixLen decimal digits.
func ValidSuffix(s string) bool {
	return len(s) == SuffixLen && isDigits(s)
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
