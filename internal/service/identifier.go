package service

import (
	"math/rand"
	"strconv"
	"strings"
	"unicode"
)

// IdentifierGenerator derives alumni usernames of the form
// <first name><last two characters of year><100-999>.
type IdentifierGenerator struct {
	intn func(n int) int
}

// NewIdentifierGenerator uses math/rand. Pass a custom intn in tests.
func NewIdentifierGenerator(intn func(n int) int) *IdentifierGenerator {
	if intn == nil {
		intn = rand.Intn
	}
	return &IdentifierGenerator{intn: intn}
}

// Generate never fails. Uniqueness is enforced by the alumni.uid constraint.
func (g *IdentifierGenerator) Generate(name, year string) string {
	return firstNameToken(name) + yearSuffix(year) + strconv.Itoa(100+g.intn(900))
}

func firstNameToken(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for _, r := range strings.ToLower(fields[0]) {
		if r <= unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func yearSuffix(year string) string {
	year = strings.TrimSpace(year)
	if len(year) <= 2 {
		return year
	}
	return year[len(year)-2:]
}
