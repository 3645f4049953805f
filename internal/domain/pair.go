package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Pair is an ordered (from, to) currency pair. Its key form "FROM_TO" is
// what the cache document and history records are addressed by.
type Pair struct {
	From string
	To   string
}

func NewPair(from, to string) (Pair, error) {
	from, err := ValidateCode(from)
	if err != nil {
		return Pair{}, err
	}
	to, err = ValidateCode(to)
	if err != nil {
		return Pair{}, err
	}
	return Pair{From: from, To: to}, nil
}

func (p Pair) Key() string { return p.From + "_" + p.To }

func (p Pair) String() string { return p.From + "/" + p.To }

// ParsePairKey splits a cache key like "BTC_USD" back into a Pair.
func ParsePairKey(key string) (Pair, bool) {
	i := strings.IndexByte(key, '_')
	if i <= 0 || i == len(key)-1 {
		return Pair{}, false
	}
	return Pair{From: key[:i], To: key[i+1:]}, true
}

var codeRe = regexp.MustCompile(`^[A-Z0-9]{2,5}$`)

// ValidateCode normalizes a currency code to upper case and rejects
// anything outside 2-5 characters without spaces.
func ValidateCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !codeRe.MatchString(code) {
		return "", fmt.Errorf("%w: invalid currency code %q", ErrValidation, code)
	}
	return code, nil
}

// ValidateAmount rejects non-positive trade amounts before any I/O happens.
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %v", ErrValidation, amount)
	}
	return nil
}
