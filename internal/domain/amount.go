package domain

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

var decimalPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)

var amountUnits = []struct {
	suffix string
	exp    int64
}{{"ether", 18}, {"gwei", 9}, {"wei", 0}}

// ParseAmount parses an integer with an optional unit suffix: "42",
// "0x2a", "1.5 ether", "20gwei".
func ParseAmount(s string) (*big.Int, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, "_", ""))
	for _, u := range amountUnits {
		num, ok := strings.CutSuffix(s, u.suffix)
		if !ok {
			continue
		}
		num = strings.TrimSpace(num)
		if !decimalPattern.MatchString(num) {
			return nil, fmt.Errorf("invalid amount %q", s)
		}
		r, ok := new(big.Rat).SetString(num)
		if !ok {
			return nil, fmt.Errorf("invalid amount %q", s)
		}
		scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(u.exp), nil)
		r.Mul(r, new(big.Rat).SetInt(scale))
		if !r.IsInt() {
			return nil, fmt.Errorf("amount %q is not a whole number of wei", s)
		}
		return new(big.Int).Set(r.Num()), nil
	}
	return ParseBigInt(s)
}
