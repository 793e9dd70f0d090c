// Package convert performs exact conversions between human-entered decimal
// amounts and on-chain fixed-point integers. All arithmetic is math/big;
// native floats would lose precision for 18-decimal tokens.
package convert

import (
	"fmt"
	"math/big"
	"strings"
)

// WeiDecimals is the scale of the chain's native currency unit.
const WeiDecimals uint8 = 18

func pow10(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

func parseDecimal(amount string) (*big.Rat, error) {
	amount = strings.TrimSpace(amount)
	r, ok := new(big.Rat).SetString(amount)
	if !ok {
		return nil, fmt.Errorf("malformed decimal amount %q", amount)
	}
	return r, nil
}

// roundRat rounds a rational to the nearest integer, half away from zero.
func roundRat(r *big.Rat) *big.Int {
	num := new(big.Int).Abs(r.Num())
	den := r.Denom()
	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	rem.Lsh(rem, 1)
	if rem.Cmp(den) >= 0 {
		q.Add(q, big.NewInt(1))
	}
	if r.Sign() < 0 {
		q.Neg(q)
	}
	return q
}

// ToOnChain converts a human decimal amount to the integer on-chain
// representation: round(amount * 10^decimals).
func ToOnChain(amount string, decimals uint8) (*big.Int, error) {
	r, err := parseDecimal(amount)
	if err != nil {
		return nil, err
	}
	scaled := new(big.Rat).Mul(r, new(big.Rat).SetInt(pow10(decimals)))
	return roundRat(scaled), nil
}

// FormatUnits renders an on-chain integer amount as an exact decimal string,
// trimming trailing zeros.
func FormatUnits(v *big.Int, decimals uint8) string {
	if v == nil {
		return "0"
	}
	if decimals == 0 {
		return v.String()
	}
	sign := v.Sign()
	abs := new(big.Int).Abs(v)
	rat := new(big.Rat).SetFrac(abs, pow10(decimals))
	text := rat.FloatString(int(decimals))
	text = strings.TrimRight(text, "0")
	text = strings.TrimSuffix(text, ".")
	if text == "" {
		text = "0"
	}
	if sign < 0 {
		text = "-" + text
	}
	return text
}

// WholeUnits truncates an on-chain amount toward zero to whole token units.
func WholeUnits(v *big.Int, decimals uint8) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Quo(v, pow10(decimals))
}

// TokenAmount computes the on-chain token amount for an ETH amount at a
// pool's price: round(ethAmount * pricePerWei * 10^decimals). The three
// factors multiply in a single rational expression; rounding happens exactly
// once at the end.
func TokenAmount(ethAmount string, pricePerWei *big.Int, decimals uint8) (*big.Int, error) {
	if pricePerWei == nil {
		return nil, fmt.Errorf("price is nil")
	}
	r, err := parseDecimal(ethAmount)
	if err != nil {
		return nil, err
	}
	product := new(big.Rat).Mul(r, new(big.Rat).SetInt(pricePerWei))
	product.Mul(product, new(big.Rat).SetInt(pow10(decimals)))
	return roundRat(product), nil
}

// WeiAmount converts an ETH amount to wei.
func WeiAmount(ethAmount string) (*big.Int, error) {
	return ToOnChain(ethAmount, WeiDecimals)
}

// QuoteTokens returns the display-unit token quantity an ETH amount buys at
// the given price, as an exact decimal string.
func QuoteTokens(ethAmount string, pricePerWei *big.Int) (string, error) {
	if pricePerWei == nil {
		return "", fmt.Errorf("price is nil")
	}
	r, err := parseDecimal(ethAmount)
	if err != nil {
		return "", err
	}
	r.Mul(r, new(big.Rat).SetInt(pricePerWei))
	return formatRat(r), nil
}

// formatRat renders a rational whose denominator divides a power of ten as an
// exact decimal string. parseDecimal only produces such denominators.
func formatRat(r *big.Rat) string {
	digits := 0
	den := new(big.Int).Set(r.Denom())
	two := big.NewInt(2)
	five := big.NewInt(5)
	rem := new(big.Int)
	for {
		q, m := new(big.Int).QuoRem(den, two, rem)
		if m.Sign() != 0 {
			break
		}
		den = q
		digits++
	}
	fives := 0
	for {
		q, m := new(big.Int).QuoRem(den, five, rem)
		if m.Sign() != 0 {
			break
		}
		den = q
		fives++
	}
	if fives > digits {
		digits = fives
	}
	text := r.FloatString(digits)
	if digits > 0 {
		text = strings.TrimRight(text, "0")
		text = strings.TrimSuffix(text, ".")
	}
	if text == "" || text == "-" {
		text = "0"
	}
	return text
}
