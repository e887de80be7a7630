package utils

import "strings"

// MatchCoin maps a free-form project name from an analyzed video to a coin
// record. Matching is tiered: exact ticker, exact name, then normalized
// substring in either direction. The market data resolver does not use this
// helper; it matches exactly only.
func MatchCoin(name string, coins []CoinRef) (CoinRef, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return CoinRef{}, false
	}

	for _, c := range coins {
		if strings.ToLower(c.Symbol) == needle {
			return c, true
		}
	}

	for _, c := range coins {
		if strings.ToLower(c.Name) == needle {
			return c, true
		}
	}

	normNeedle := normalizeName(needle)
	if normNeedle == "" {
		return CoinRef{}, false
	}
	for _, c := range coins {
		normName := normalizeName(strings.ToLower(c.Name))
		if normName == "" {
			continue
		}
		if strings.Contains(normName, normNeedle) || strings.Contains(normNeedle, normName) {
			return c, true
		}
	}

	return CoinRef{}, false
}

// CoinRef is the minimal identity a matcher needs.
type CoinRef struct {
	ID     string
	Symbol string
	Name   string
}

// normalizeName strips everything but letters and digits so "Avalanche (AVAX)"
// and "avalanche" compare equal.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
