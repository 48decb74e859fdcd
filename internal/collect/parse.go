package collect

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParsePrice parses a broker price cell, tolerating currency prefixes and
// thousands separators ("£1,234.56").
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "Â£") // mis-decoded pound sign seen in scraped pages
	s = strings.TrimPrefix(s, "£")
	s = strings.ReplaceAll(s, ",", "")
	return strconv.ParseFloat(s, 64)
}

// ParsePercent parses "4.25%" into the decimal fraction 0.0425.
func ParsePercent(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return v / 100, nil
}

var maturityFormats = []string{
	"02-Jan-2006",
	"02/01/2006",
	"2 Jan 2006",
	"2 January 2006",
	"2006-01-02",
}

// ParseMaturityDate accepts the date formats observed across the scraped
// broker pages; month-only forms like "Jul 2025" resolve to the first of
// the month.
func ParseMaturityDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	for _, layout := range maturityFormats {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}

	if ts, err := time.Parse("Jan 2006", s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse("January 2006", s); err == nil {
		return ts, nil
	}

	return time.Time{}, ErrInvalidRow
}

var couponRe = regexp.MustCompile(`^(\d+(?:\s+\d+/\d+)?|\d+/\d+|\d+[¼½¾]?)%`)

// ParseCouponPercent extracts the coupon from a bond description such as
// "0 5/8% Treasury Gilt 2025", "2% Treasury Gilt 2025" or "3½% Treasury
// Gilt 2025", returning a decimal fraction.
func ParseCouponPercent(desc string) (float64, error) {
	match := couponRe.FindStringSubmatch(strings.TrimSpace(desc))
	if len(match) < 2 {
		return 0, ErrInvalidRow
	}

	m := match[1]

	// Unicode fraction suffixes.
	trimLast := func(s string) string {
		r := []rune(s)
		return string(r[:len(r)-1])
	}
	switch {
	case strings.HasSuffix(m, "½"):
		m = trimLast(m) + " 1/2"
	case strings.HasSuffix(m, "¼"):
		m = trimLast(m) + " 1/4"
	case strings.HasSuffix(m, "¾"):
		m = trimLast(m) + " 3/4"
	}

	percent, err := parseFractional(m)
	if err != nil {
		return 0, err
	}
	return percent / 100, nil
}

// parseFractional parses "5", "5/8" or "3 1/2".
func parseFractional(s string) (float64, error) {
	if !strings.Contains(s, "/") {
		return strconv.ParseFloat(s, 64)
	}

	whole := 0.0
	frac := s
	if parts := strings.Split(s, " "); len(parts) == 2 {
		w, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, ErrInvalidRow
		}
		whole = float64(w)
		frac = parts[1]
	}

	fp := strings.Split(frac, "/")
	if len(fp) != 2 {
		return 0, ErrInvalidRow
	}
	num, err := strconv.Atoi(fp[0])
	if err != nil {
		return 0, ErrInvalidRow
	}
	den, err := strconv.Atoi(fp[1])
	if err != nil || den == 0 {
		return 0, ErrInvalidRow
	}

	return whole + float64(num)/float64(den), nil
}

var isinRe = regexp.MustCompile(`GB[A-Z0-9]{10}`)

// ExtractISIN pulls a UK ISIN out of free text, if present.
func ExtractISIN(s string) string {
	return isinRe.FindString(s)
}

// findColumn returns the index of the first header containing any of the
// keywords (case-insensitive), or fallback when none matches.
func findColumn(headers []string, keywords []string, fallback int) int {
	for i, h := range headers {
		h = strings.ToLower(h)
		for _, kw := range keywords {
			if strings.Contains(h, kw) {
				return i
			}
		}
	}
	return fallback
}
