package guardrails

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var overconfidentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`we\s+always\s+guarantee`),
	regexp.MustCompile(`100%\s+guaranteed`),
	regexp.MustCompile(`we\s+will\s+definitely`),
	regexp.MustCompile(`you\s+are\s+entitled\s+to`),
	regexp.MustCompile(`we\s+promise`),
}

// Matches prices like $99.99, 99.99 TL, €49,90.
var pricePattern = regexp.MustCompile(`[\$€₺]?\s*(\d+[.,]\d{2})\s*(TL|USD|EUR|₺|\$|€)?`)

var secretPattern = regexp.MustCompile(`[a-zA-Z0-9]{32,}`)

// ContainsOverconfidentClaims reports whether text makes policy promises the
// brand cannot keep.
func ContainsOverconfidentClaims(text string) bool {
	textLower := strings.ToLower(text)
	for _, pattern := range overconfidentPatterns {
		if pattern.MatchString(textLower) {
			return true
		}
	}
	return false
}

// ExtractMentionedPrices returns every price-shaped amount found in text.
func ExtractMentionedPrices(text string) []decimal.Decimal {
	var prices []decimal.Decimal
	for _, match := range pricePattern.FindAllStringSubmatch(text, -1) {
		amount := strings.ReplaceAll(match[1], ",", ".")
		price, err := decimal.NewFromString(amount)
		if err != nil {
			continue
		}
		prices = append(prices, price)
	}
	return prices
}

// SanitizeForLogging redacts long key-like runs so raw model or user text is
// safe to log.
func SanitizeForLogging(text string) string {
	return secretPattern.ReplaceAllString(text, "[REDACTED_KEY]")
}
