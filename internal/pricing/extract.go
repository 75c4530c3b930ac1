package pricing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bobmcallan/rebal/internal/interfaces"
)

// Sanity bounds for extracted prices. Values outside (min, max) are noise:
// years, share counts, market caps.
const (
	extractMinPrice = 0.01
	extractMaxPrice = 1_000_000
)

// pricePatterns are tried in order; the first in-bounds match wins.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\$([0-9][0-9,]*\.?[0-9]*)`),
	regexp.MustCompile(`(?i)USD\s*([0-9][0-9,]*\.?[0-9]*)`),
	regexp.MustCompile(`(?i)price[:\s]+\$?([0-9][0-9,]*\.?[0-9]*)`),
	regexp.MustCompile(`(?i)([0-9][0-9,]*\.[0-9]{2})\s*USD`),
}

// Extractor pulls the first plausible price out of free text.
type Extractor struct {
	min float64
	max float64
}

// NewExtractor creates an extractor with the default sanity bounds.
func NewExtractor() *Extractor {
	return &Extractor{min: extractMinPrice, max: extractMaxPrice}
}

// ExtractPrice scans the text with each pattern in order and returns the
// first candidate inside the sanity bounds. Out-of-bounds candidates are
// skipped, not fatal.
func (e *Extractor) ExtractPrice(text string) (float64, bool) {
	for _, re := range pricePatterns {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			raw := strings.ReplaceAll(match[1], ",", "")
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				continue
			}
			if value > e.min && value < e.max {
				return value, true
			}
		}
	}
	return 0, false
}

// Ensure Extractor implements PriceExtractor
var _ interfaces.PriceExtractor = (*Extractor)(nil)
