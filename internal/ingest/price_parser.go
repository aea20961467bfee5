package ingest

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var priceRegex = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*(만\s*원|만|원)?`)

// parsePriceKRW extracts a won amount from listing text such as
// "129,000원", "₩1,290,000" or "12.9만원". Texts without a number
// ("가격문의") report false.
func parsePriceKRW(text string) (int64, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	// Sale listings show the original price first; the last amount with a
	// currency unit is the one charged.
	matches := priceRegex.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return 0, false
	}
	m := matches[len(matches)-1]
	for i := len(matches) - 1; i >= 0; i-- {
		if matches[i][2] != "" {
			m = matches[i]
			break
		}
	}

	val, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || val <= 0 {
		return 0, false
	}
	if strings.HasPrefix(m[2], "만") {
		val *= 10000
	}
	return int64(math.Round(val)), true
}
