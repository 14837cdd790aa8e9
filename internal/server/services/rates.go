package services

import (
	"fmt"

	"github.com/lingvera/lingvera/internal/common"
)

// RateTable maps a target language code to the per-word price in cents.
type RateTable map[string]int64

// DefaultRates covers the language pairs the service currently sells.
// Prices are per source word, in cents.
var DefaultRates = RateTable{
	"de": 12,
	"fr": 12,
	"es": 10,
	"it": 11,
	"nl": 13,
	"pt": 10,
	"pl": 14,
	"ja": 22,
	"zh": 20,
	"ko": 22,
}

// QuoteCents prices a job: wordCount words translated into each of the
// target languages. Unknown languages and empty selections are validation
// errors surfaced to the uploader with the specific rule violated.
func (r RateTable) QuoteCents(wordCount int64, targetLangs []string) (int64, error) {
	if wordCount <= 0 {
		return 0, fmt.Errorf("%w: word count must be positive", common.ErrValidation)
	}
	if len(targetLangs) == 0 {
		return 0, fmt.Errorf("%w: at least one target language required", common.ErrValidation)
	}

	var total int64
	for _, lang := range targetLangs {
		rate, ok := r[lang]
		if !ok {
			return 0, fmt.Errorf("%w: unsupported target language %q", common.ErrValidation, lang)
		}
		total += wordCount * rate
	}
	return total, nil
}
