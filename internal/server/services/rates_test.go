package services

import (
	"errors"
	"testing"

	"github.com/lingvera/lingvera/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestRateTable_QuoteCents(t *testing.T) {
	rates := RateTable{"de": 12, "es": 10}

	tests := []struct {
		name      string
		wordCount int64
		langs     []string
		want      int64
		wantErr   bool
	}{
		{name: "single language", wordCount: 100, langs: []string{"de"}, want: 1200},
		{name: "two languages", wordCount: 100, langs: []string{"de", "es"}, want: 2200},
		{name: "unknown language", wordCount: 100, langs: []string{"tlh"}, wantErr: true},
		{name: "no languages", wordCount: 100, langs: nil, wantErr: true},
		{name: "zero words", wordCount: 0, langs: []string{"de"}, wantErr: true},
		{name: "negative words", wordCount: -5, langs: []string{"de"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := rates.QuoteCents(tc.wordCount, tc.langs)
			if tc.wantErr {
				if !errors.Is(err, common.ErrValidation) {
					t.Fatalf("want ErrValidation, got %v", err)
				}
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDefaultRates_CoverCommonPairs(t *testing.T) {
	for _, lang := range []string{"de", "fr", "es", "ja"} {
		if _, ok := DefaultRates[lang]; !ok {
			t.Fatalf("default rate table missing %q", lang)
		}
	}
}
