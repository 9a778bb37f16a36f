package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.00123456, "$0.001235"},
		{0.005, "$0.005000"},
		{0.35, "$0.3500"},
		{0.9999, "$0.9999"},
		{1, "$1.00"},
		{3000.456, "$3,000.46"},
		{64250.1, "$64,250.10"},
		{1234567.891, "$1,234,567.89"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Price(tt.in))
		})
	}
}

func TestMarketCap(t *testing.T) {
	assert.Equal(t, "$1.40T", MarketCap(1.4e12))
	assert.Equal(t, "$400.00B", MarketCap(4e11))
	assert.Equal(t, "$12.35M", MarketCap(12_345_678))
	assert.Equal(t, "$999,999", MarketCap(999_999))
	assert.Equal(t, "$0", MarketCap(0))
}

func TestCompactValue(t *testing.T) {
	assert.Equal(t, "$1.4T", CompactValue(1.4e12))
	assert.Equal(t, "$2.5B", CompactValue(2.5e9))
	assert.Equal(t, "$7.0M", CompactValue(7e6))
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, "+2.50%", Percentage(2.5))
	assert.Equal(t, "-1.20%", Percentage(-1.2))
	assert.Equal(t, "0.00%", Percentage(0))
	assert.Equal(t, "+0.65%", Percentage(0.65))
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "19,700,000", Number(19_700_000))
	assert.Equal(t, "1,234.568", Number(1234.5678))
	assert.Equal(t, "-12,000", Number(-12000))
	assert.Equal(t, "21,000,000 BTC", Supply(21_000_000, "btc"))
}

func TestDescription(t *testing.T) {
	html := `<p>Bitcoin is the first <a href="https://bitcoin.org">decentralized</a> currency.</p>
<p>It was created in 2009. Supply is capped. Blocks arrive every ten minutes.</p>`

	assert.Equal(t,
		"Bitcoin is the first decentralized currency. It was created in 2009. Supply is capped.",
		Description(html, DefaultSentences))
	assert.Equal(t, "Bitcoin is the first decentralized currency.", Description(html, 1))
	assert.Equal(t, "Short text.", Description("Short text.", 3))
	assert.Equal(t, "No trailing period.", Description("No trailing period", 3))
	assert.Equal(t, "", Description("   ", 3))
}
