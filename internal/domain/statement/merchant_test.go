package statement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerchantKey(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"lowercases", "SWIGGY BANGALORE", "swiggy bangalore"},
		{"strips punctuation", "AMAZON.IN*RETAIL", "amazon in retail"},
		{"collapses whitespace", "  BIG   BASKET  ", "big basket"},
		{"strips upi prefix", "UPI SWIGGY ORDER", "swiggy order"},
		{"strips pos prefix", "POS PURCHASE STARBUCKS", "starbucks"},
		{"strips trailing reference", "ZOMATO ONLINE 123456789", "zomato online"},
		{"keeps short trailing digits", "TERMINAL 42", "terminal 42"},
		{"empty input", "", ""},
		{"only punctuation", "***", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MerchantKey(tt.raw))
		})
	}
}

// The same raw description always yields the same key.
func TestMerchantKey_Deterministic(t *testing.T) {
	raw := "UPI PAYMENT TO SWIGGY*ORDER 99887766"
	first := MerchantKey(raw)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, MerchantKey(raw))
	}
}
