package statement

import (
	"regexp"
	"strings"
)

// Noise prefixes banks prepend to the merchant text. Checked against the
// lower-cased description, longest first where they overlap.
var noisePrefixes = []string{
	"upi payment to ",
	"upi txn ",
	"upi ",
	"pos purchase ",
	"pos ",
	"purchase at ",
	"purchase ",
	"payment to ",
	"card payment ",
	"neft ",
	"imps ",
	"ach debit ",
	"compra ",
	"pagamento ",
	"mb way ",
	"visa ",
	"mastercard ",
}

var (
	punctuationPattern = regexp.MustCompile(`[^a-z0-9\s]+`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	trailingRefPattern = regexp.MustCompile(`\s+\d{6,}$`)
)

// MerchantKey normalizes a raw description into the classifier's input form:
// lower-cased, punctuation stripped, whitespace collapsed, transport noise
// removed. The key is a weak dedup signal only; statement plus ordinal is the
// real dedup key.
func MerchantKey(rawDescription string) string {
	key := strings.ToLower(strings.TrimSpace(rawDescription))

	for _, prefix := range noisePrefixes {
		if strings.HasPrefix(key, prefix) {
			key = key[len(prefix):]
			break
		}
	}

	key = punctuationPattern.ReplaceAllString(key, " ")
	key = whitespacePattern.ReplaceAllString(key, " ")
	key = strings.TrimSpace(key)

	// Long trailing digit runs are transaction references, not merchant
	// identity.
	key = trailingRefPattern.ReplaceAllString(key, "")

	return key
}
