package statement

// BankProfile carries the per-bank parsing quirks a statement declares:
// which date layout the bank prints and whether amounts use a decimal comma.
// When a date string is ambiguous between layouts, the profile's layout wins.
type BankProfile struct {
	Name         string
	DateFormat   string // Go reference layout, e.g. "02/01/2006"
	DecimalComma bool   // true when amounts look like "1.234,56"
}

// Fallback date layouts tried after the profile's own, in order. Day-first
// numeric then ISO.
var fallbackDateFormats = []string{
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	"2 Jan 2006",
	"02 Jan 2006",
}

// DefaultProfile is used when a statement names no bank.
func DefaultProfile() BankProfile {
	return BankProfile{
		Name:       "generic",
		DateFormat: "02/01/2006",
	}
}

// KnownProfiles maps bank identifiers to their statement quirks.
func KnownProfiles() map[string]BankProfile {
	return map[string]BankProfile{
		"hdfc":       {Name: "hdfc", DateFormat: "02/01/06"},
		"icici":      {Name: "icici", DateFormat: "02-01-2006"},
		"sbi":        {Name: "sbi", DateFormat: "02 Jan 2006"},
		"axis":       {Name: "axis", DateFormat: "02-01-2006"},
		"revolut":    {Name: "revolut", DateFormat: "2006-01-02"},
		"n26":        {Name: "n26", DateFormat: "2006-01-02", DecimalComma: true},
		"millennium": {Name: "millennium", DateFormat: "02-01-2006", DecimalComma: true},
	}
}

// ProfileFor resolves a bank identifier to its profile, falling back to the
// generic one.
func ProfileFor(bank string) BankProfile {
	if p, ok := KnownProfiles()[bank]; ok {
		return p
	}
	return DefaultProfile()
}
