package reconcile

import "strings"

var vendorNoise = []string{
	"invoice", "receipt", "subtotal", "total", "amount paid", "payment method", "page", "bill to",
}

var addressNoise = []string{
	"bill to", "ship to", "customer", "subtotal", "email", "e-mail", "@",
}

// VendorTextLooksNoisy reports whether an extracted vendor name is probably
// a stray line from the document rather than a company name.
func VendorTextLooksNoisy(s string) bool {
	if len(s) > 80 || strings.Count(s, ",") >= 5 {
		return true
	}
	return containsAny(strings.ToLower(s), vendorNoise)
}

// VendorAddressNeedsAssistance reports whether an extracted address is too
// short or too polluted to keep when a saved vendor address is available.
func VendorAddressNeedsAssistance(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 10 || strings.Count(s, ",") >= 6 {
		return true
	}
	return containsAny(strings.ToLower(s), addressNoise)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
