// Package sniffer identifies which vendor produced an uploaded customer
// export by inspecting its header row against known format profiles.
// Adding a vendor means adding a profile table, not changing logic.
package sniffer

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Well-known format names.
const (
	FormatSage50     = "Sage 50"
	FormatQuickBooks = "QuickBooks"
	FormatGeneric    = "Generic"
)

// FormatProfile describes one vendor's export shape: which of its headers
// map to standard customer fields, which headers are known noise, and the
// signature headers whose joint presence identifies the vendor.
type FormatProfile struct {
	Name string
	// HeaderMap maps a normalized vendor header to a standard field key.
	HeaderMap map[string]string
	// SkipHeaders are vendor headers considered non-essential; they default
	// to skipped but stay eligible for promotion to custom fields by user
	// override.
	SkipHeaders []string
	// signature headers must ALL be present (case-insensitive) for the
	// profile to match.
	signature []string
}

// TargetField reports the standard field key a vendor header maps to.
func (p *FormatProfile) TargetField(header string) (string, bool) {
	target, ok := p.HeaderMap[normalizeHeader(header)]
	return target, ok
}

// IsSkipped reports whether the profile marks a header as non-essential.
func (p *FormatProfile) IsSkipped(header string) bool {
	normalized := normalizeHeader(header)
	for _, skip := range p.SkipHeaders {
		if normalizeHeader(skip) == normalized {
			return true
		}
	}
	return false
}

// Registry holds the known format profiles plus a precomputed multi-pattern
// matcher over every signature header, so detection does one scan of the
// joined header row instead of a nested loop per profile.
type Registry struct {
	profiles []*FormatProfile
	generic  *FormatProfile
	matcher  *ahocorasick.Matcher
	patterns []string
}

// NewRegistry builds the default registry with the built-in vendor profiles.
func NewRegistry() *Registry {
	return newRegistry(sage50Profile(), quickBooksProfile())
}

func newRegistry(profiles ...*FormatProfile) *Registry {
	r := &Registry{
		profiles: profiles,
		generic:  genericProfile(),
	}

	seen := make(map[string]bool)
	for _, p := range r.profiles {
		for _, sig := range p.signature {
			// Anchor with the row delimiter so a signature only matches a
			// whole header, never a fragment of a longer one.
			pattern := "|" + normalizeHeader(sig) + "|"
			if !seen[pattern] {
				seen[pattern] = true
				r.patterns = append(r.patterns, pattern)
			}
		}
	}
	r.matcher = ahocorasick.NewStringMatcher(r.patterns)
	return r
}

// Detect selects the profile whose signature headers are all present in the
// given header row, regardless of order. Falls back to the generic profile.
func (r *Registry) Detect(headers []string) *FormatProfile {
	var joined strings.Builder
	for _, h := range headers {
		joined.WriteString("|")
		joined.WriteString(normalizeHeader(h))
	}
	joined.WriteString("|")

	hits := r.matcher.Match([]byte(joined.String()))
	present := make(map[string]bool, len(hits))
	for _, idx := range hits {
		present[r.patterns[idx]] = true
	}

	for _, p := range r.profiles {
		matched := true
		for _, sig := range p.signature {
			if !present["|"+normalizeHeader(sig)+"|"] {
				matched = false
				break
			}
		}
		if matched {
			return p
		}
	}
	return r.generic
}

// Generic returns the fallback profile.
func (r *Registry) Generic() *FormatProfile {
	return r.generic
}

// ByName returns a profile by its display name, or the generic profile.
func (r *Registry) ByName(name string) *FormatProfile {
	for _, p := range r.profiles {
		if strings.EqualFold(p.Name, name) {
			return p
		}
	}
	return r.generic
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// sage50Profile covers the Sage 50 accounting customer list export.
func sage50Profile() *FormatProfile {
	return &FormatProfile{
		Name: FormatSage50,
		HeaderMap: map[string]string{
			"customer id":                "accountNumber",
			"customer name":              "name",
			"telephone 1":                "phone",
			"telephone 2":                "secondaryContactPhone",
			"e-mail address":             "email",
			"bill to address-line one":   "address1",
			"bill to address-line two":   "address2",
			"bill to city":               "city",
			"bill to state":              "state",
			"bill to zip":                "zip",
			"bill to contact first name": "secondaryContactName",
			"customer type":              "customerType",
			"customer since date":        "createdDate",
		},
		SkipHeaders: []string{
			"Ship to Address-Line One",
			"Ship to Address-Line Two",
			"Ship to City",
			"Ship to State",
			"Ship to Zip",
			"Sales Tax ID",
			"Terms Code",
			"Credit Limit",
			"Inactive",
		},
		signature: []string{"customer id", "bill to address-line one"},
	}
}

// quickBooksProfile covers the QuickBooks customer contact list export.
func quickBooksProfile() *FormatProfile {
	return &FormatProfile{
		Name: FormatQuickBooks,
		HeaderMap: map[string]string{
			"customer":        "name",
			"phone":           "phone",
			"email":           "email",
			"bill to":         "address1",
			"ship to":         "address2",
			"mr./ms./...":     "secondaryContactName",
			"primary contact": "secondaryContactName",
			"main phone":      "phone",
			"work phone":      "secondaryContactPhone",
			"customer type":   "customerType",
			"account no.":     "accountNumber",
		},
		SkipHeaders: []string{
			"Balance",
			"Balance Total",
			"Fax",
			"Terms",
			"Tax Code",
			"Rep",
			"Price Level",
		},
		signature: []string{"customer", "phone", "balance"},
	}
}

// genericProfile maps the common header spellings seen across generic CRM
// and spreadsheet exports.
func genericProfile() *FormatProfile {
	return &FormatProfile{
		Name: FormatGeneric,
		HeaderMap: map[string]string{
			"name":           "name",
			"customer name":  "name",
			"full name":      "name",
			"company":        "name",
			"company name":   "name",
			"phone":          "phone",
			"phone number":   "phone",
			"telephone":      "phone",
			"mobile":         "phone",
			"email":          "email",
			"email address":  "email",
			"e-mail":         "email",
			"address":        "address1",
			"address 1":      "address1",
			"address line 1": "address1",
			"street":         "address1",
			"address 2":      "address2",
			"address line 2": "address2",
			"city":           "city",
			"state":          "state",
			"province":       "state",
			"zip":            "zip",
			"zip code":       "zip",
			"postal code":    "zip",
			"type":           "customerType",
			"customer type":  "customerType",
			"account":        "accountNumber",
			"account number": "accountNumber",
			"created":        "createdDate",
			"created date":   "createdDate",
			"date added":     "createdDate",
			"last activity":  "lastActivity",
			"tags":           "tags",
			"labels":         "tags",
			"contact":        "secondaryContactName",
			"contact name":   "secondaryContactName",
			"contact phone":  "secondaryContactPhone",
		},
		SkipHeaders: nil,
	}
}
