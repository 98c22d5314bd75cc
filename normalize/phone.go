package normalize

import (
	"fmt"
	"regexp"
	"sort"
)

// Tried in order; the first pattern with a match wins.
var phonePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\((\d{3})\)\s*(\d{3})-(\d{4})`),
	regexp.MustCompile(`(\d{3})[-.](\d{3})[-.](\d{4})`),
	regexp.MustCompile(`\b(\d{3})(\d{3})(\d{4})\b`),
}

// Phone finds the first phone number in free text. Bare ten-digit runs are
// reformatted as "(XXX) XXX-XXXX". Returns "" when nothing matches.
func Phone(text string) string {
	for i, re := range phonePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if i == len(phonePatterns)-1 {
			return fmt.Sprintf("(%s) %s-%s", m[1], m[2], m[3])
		}
		return m[0]
	}
	return ""
}

var directPhoneFields = []string{
	"management_company.phone_number",
	"management_company.phoneNumber",
	"management_company.phone",
	"management_company.contact",
	"managementCompany.phone_number",
	"managementCompany.phoneNumber",
	"managementCompany.phone",
	"managementCompany.contact",
	"realtor.phone",
	"agent.phone",
	"contact.phone",
	"phone_number",
	"phoneNumber",
	"phone",
}

// FindPhone looks for a contact number in extracted data: direct phone fields
// first, then the description, then every top-level string field (in key order
// so the result is stable).
func FindPhone(data map[string]any) string {
	if data == nil {
		return ""
	}
	if v, ok := FirstPresent(data, directPhoneFields...); ok {
		raw := Stringify(v)
		if p := Phone(raw); p != "" {
			return p
		}
		if raw != "" {
			return raw
		}
	}

	if desc, ok := data["description"].(string); ok {
		if p := Phone(desc); p != "" {
			return p
		}
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, ok := data[k].(string); ok {
			if p := Phone(s); p != "" {
				return p
			}
		}
	}
	return ""
}
