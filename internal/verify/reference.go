package verify

import (
	"fmt"
	"regexp"
	"strings"
)

// Institution identifies one payment provider with its own receipt
// format and endpoint.
type Institution string

const (
	InstitutionCBE       Institution = "cbe"
	InstitutionTelebirr  Institution = "telebirr"
	InstitutionDashen    Institution = "dashen"
	InstitutionCBEBirr   Institution = "cbebirr"
	InstitutionAbyssinia Institution = "abyssinia"
)

// Institutions lists every supported institution tag.
func Institutions() []Institution {
	return []Institution{
		InstitutionCBE,
		InstitutionTelebirr,
		InstitutionDashen,
		InstitutionCBEBirr,
		InstitutionAbyssinia,
	}
}

// ParseInstitution maps a caller-supplied tag to an Institution.
func ParseInstitution(tag string) (Institution, error) {
	switch Institution(strings.ToLower(strings.TrimSpace(tag))) {
	case InstitutionCBE:
		return InstitutionCBE, nil
	case InstitutionTelebirr:
		return InstitutionTelebirr, nil
	case InstitutionDashen:
		return InstitutionDashen, nil
	case InstitutionCBEBirr:
		return InstitutionCBEBirr, nil
	case InstitutionAbyssinia:
		return InstitutionAbyssinia, nil
	}
	return "", fmt.Errorf("unknown institution: %q", tag)
}

var (
	// CBE-Birr receipts are looked up by the payer's phone number:
	// 12 digits, Ethiopian country code, mobile prefix.
	phonePattern = regexp.MustCompile(`^2519\d{8}$`)

	// Abyssinia requires the last five digits of the sender account.
	accountSuffixPattern = regexp.MustCompile(`^\d{5}$`)
)

// Reference is the immutable input bundle for one verification call:
// the institution tag, the primary transaction reference, and whatever
// secondary identifier that institution requires. Constructed once from
// caller input and never mutated.
type Reference struct {
	Institution   Institution
	Value         string
	AccountSuffix string
	Phone         string
}

// Validate checks that the reference carries the inputs its
// institution requires, applying the format checks that must pass
// before any network fetch is attempted.
func (r Reference) Validate() error {
	if strings.TrimSpace(r.Value) == "" {
		return fmt.Errorf("transaction reference is required")
	}
	switch r.Institution {
	case InstitutionCBE:
		if strings.TrimSpace(r.AccountSuffix) == "" {
			return fmt.Errorf("account suffix is required for CBE")
		}
	case InstitutionAbyssinia:
		if !accountSuffixPattern.MatchString(r.AccountSuffix) {
			return fmt.Errorf("account suffix must be the last 5 digits of the sender account")
		}
	case InstitutionCBEBirr:
		if !phonePattern.MatchString(r.Phone) {
			return fmt.Errorf("phone number must be 12 digits starting with 2519")
		}
	case InstitutionTelebirr, InstitutionDashen:
		// Reference only.
	default:
		return fmt.Errorf("unknown institution: %q", r.Institution)
	}
	return nil
}
