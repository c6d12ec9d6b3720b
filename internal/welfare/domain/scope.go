package domain

// Scope is the resolved visibility of a caller over beneficiary-owned rows.
type Scope struct {
	// All is set for office roles.
	All bool
	// Barangays restricts a health worker to beneficiaries living in one of these.
	Barangays []string
	// BeneficiaryID restricts a beneficiary to their own profile.
	BeneficiaryID string
	// Empty short-circuits to an empty result without touching the store.
	Empty bool
}

// AllScope sees everything.
func AllScope() Scope { return Scope{All: true} }

// EmptyScope sees nothing.
func EmptyScope() Scope { return Scope{Empty: true} }

// Allows reports whether a beneficiary with the given id and address is visible.
func (s Scope) Allows(beneficiaryID, address string) bool {
	switch {
	case s.Empty:
		return false
	case s.All:
		return true
	case s.BeneficiaryID != "":
		return s.BeneficiaryID == beneficiaryID
	default:
		for _, b := range s.Barangays {
			if SameBarangay(b, address) {
				return true
			}
		}
		return false
	}
}

// NormalizedBarangays returns the comparison keys of the scope's barangays.
func (s Scope) NormalizedBarangays() []string {
	out := make([]string, 0, len(s.Barangays))
	for _, b := range s.Barangays {
		out = append(out, NormalizeBarangay(b))
	}
	return out
}
