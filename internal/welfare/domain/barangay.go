package domain

import "strings"

// Barangays are the villages of Naval, Biliran that make up the service area.
var Barangays = []string{
	"Agpangi",
	"Anislagan",
	"Atipolo",
	"Borac",
	"Cabungaan",
	"Calumpang",
	"Capiñahan",
	"Caraycaray",
	"Catmon",
	"Haguikhikan",
	"Imelda",
	"Larrazabal",
	"Libertad",
	"Libtong",
	"Lico",
	"Lucsoon",
	"Mabini",
	"Padre Inocentes Garcia (Pob.)",
	"Padre Sergio Eamiguel",
	"Sabang",
	"San Pablo",
	"Santissimo Rosario (Pob.) (Santo Rosa)",
	"Santo Niño",
	"Talustusan",
	"Villa Caneja",
	"Villa Consuelo",
}

// NormalizeBarangay is the comparison key used for scoping: trimmed and lower-cased.
func NormalizeBarangay(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// SameBarangay compares two barangay names the way BHW scoping does.
func SameBarangay(a, b string) bool {
	return NormalizeBarangay(a) == NormalizeBarangay(b)
}

// IsBarangay reports whether s names a known barangay.
func IsBarangay(s string) bool {
	for _, b := range Barangays {
		if SameBarangay(b, s) {
			return true
		}
	}
	return false
}

// CanonicalBarangay returns the canonical spelling of s, or s trimmed when unknown.
func CanonicalBarangay(s string) string {
	for _, b := range Barangays {
		if SameBarangay(b, s) {
			return b
		}
	}
	return strings.TrimSpace(s)
}
