// Package area classifies free-text addresses into coarse Goa regions.
package area

import "strings"

// Area is a coarse region tag derived from an address.
type Area string

const (
	NorthGoa Area = "North Goa"
	SouthGoa Area = "South Goa"
	Unknown  Area = "Unknown"
)

// All lists every area value in display order.
var All = []Area{NorthGoa, SouthGoa, Unknown}

// IsValid reports whether a is one of the known area values.
func (a Area) IsValid() bool {
	for _, v := range All {
		if a == v {
			return true
		}
	}
	return false
}

// Keyword lists are checked in order; North Goa wins ties.
var (
	northKeywords = []string{"panaji", "panjim", "mapusa", "bardez", "tiswadi", "pernem", "satari", "bicholim", "porvorim"}
	southKeywords = []string{"margao", "margaon", "vasco", "ponda", "salcete", "quepem", "sanguem", "canacona", "dabolim", "verna"}
)

// Classify maps an address to North Goa, South Goa or Unknown by
// case-insensitive keyword containment.
func Classify(address string) Area {
	if address == "" {
		return Unknown
	}
	lower := strings.ToLower(address)
	if containsAny(lower, northKeywords) {
		return NorthGoa
	}
	if containsAny(lower, southKeywords) {
		return SouthGoa
	}
	return Unknown
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
