// Package macros provides small static lookup helpers for airline
// classification used by the deal-search core.
package macros

import "strings"

// lowCostCodes is a curated set of IATA airline codes for carriers widely
// considered low-cost/budget, independent of alliance membership.
//
// IMPORTANT: Best-effort mapping, may drift over time!
// - Low-cost classification is subjective
// - Some carriers may be missing or outdated
//
// Safe for: tagging offers with metadata, UI hints, sorting
// NOT safe for: hard filtering, business logic that assumes completeness
var lowCostCodes = map[string]bool{
	"FR": true, // Ryanair
	"U2": true, // easyJet
	"W6": true, // Wizz Air
	"NK": true, // Spirit Airlines
	"F9": true, // Frontier Airlines
	"WN": true, // Southwest Airlines
	"G4": true, // Allegiant Air
	"B6": true, // JetBlue Airways
	"DY": true, // Norwegian Air Shuttle
	"VY": true, // Vueling
	"PC": true, // Pegasus Airlines
	"AK": true, // AirAsia
	"QZ": true, // Indonesia AirAsia
	"FD": true, // Thai AirAsia
	"TR": true, // Scoot
	"3K": true, // Jetstar Asia Airways
	"JQ": true, // Jetstar Airways
	"GK": true, // Jetstar Japan
	"9C": true, // Spring Airlines
	"5J": true, // Cebu Pacific
	"Z2": true, // Philippines AirAsia
	"ZE": true, // Eastar Jet
	"LJ": true, // Jin Air
	"7C": true, // Jeju Air
	"TW": true, // T'way Air
	"MM": true, // Peach Aviation
	"BC": true, // Skymark Airlines
	"HO": true, // Juneyao Airlines
	"OD": true, // Batik Air Malaysia
	"XT": true, // Indonesia AirAsia X
	"D7": true, // AirAsia X
	"XJ": true, // Thai AirAsia X
	"G9": true, // Air Arabia
	"FZ": true, // flydubai
	"XY": true, // flynas
	"J9": true, // Jazeera Airways
	"8Q": true, // Onur Air
}

// budgetCarrierNames are the budget carriers the deal-search core calls
// out by display name rather than by IATA code, since several (Sun
// Country, Breeze) aren't in lowCostCodes above but are still relevant to
// a US-centric budget search.
var budgetCarrierNames = []string{
	"Spirit", "Frontier", "Allegiant", "Sun Country", "Southwest", "JetBlue", "Breeze",
}

// BudgetCarrierNames returns the display names of budget carriers the
// deal-search core flags, for use in explanations and API responses.
func BudgetCarrierNames() []string {
	return append([]string(nil), budgetCarrierNames...)
}

// IsBudgetCarrier reports whether airline — an IATA code or a display
// name as returned by a provider — identifies a budget carrier, checking
// both the low-cost code set above and the named list.
func IsBudgetCarrier(airline string) bool {
	code := strings.ToUpper(strings.TrimSpace(airline))
	if lowCostCodes[code] {
		return true
	}
	lower := strings.ToLower(airline)
	for _, name := range budgetCarrierNames {
		if strings.Contains(lower, strings.ToLower(name)) {
			return true
		}
	}
	return false
}
