package deals

// nearbyAirports lists viable alternate airports for a primary code,
// ordered roughly by how close and practical they are as a substitute.
// This mirrors the airline-groups style static lookup table: a short,
// hand-curated map rather than a geography search, since only a handful
// of US metros have meaningfully interchangeable airports.
var nearbyAirports = map[string][]string{
	"JFK": {"EWR", "LGA"},
	"EWR": {"JFK", "LGA"},
	"LGA": {"JFK", "EWR"},
	"LAX": {"BUR", "ONT", "LGB", "SNA"},
	"SFO": {"OAK", "SJC"},
	"ORD": {"MDW"},
	"MDW": {"ORD"},
	"IAD": {"DCA", "BWI"},
	"DCA": {"IAD", "BWI"},
	"MIA": {"FLL", "PBI"},
	"FLL": {"MIA", "PBI"},
}

// eastCoastHubs / westCoastHubs gate the smart-hub and beyond-city
// heuristics, which only make sense for genuinely transcontinental or
// coast-crossing routes.
var eastCoastHubs = map[string]bool{
	"JFK": true, "EWR": true, "LGA": true, "BOS": true, "DCA": true,
	"IAD": true, "PHL": true, "MIA": true, "FLL": true,
}

var westCoastHubs = map[string]bool{
	"LAX": true, "SFO": true, "OAK": true, "SJC": true, "SEA": true,
	"PDX": true, "SAN": true,
}

// destinationBeyondCities maps a destination to candidate cities a
// hidden-city itinerary might continue past it toward — i.e. cities the
// provider's connections to destination are likely to route through on
// the way further.
var destinationBeyondCities = map[string][]string{
	"LAX": {"SFO", "HNL", "PPT"},
	"JFK": {"LHR", "CDG"},
	"MIA": {"GRU", "EZE"},
	"ORD": {"NRT"},
	"SFO": {"NRT"},
}

var defaultBeyondCities = []string{"DEN", "ORD"}

// fallbackHubs is the fixed, distance-agnostic candidate list smartHubs
// falls back to for routes that aren't a clean coast-to-coast pair.
var fallbackHubs = []string{"ORD", "ATL", "DFW", "DEN", "LAX", "SFO", "JFK", "MIA"}

// nearbyAlternatives returns alternate airports for code, scaled by how
// much headroom the base price leaves: cheap fares only get the single
// closest alternate checked, pricier ones get the full candidate list.
func nearbyAlternatives(code string, basePrice float64) []string {
	alts, ok := nearbyAirports[code]
	if !ok {
		return nil
	}
	n := len(alts)
	switch {
	case basePrice < 100:
		n = min(1, len(alts))
	case basePrice < 200:
		n = min(2, len(alts))
	}
	return append([]string(nil), alts[:n]...)
}

// smartHubs returns candidate connection hubs for a split-ticket search
// between origin and destination, or nil if the route isn't worth the
// extra provider calls.
func smartHubs(origin, destination string, basePrice float64) []string {
	if basePrice < 120 {
		return nil
	}
	if eastCoastHubs[origin] && westCoastHubs[destination] {
		return []string{"DEN"}
	}
	if westCoastHubs[origin] && eastCoastHubs[destination] {
		return []string{"ORD"}
	}
	for _, hub := range fallbackHubs {
		if hub == origin || hub == destination {
			continue
		}
		return []string{hub}
	}
	return nil
}

// smartBeyondCities returns up to 2 beyond-destination cities worth
// probing for a hidden-city itinerary on this route.
func smartBeyondCities(origin, destination string) []string {
	var candidates []string
	if cities, ok := destinationBeyondCities[destination]; ok {
		candidates = cities
	} else if eastCoastHubs[origin] && westCoastHubs[destination] {
		candidates = []string{"DEN", "ORD", "DFW"}
	} else {
		candidates = defaultBeyondCities
	}

	out := make([]string, 0, 2)
	for _, c := range candidates {
		if c == origin || c == destination {
			continue
		}
		out = append(out, c)
		if len(out) == 2 {
			break
		}
	}
	return out
}

// shouldCheckPositioning reports whether a positioning-flight search is
// worth its two extra provider calls for this base price.
func shouldCheckPositioning(basePrice float64, cfg Config) bool {
	return basePrice >= cfg.PositioningMinPrice
}

// shouldCheckHiddenCity reports whether the hidden-city strategy is
// worth dispatching for this base price.
func shouldCheckHiddenCity(basePrice float64, cfg Config) bool {
	return basePrice >= cfg.HiddenCityMinPrice
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
