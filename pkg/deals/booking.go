package deals

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// bookingTemplates maps an airline display name fragment to a deep-link
// template for that carrier's own booking flow. {origin}, {destination}
// and {date} are substituted with URL-escaped values.
var bookingTemplates = map[string]string{
	"United":    "https://www.united.com/en/us/book/flights?origin={origin}&destination={destination}&date={date}",
	"American":  "https://www.aa.com/booking/find-flights?origin={origin}&destination={destination}&date={date}",
	"Delta":     "https://www.delta.com/flight-search/book-a-flight?origin={origin}&destination={destination}&date={date}",
	"Southwest": "https://www.southwest.com/air/booking/?originationAirportCode={origin}&destinationAirportCode={destination}&departureDate={date}",
	"JetBlue":   "https://www.jetblue.com/booking/flights?from={origin}&to={destination}&depart={date}",
	"Alaska":    "https://www.alaskaair.com/search/results?A=1&O={origin}&D={destination}&DD={date}",
	"Spirit":    "https://www.spirit.com/book/flights?origin={origin}&destination={destination}&date={date}",
	"Frontier":  "https://www.flyfrontier.com/booking?origin={origin}&destination={destination}&date={date}",
}

// usdTag tags booking links' currency as USD without any conversion,
// matching the core's no-currency-conversion non-goal.
var usdTag = currency.MustParseISO("USD")

// bookingLocale localizes the fallback search-engine link; it carries no
// conversion semantics of its own.
var bookingLocale = language.AmericanEnglish

func substituteTemplate(tpl, origin, destination, date string) string {
	r := strings.NewReplacer(
		"{origin}", url.QueryEscape(origin),
		"{destination}", url.QueryEscape(destination),
		"{date}", url.QueryEscape(date),
	)
	return r.Replace(tpl)
}

// buildBookingLink constructs a booking URL for d's first itinerary: a
// token-based redeem link if the provider gave one, otherwise a carrier
// deep link if the operating airline has a known template, otherwise a
// universal fallback search link tagged in USD/en-US.
func buildBookingLink(d Deal, q Query) string {
	if len(d.Itineraries) == 0 || len(d.Itineraries[0].Legs) == 0 {
		return ""
	}
	leg := d.Itineraries[0].Legs[0]
	date := leg.DepartAt.Format("2006-01-02")

	if d.Itineraries[0].BookingToken != "" {
		return fmt.Sprintf("https://book.example-oid.com/redeem?token=%s", url.QueryEscape(d.Itineraries[0].BookingToken))
	}

	for name, tpl := range bookingTemplates {
		if strings.Contains(strings.ToLower(leg.Airline), strings.ToLower(name)) {
			return substituteTemplate(tpl, q.Origin, q.Destination, date)
		}
	}

	region, _ := bookingLocale.Region()
	langBase, _ := bookingLocale.Base()
	return fmt.Sprintf(
		"https://www.google.com/travel/flights?hl=%s&curr=%s&gl=%s&q=Flights%%20from%%20%s%%20to%%20%s%%20on%%20%s",
		langBase.String(), usdTag.String(), region.String(),
		url.QueryEscape(q.Origin), url.QueryEscape(q.Destination), url.QueryEscape(date),
	)
}
