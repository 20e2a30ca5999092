package geocode

import (
	"strings"

	"github.com/tripweave/tripweave/internal/itinerary"
)

// knownLocation is one entry of the static known-location dictionary.
type knownLocation struct {
	name     string
	lat      float64
	lng      float64
	category itinerary.Category
}

// The known-location dictionary avoids external lookups for places that
// show up constantly in the itineraries this service ingests. Order matters:
// substring matching walks the slice top to bottom and the first hit wins.
var knownLocations = []knownLocation{
	{"batu caves", 3.2379, 101.6811, itinerary.CategoryTemple},
	{"petronas twin towers", 3.1579, 101.7116, itinerary.CategoryAttraction},
	{"suria klcc", 3.1577, 101.7122, itinerary.CategoryShopping},
	{"aquaria klcc", 3.1537, 101.7129, itinerary.CategoryAttraction},
	{"klcc park", 3.1553, 101.7133, itinerary.CategoryNature},
	{"pavilion kuala lumpur", 3.1490, 101.7133, itinerary.CategoryShopping},
	{"bukit bintang", 3.1468, 101.7113, itinerary.CategoryShopping},
	{"jalan alor", 3.1450, 101.7090, itinerary.CategoryRestaurant},
	{"central market", 3.1459, 101.6958, itinerary.CategoryShopping},
	{"petaling street", 3.1440, 101.6980, itinerary.CategoryShopping},
	{"merdeka square", 3.1478, 101.6935, itinerary.CategoryAttraction},
	{"kl tower", 3.1528, 101.7039, itinerary.CategoryAttraction},
	{"kl sentral", 3.1340, 101.6866, itinerary.CategoryTransport},
	{"kuala lumpur international airport", 2.7456, 101.7099, itinerary.CategoryFlight},
	{"klia", 2.7456, 101.7099, itinerary.CategoryFlight},
	{"genting highlands", 3.4236, 101.7932, itinerary.CategoryAttraction},
	{"sunway lagoon", 3.0700, 101.6070, itinerary.CategoryPlayground},
	{"zoo negara", 3.2103, 101.7589, itinerary.CategoryNature},
	{"kidzania kuala lumpur", 3.1577, 101.6095, itinerary.CategoryPlayground},
	{"perdana botanical garden", 3.1423, 101.6840, itinerary.CategoryNature},
	{"islamic arts museum", 3.1416, 101.6890, itinerary.CategoryAttraction},
	{"langkawi", 6.3500, 99.8000, itinerary.CategoryNature},
	{"batu ferringhi", 5.4717, 100.2486, itinerary.CategoryNature},
}

// lookupKnown resolves a name against the dictionary: exact case-insensitive
// match first, then a substring pass where either the query contains a
// dictionary key or the key contains the query's first word.
func lookupKnown(name string) (knownLocation, bool) {
	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return knownLocation{}, false
	}

	for _, loc := range knownLocations {
		if loc.name == query {
			return loc, true
		}
	}

	firstWord := query
	if idx := strings.IndexByte(query, ' '); idx > 0 {
		firstWord = query[:idx]
	}

	for _, loc := range knownLocations {
		if strings.Contains(query, loc.name) || strings.Contains(loc.name, firstWord) {
			return loc, true
		}
	}

	return knownLocation{}, false
}
