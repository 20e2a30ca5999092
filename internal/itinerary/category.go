package itinerary

import "strings"

// categoryRule is one rung of the classification ladder.
type categoryRule struct {
	keywords []string
	category Category
}

// The ladder is evaluated top to bottom and the first matching rung wins.
// Keyword overlap across rungs (a "temple garden", a "mall food court") is
// resolved by this order, so the order must stay fixed for reproducible
// output.
var categoryLadder = []categoryRule{
	{[]string{"mall", "shopping", "market", "bazaar", "outlet", "pavilion"}, CategoryShopping},
	{[]string{"restaurant", "cafe", "food", "dinner", "lunch", "breakfast", "eat", "kopitiam", "hawker"}, CategoryRestaurant},
	{[]string{"temple", "mosque", "church", "cave", "shrine"}, CategoryTemple},
	{[]string{"park", "garden", "hill", "forest", "waterfall", "beach", "farm", "zoo"}, CategoryNature},
	{[]string{"hotel", "resort", "check-in", "check in", "checkout", "check-out", "suites", "residence"}, CategoryHotel},
	{[]string{"airport", "station", "train", "bus", "taxi", "transfer", "grab"}, CategoryTransport},
	{[]string{"playground", "kidzania", "play", "theme park", "waterpark"}, CategoryPlayground},
	{[]string{"tower", "museum", "aquarium", "petronas", "genting"}, CategoryAttraction},
}

// InferCategory infers an activity category from keyword containment checks
// against the name. It is a pure function: same name in, same category out.
// Nothing matching falls back to CategoryAttraction.
func InferCategory(name string) Category {
	lower := strings.ToLower(name)

	for _, rule := range categoryLadder {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}

	return CategoryAttraction
}
