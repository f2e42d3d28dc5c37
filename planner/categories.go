package planner

import "github.com/samber/lo"

// Category is one of the four preference dimensions a traveler refines
// before synthesis.
type Category string

const (
	CategoryAccommodation  Category = "accommodation"
	CategoryActivity       Category = "activity"
	CategoryDining         Category = "dining"
	CategoryTransportation Category = "transportation"
)

// Categories lists every refinement category in presentation order.
var Categories = []Category{
	CategoryAccommodation,
	CategoryActivity,
	CategoryDining,
	CategoryTransportation,
}

// PreferenceOption pairs a selectable preference label with its static
// human-readable description.
type PreferenceOption struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// CategorySpec describes the fixed preference menu of one category.
// Choosing the Sentinel label suppresses the recommendation call entirely.
type CategorySpec struct {
	Category    Category           `json:"category"`
	Options     []PreferenceOption `json:"options"`
	Sentinel    string             `json:"sentinel"`
	MultiChoice bool               `json:"multiChoice"`
}

var categorySpecs = map[Category]CategorySpec{
	CategoryAccommodation: {
		Category: CategoryAccommodation,
		Sentinel: "No Preference",
		Options: []PreferenceOption{
			{"Luxury Hotels (₹15,000-40,000+ per night)", "Premium hotels with high-end amenities, concierge services, and prime locations"},
			{"Mid-range Hotels (₹4,000-15,000 per night)", "Comfortable hotels with good amenities, central locations, and reliable service"},
			{"Budget Hotels/Hostels (₹800-4,000 per night)", "Basic accommodations, shared facilities, perfect for budget travelers"},
			{"Local Guesthouses (₹1,500-6,000 per night)", "Authentic local experience, family-run establishments, cultural immersion"},
			{"Vacation Rentals (₹2,500-20,000 per night)", "Apartments, houses, or condos with kitchen facilities and more space"},
			{"No Preference", "Let the AI choose the best option based on your budget and destination"},
		},
	},
	CategoryActivity: {
		Category:    CategoryActivity,
		Sentinel:    "Mix of Everything",
		MultiChoice: true,
		Options: []PreferenceOption{
			{"Adventure & Sports (₹2,000-10,000 per activity)", "Hiking, water sports, extreme activities, outdoor adventures"},
			{"Cultural & Historical (₹500-3,000 per site)", "Museums, historical sites, cultural tours, art galleries"},
			{"Relaxation & Wellness (₹1,500-8,000 per session)", "Spas, beaches, yoga retreats, peaceful activities"},
			{"Shopping & Entertainment (₹1,000-5,000 per experience)", "Markets, malls, nightlife, shows, entertainment venues"},
			{"Nature & Wildlife (₹1,000-6,000 per experience)", "National parks, wildlife viewing, botanical gardens, nature trails"},
			{"Mix of Everything", "Balanced combination of different activity types"},
		},
	},
	CategoryDining: {
		Category:    CategoryDining,
		Sentinel:    "No Preference",
		MultiChoice: true,
		Options: []PreferenceOption{
			{"Fine Dining (₹3,500-10,000+ per meal)", "High-end restaurants, chef's specials, gourmet experiences"},
			{"Local Street Food (₹200-800 per meal)", "Authentic local cuisine, food markets, street vendors"},
			{"Mix of Both (₹800-4,000 per meal)", "Combination of upscale and local dining experiences"},
			{"Vegetarian/Vegan (₹400-2,500 per meal)", "Plant-based restaurants and vegetarian-friendly options"},
			{"Budget-Friendly (₹300-1,500 per meal)", "Affordable restaurants, local eateries, good value meals"},
			{"No Preference", "Let the AI recommend based on local specialties and budget"},
		},
	},
	CategoryTransportation: {
		Category: CategoryTransportation,
		Sentinel: "No Preference",
		Options: []PreferenceOption{
			{"Public Transport (₹50-500 per day)", "Buses, trains, metro - economical and authentic local experience"},
			{"Rental Car (₹2,000-6,000 per day)", "Freedom to explore at your own pace, access to remote locations"},
			{"Walking/Cycling (₹200-800 per day for rentals)", "Eco-friendly, great for short distances and city exploration"},
			{"Ride-sharing/Taxi (₹500-2,000 per trip)", "Convenient door-to-door service, good for specific destinations"},
			{"Tour Groups (₹1,500-5,000 per day)", "Organized transportation with guided experiences"},
			{"No Preference", "Mix of transportation methods based on convenience and cost"},
		},
	},
}

// Spec returns the fixed menu for a category.
func Spec(c Category) (CategorySpec, bool) {
	spec, ok := categorySpecs[c]
	return spec, ok
}

// ParseCategory maps a path segment to a known category.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	if lo.Contains(Categories, c) {
		return c, true
	}
	return "", false
}

// ValidPreference reports whether label is one of the category's fixed options.
func (s CategorySpec) ValidPreference(label string) bool {
	return lo.ContainsBy(s.Options, func(o PreferenceOption) bool {
		return o.Label == label
	})
}

// IsSentinel reports whether label is the category's "no preference" option.
func (s CategorySpec) IsSentinel(label string) bool {
	return label == s.Sentinel
}
