package planner

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Prompt construction for every stage. These are pure functions of the trip
// request and accumulated context. Every prompt opens with the language
// directive, states the budget and day count, and recommendation prompts
// demand exactly three options in a fixed structural template. The template is
// a presentation convention only; responses are never parsed back into fields.

func languageDirective(lang string) string {
	native := NativeLanguageName(lang)
	if native != lang {
		return fmt.Sprintf("CRITICAL: Respond ONLY in %s (%s). Every word of your output must be in %s, not English or any other language.", lang, native, lang)
	}
	return fmt.Sprintf("CRITICAL: Respond ONLY in %s. Every word of your output must be in %s, not any other language.", lang, lang)
}

// ResearchPrompt builds the instruction for the search-augmented research
// agent. The three-search request is advisory; the agent's round cap bounds
// the actual number.
func ResearchPrompt(req TripRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", languageDirective(req.Language))
	fmt.Fprintf(&b, "You are a world-class travel researcher. Given a travel destination and the number of days the user wants to travel for, generate a list of 3 search terms for relevant travel activities and accommodations. For each term, use the `search_google` tool to fetch results and analyze them, then return the most relevant insights aligned with the user's preferences.\n\n")
	fmt.Fprintf(&b, "The user has a total budget of ₹%d INR for %d days and prefers information in %s.\n\n", req.Budget, req.Days, req.Language)
	b.WriteString("Present your findings in this format:\n\n")
	b.WriteString("**ACCOMMODATION OPTIONS:**\n")
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&b, "- Option %d: [Name] - [Brief description] - [Price range in INR within the total budget]\n", i)
	}
	b.WriteString("\n**ACTIVITY OPTIONS:**\n")
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&b, "- Option %d: [Activity] - [Description] - [Duration/Time needed] - [Cost in INR]\n", i)
	}
	b.WriteString("\n**DINING OPTIONS:**\n")
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&b, "- Option %d: [Restaurant/Food] - [Cuisine type] - [Price range in INR]\n", i)
	}
	fmt.Fprintf(&b, "\nDestination: %s\nDays: %d\nBudget: %d\nLanguage: %s\n", req.Destination, req.Days, req.Budget, req.Language)
	return b.String()
}

// Per-category field lines of the three-option recommendation template.
var recommendationFields = map[Category][]string{
	CategoryAccommodation: {
		"- Description: [Brief description and key features]",
		"- Price: ₹[amount] per night",
		"- Location: [area/location]",
	},
	CategoryActivity: {
		"- Description: [What to expect and details]",
		"- Cost: ₹[amount] per person",
		"- Duration: [time needed]",
	},
	CategoryDining: {
		"- Cuisine: [Type of cuisine]",
		"- Specialties: [Signature dishes]",
		"- Cost: ₹[amount] per person per meal",
		"- Location: [area/address]",
	},
	CategoryTransportation: {
		"- Description: [Service details and availability]",
		"- Cost: ₹[amount] per day/trip",
		"- Coverage: [Areas served and convenience]",
		"- Booking: [How to book and tips]",
	},
}

var recommendationSubjects = map[Category]string{
	CategoryAccommodation:  "accommodation recommendations",
	CategoryActivity:       "activity recommendations",
	CategoryDining:         "restaurant/dining recommendations",
	CategoryTransportation: "transportation recommendations",
}

var recommendationNamePlaceholders = map[Category]string{
	CategoryAccommodation:  "[Hotel Name]",
	CategoryActivity:       "[Activity Name]",
	CategoryDining:         "[Restaurant Name]",
	CategoryTransportation: "[Service Name/Type]",
}

// RecommendationPrompt builds the follow-up prompt for one non-sentinel
// category preference, demanding exactly three options.
func RecommendationPrompt(c Category, req TripRequest, research, preference string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", languageDirective(req.Language))
	fmt.Fprintf(&b, "Based on the research results and the user's preference for %s in %s, provide exactly 3 specific %s in this format:\n\n",
		preference, req.Destination, recommendationSubjects[c])
	for i := 1; i <= 3; i++ {
		fmt.Fprintf(&b, "**Option %d: %s**\n", i, recommendationNamePlaceholders[c])
		for _, line := range recommendationFields[c] {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteString("- Why recommended: [reason it fits preference]\n\n")
	}
	fmt.Fprintf(&b, "Research context: %s\n", research)
	fmt.Fprintf(&b, "Budget: ₹%d INR total for %d days\n", req.Budget, req.Days)
	return b.String()
}

// SynthesisPrompt builds the final planning prompt. Every selection is
// embedded verbatim, never summarized.
func SynthesisPrompt(req TripRequest, research string, selections map[Category]CategorySelection, specialRequests string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", languageDirective(req.Language))
	b.WriteString("You are a senior travel planner. Based on the research results and user preferences, create a detailed day-wise itinerary. Quote facts from the research results, do not fabricate. Make it engaging and tailored to the user's budget and language.\n\n")
	fmt.Fprintf(&b, "DESTINATION: %s\n", req.Destination)
	fmt.Fprintf(&b, "DURATION: %d days\n", req.Days)
	fmt.Fprintf(&b, "BUDGET: ₹%d INR total\n", req.Budget)
	fmt.Fprintf(&b, "LANGUAGE: %s - use this language for ALL content\n\n", req.Language)
	fmt.Fprintf(&b, "RESEARCH RESULTS:\n%s\n\n", research)
	b.WriteString("USER PREFERENCES AND SPECIFIC SELECTIONS:\n")
	for _, c := range Categories {
		sel := selections[c]
		fmt.Fprintf(&b, "- %s preference: %s\n", cases.Title(language.English).String(string(c)), sel.Preference)
		fmt.Fprintf(&b, "- Selected %s: %s\n", c, strings.Join(sel.Choices, ", "))
	}
	fmt.Fprintf(&b, "- Special Requests: %s\n\n", specialRequests)
	b.WriteString("Create a comprehensive itinerary that includes:\n")
	b.WriteString("1. Day-by-day schedule with specific activities and timing based on the user's exact selections\n")
	b.WriteString("2. The specific accommodation option selected by the user\n")
	b.WriteString("3. The exact restaurants/dining options the user chose\n")
	b.WriteString("4. The selected transportation method throughout the trip\n")
	fmt.Fprintf(&b, "5. Estimated costs within the ₹%d INR total budget, all prices in INR\n", req.Budget)
	b.WriteString("6. Cultural tips and local customs\n")
	b.WriteString("7. Emergency contacts and important safety information\n\n")
	b.WriteString("Format the response clearly with day headers and detailed activities. Structure the itinerary to specifically include the user's selected options rather than generic suggestions, and stay within the stated budget.\n")
	return b.String()
}

// GeocodePrompt asks for coordinates in a strict two-number format.
func GeocodePrompt(destination string) string {
	return fmt.Sprintf("What are the latitude and longitude coordinates for %s?\nRespond ONLY with: latitude,longitude\nExample: 28.6139,77.2090\n", destination)
}

// AssistantSystemPrompt frames the session chat assistant.
const AssistantSystemPrompt = "You are a trip-planning assistant. Use the session context to answer questions, reference the actual research and selections, and offer proactive suggestions when helpful. Keep answers concise, organized, and grounded in the provided data unless the user explicitly asks for speculation."
