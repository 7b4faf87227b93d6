package assistant

import "fmt"

// SystemInstruction frames the analyzer as a preference extractor.
const SystemInstruction = `You extract restaurant preferences from a user's message.
Only extract preferences that are explicitly mentioned. Do not make assumptions.
If nothing is mentioned, return empty arrays and null values.
Respond with a single JSON object and nothing else.`

// AnalysisPrompt builds the user prompt for one message.
func AnalysisPrompt(text string) string {
	return fmt.Sprintf(`User message: %q

Extract the following if mentioned:
- cuisine_preferences: array of cuisine types (e.g. ["Italian", "Japanese"])
- price_range: one of "$", "$$", "$$$", "$$$$" based on keywords like cheap, moderate or expensive
- ambiance_preferences: dining vibe (e.g. "Casual", "Romantic", "Trendy", "Fine Dining")
- dietary_restrictions: array of dietary needs (e.g. ["Vegetarian", "Vegan", "Gluten-Free"])
- user_intent: brief summary of what they are looking for
- unified_search_query: the single best short search query for a restaurant search engine
- confidence: how confident you are, from 0 to 1`, text)
}
