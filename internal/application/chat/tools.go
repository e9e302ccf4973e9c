package chat

import (
	"strings"

	domainChat "github.com/tourassist/backend/internal/domain/chat"
)

// Opening hours replies
const (
	AskForPlaceReply  = "Please specify the place name you are asking about."
	HoursUnknownReply = "Hours unavailable. Please contact the venue."
)

var openingHours = map[string]string{
	"spa":      "Spa opens at 9am on Sundays",
	"museum":   "Museum opens at 10am daily",
	"aquarium": "Aquarium opens at 8am on weekends",
}

// places in match order
var knownPlaces = []string{"spa", "museum", "aquarium"}

// OpeningHoursRouter answers opening-hours questions from a static table
type OpeningHoursRouter struct{}

var _ domainChat.ToolRouter = OpeningHoursRouter{}

// NewOpeningHoursRouter creates the default tool router
func NewOpeningHoursRouter() OpeningHoursRouter {
	return OpeningHoursRouter{}
}

// Route handles any message mentioning "open"
func (OpeningHoursRouter) Route(message string) domainChat.ToolDecision {
	lower := strings.ToLower(message)
	if !strings.Contains(lower, "opening hours") && !strings.Contains(lower, "open") {
		return domainChat.ToolDecision{}
	}

	place := ExtractPlace(message)
	if place == "" {
		return domainChat.ToolDecision{Handled: true, Tool: "opening_hours", Response: AskForPlaceReply}
	}
	return domainChat.ToolDecision{Handled: true, Tool: "opening_hours", Response: LookupOpeningHours(place)}
}

// ExtractPlace returns the first known place among the message's words
func ExtractPlace(message string) string {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(message)) {
		words[strings.Trim(w, "?.,!")] = struct{}{}
	}
	for _, candidate := range knownPlaces {
		if _, ok := words[candidate]; ok {
			return candidate
		}
	}
	return ""
}

// LookupOpeningHours returns the hours of place, or HoursUnknownReply
func LookupOpeningHours(place string) string {
	if hours, ok := openingHours[strings.ToLower(strings.TrimSpace(place))]; ok {
		return hours
	}
	return HoursUnknownReply
}
