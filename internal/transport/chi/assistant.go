package chi

import (
	"net/http"

	assistantuc "github.com/gana36/YELPB/internal/usecase/assistant"
)

// Analyze handles POST /api/assistant/analyze.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	prefs, err := s.assistant.Analyze(r.Context(), req.TextQuery)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, prefs)
}

// AssistantSearch handles POST /api/assistant/search.
func (s *Server) AssistantSearch(w http.ResponseWriter, r *http.Request) {
	var req AssistantSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	coords, err := coordinatesFrom(req.Latitude, req.Longitude)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.assistant.Search(r.Context(), assistantuc.SearchInput{
		Text:        req.TextQuery,
		Coordinates: coords,
		Locale:      req.Locale,
		Limit:       req.Limit,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, AssistantSearchResponse{
		Analysis:    res.Analysis,
		SearchQuery: res.SearchQuery,
		Businesses:  nonNil(res.Businesses),
	})
}
