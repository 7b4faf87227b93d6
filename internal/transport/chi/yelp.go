package chi

import (
	"net/http"

	"github.com/oapi-codegen/runtime"

	"github.com/gana36/YELPB/internal/domain"
	"github.com/gana36/YELPB/internal/domain/search/request"
	"github.com/gana36/YELPB/internal/domain/search/sortby"
)

// Chat handles POST /api/yelp/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var uc UserContext
	if req.UserContext != nil {
		uc = *req.UserContext
	}
	coords, err := coordinatesFrom(uc.Latitude, uc.Longitude)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	chat, err := request.NewChat(req.Query, coords, uc.Locale, req.ChatID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.search.Chat(r.Context(), chat)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, ChatResponse{
		ResponseText: res.ResponseText,
		ChatID:       res.ChatID,
		Businesses:   nonNil(res.Businesses),
		Types:        res.Types,
		RawResponse:  res.Raw,
	})
}

// Search handles POST /api/yelp/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	coords, err := coordinatesFrom(req.Latitude, req.Longitude)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	chat, err := request.NewChat(req.Query, coords, req.Locale, "")
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	bs, err := s.search.Search(r.Context(), chat)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, nonNil(bs))
}

// BookReservation handles POST /api/yelp/book-reservation.
func (s *Server) BookReservation(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	coords, err := coordinatesFrom(req.Latitude, req.Longitude)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	booking, err := request.NewBooking(req.BusinessName, req.PartySize, req.Date, req.Time, coords, req.Locale, req.ChatID)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.search.Book(r.Context(), booking)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, BookingResponse{
		Success: true,
		Message: res.ResponseText,
		ChatID:  res.ChatID,
		BookingDetails: BookingDetails{
			BusinessName: booking.BusinessName(),
			PartySize:    booking.PartySize(),
			Date:         booking.Date(),
			Time:         booking.Time(),
		},
		Businesses: nonNil(res.Businesses),
	})
}

// CombinedSearch handles POST /api/yelp/combined-search.
func (s *Server) CombinedSearch(w http.ResponseWriter, r *http.Request) {
	var req CombinedSearchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	coords, err := coordinatesFrom(req.Latitude, req.Longitude)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	combined, err := request.NewCombined(request.CombinedParams{
		Query:       req.Query,
		Term:        req.Term,
		Coordinates: coords,
		Radius:      req.Radius,
		Categories:  req.Categories,
		Price:       req.Price,
		Limit:       req.Limit,
		Locale:      req.Locale,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx := r.Context()
	usage := domain.SourceUsageFromContext(ctx)
	if usage == nil {
		ctx, usage = domain.NewContextWithSourceUsage(ctx)
	}

	bs, err := s.search.Combined(ctx, combined)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setDegradedHeader(w, usage)
	writeJSON(w, r, http.StatusOK, nonNil(bs))
}

// ListBusinesses handles GET /api/yelp/businesses.
func (s *Server) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	params, err := bindListBusinessesParams(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	coords, err := coordinatesFrom(&params.Latitude, &params.Longitude)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	listing, err := request.NewListing(request.ListingParams{
		Coordinates: coords,
		Term:        deref(params.Term),
		Radius:      deref(params.Radius),
		Categories:  deref(params.Categories),
		Price:       deref(params.Price),
		OpenNow:     deref(params.OpenNow),
		Attributes:  deref(params.Attributes),
		SortBy:      sortby.SortBy(deref(params.SortBy)),
		Limit:       deref(params.Limit),
		Offset:      deref(params.Offset),
		Locale:      deref(params.Locale),
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	res, err := s.search.Listing(r.Context(), listing)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ListBusinessesResponse{
		Businesses: nonNil(res.Businesses),
		Total:      res.Total,
	})
}

// bindListBusinessesParams binds form-style query parameters. Lists are
// comma separated (categories=italian,pizza).
func bindListBusinessesParams(r *http.Request) (ListBusinessesParams, error) {
	var p ListBusinessesParams
	q := r.URL.Query()

	bindings := []struct {
		name     string
		required bool
		explode  bool
		dest     any
	}{
		{"latitude", true, true, &p.Latitude},
		{"longitude", true, true, &p.Longitude},
		{"term", false, true, &p.Term},
		{"radius", false, true, &p.Radius},
		{"categories", false, false, &p.Categories},
		{"price", false, false, &p.Price},
		{"open_now", false, true, &p.OpenNow},
		{"attributes", false, false, &p.Attributes},
		{"sort_by", false, true, &p.SortBy},
		{"limit", false, true, &p.Limit},
		{"offset", false, true, &p.Offset},
		{"locale", false, true, &p.Locale},
	}
	for _, b := range bindings {
		if err := runtime.BindQueryParameter("form", b.explode, b.required, b.name, q, b.dest); err != nil {
			return ListBusinessesParams{}, err
		}
	}
	return p, nil
}
