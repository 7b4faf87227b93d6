package result

import (
	"encoding/json"

	"github.com/gana36/YELPB/internal/domain/business"
)

// Chat is the outcome of one conversational request.
type Chat struct {
	// ResponseText is the source's natural-language answer.
	ResponseText string
	// ChatID continues the conversation on the next request.
	ChatID     string
	Businesses []business.Business
	Types      json.RawMessage
	// Raw is the undecoded response, exposed only on the debug channel.
	Raw json.RawMessage
}

// Listing is one page of a listing search.
type Listing struct {
	Businesses []business.Business
	// Total is the source's count of all matches, not the page size.
	Total int
}
