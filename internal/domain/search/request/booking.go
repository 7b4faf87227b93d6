package request

import (
	"fmt"
	"strings"

	"github.com/gana36/YELPB/internal/domain"
	"github.com/gana36/YELPB/internal/domain/business"
)

// DefaultPartySize is used when the caller omits party size.
const DefaultPartySize = 2

// MaxPartySize bounds a single reservation.
const MaxPartySize = 100

// Booking is a validated reservation request. It is sent to the
// conversational source as a natural-language command.
type Booking struct {
	businessName string
	partySize    int
	date         string
	time         string
	coordinates  *business.Coordinates
	locale       string
	chatID       string
}

// NewBooking validates a reservation request. Name, date and time are
// required; party size defaults to 2.
func NewBooking(name string, partySize int, date, at string, coords *business.Coordinates, locale, chatID string) (Booking, error) {
	name, date, at = strings.TrimSpace(name), strings.TrimSpace(date), strings.TrimSpace(at)
	if name == "" || date == "" || at == "" {
		return Booking{}, domain.InvalidArgument("business_name, date, and time are required")
	}
	if partySize == 0 {
		partySize = DefaultPartySize
	}
	if partySize < 0 || partySize > MaxPartySize {
		return Booking{}, domain.InvalidArgument("party_size must be between 1 and %d", MaxPartySize)
	}
	loc, err := NormalizeLocale(locale)
	if err != nil {
		return Booking{}, err
	}
	return Booking{
		businessName: name,
		partySize:    partySize,
		date:         date,
		time:         at,
		coordinates:  coords,
		locale:       loc,
		chatID:       strings.TrimSpace(chatID),
	}, nil
}

// BusinessName returns the restaurant name.
func (b Booking) BusinessName() string { return b.businessName }

// PartySize returns the number of guests.
func (b Booking) PartySize() int { return b.partySize }

// Date returns the requested date as given by the caller.
func (b Booking) Date() string { return b.date }

// Time returns the requested time as given by the caller.
func (b Booking) Time() string { return b.time }

// Command renders the reservation as a natural-language instruction.
func (b Booking) Command() string {
	return fmt.Sprintf("Book a table for %d people at %s on %s at %s",
		b.partySize, b.businessName, b.date, b.time)
}

// Chat returns the conversational request that carries the command.
func (b Booking) Chat() Chat {
	return Chat{
		query:       b.Command(),
		coordinates: b.coordinates,
		locale:      b.locale,
		chatID:      b.chatID,
	}
}
