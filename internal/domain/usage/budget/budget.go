package budget

// Budget is a daily request quota snapshot for one source.
type Budget struct {
	requestsLimit     int64
	requestsRemaining int64
	isExhausted       bool
	resetsAt          int64 // unix millis, converted to ISO 8601 at transport layer
}

// New creates a Budget snapshot. limit 0 means unlimited; remaining is then -1.
func New(limit, remaining int64, isExhausted bool, resetsAt int64) Budget {
	return Budget{
		requestsLimit:     limit,
		requestsRemaining: remaining,
		isExhausted:       isExhausted,
		resetsAt:          resetsAt,
	}
}

// RequestsLimit returns the daily call cap.
func (b Budget) RequestsLimit() int64 { return b.requestsLimit }

// RequestsRemaining returns calls left today.
func (b Budget) RequestsRemaining() int64 { return b.requestsRemaining }

// IsExhausted reports whether the quota is spent.
func (b Budget) IsExhausted() bool { return b.isExhausted }

// Unlimited reports whether no cap is configured.
func (b Budget) Unlimited() bool { return b.requestsLimit == 0 }

// ResetsAt returns the reset timestamp (unix millis).
func (b Budget) ResetsAt() int64 { return b.resetsAt }
