package usage

// QuotaReader provides read-only access to one source's quota state.
type QuotaReader interface {
	Source() string
	DailyLimit() int64
	DailyUsed() int64
	RemainingDaily() int64
}
