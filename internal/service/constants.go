package service

const (
	// Sync paging and batching
	ActivitiesPerPage = 100
	AnalyzeBatchSize  = 50 // rides analyzed per sync; each costs three API calls

	// Pagination limits
	RecentRidesLimit = 50

	// Strava streams are per-second
	StravaSampleRateHz = 1
)
