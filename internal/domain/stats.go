package domain

// NoReportsYet is reported for the "most common" aggregates when no trip
// contributes a value.
const NoReportsYet = "No reports yet"

// RecentReportsLimit is the number of trips returned in Stats.RecentReports.
const RecentReportsLimit = 5

// Stats summarises every trip a user owns, regardless of status.
type Stats struct {
	TotalReports       int     `json:"totalReports"`
	TotalFish          int     `json:"totalFish"`
	AverageFishPerTrip float64 `json:"averageFishPerTrip"`
	MostCommonSpecies  string  `json:"mostCommonSpecies"`
	BestLocation       string  `json:"bestLocation"`
	RecentReports      []Trip  `json:"recentReports"`
}
