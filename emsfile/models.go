package emsfile

// PrecinctRecord is one line of the precinct / ballot type cross
// reference export.
type PrecinctRecord struct {
	BallotType     string `csv:"BallotType"`     // ballot type voted in the precinct
	PrecinctID     string `csv:"PrecinctID"`     // full precinct ID, split suffix included
	PrecinctName   string `csv:"PrecinctName"`   // display name
	DistrictIDs    string `csv:"DistrictIDs"`    // space-separated district IDs the precinct sits in
	ExtPrecinctIDs string `csv:"ExtPrecinctIDs"` // space-separated externally assigned IDs
}

// DistrictRecord is one line of the district name export.
type DistrictRecord struct {
	DistrictID     string `csv:"DistrictID"`     // canonical district ID
	DistrictName   string `csv:"DistrictName"`   // display name, portion included
	ExtDistrictIDs string `csv:"ExtDistrictIDs"` // space-separated externally assigned IDs
}

// ContestRecord is one line of a contest definition file, either the
// master composite or a per ballot type file.
type ContestRecord struct {
	ContestID           string `csv:"ContestID"`           // canonical contest ID
	ContestTitle        string `csv:"ContestTitle"`        // display title
	ElectedByDistrictID string `csv:"ElectedByDistrictID"` // district electing the contest
	RotationID          string `csv:"RotationID"`          // rotation rule, 0 for unrotated
	ExtContestIDs       string `csv:"ExtContestIDs"`       // space-separated externally assigned IDs
	CandidateIDs        string `csv:"CandidateIDs"`        // space-separated candidate IDs
	CandidateNames      string `csv:"CandidateNames"`      // candidate names joined by ~, aligned with CandidateIDs
}
