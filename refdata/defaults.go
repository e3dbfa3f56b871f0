package refdata

// defaultCatalog is the built-in reference data set. The orderings are
// part of the reporting contract and must not be rearranged.
var defaultCatalog = catalogFile{
	StatTypes: []StatType{
		{ID: "RSReg", Name: "Registered Voters"},
		{ID: "RSCst", Name: "Ballots Cast", Counted: true},
		{ID: "RSRej", Name: "Ballots Rejected", Counted: true},
		{ID: "RSOvr", Name: "Overvotes", Counted: true},
		{ID: "RSUnd", Name: "Undervotes", Counted: true},
		{ID: "RSTot", Name: "Total Votes", Counted: true},
		{ID: "RSVot", Name: "Votes Counted", Counted: true},
		{ID: "RSTrn", Name: "Voter Turnout"},
		{ID: "RSEli", Name: "Eligible Voters"},
		{ID: "RSUnc", Name: "Uncounted Ballots", Counted: true},
		{ID: "RSWri", Name: "Write-in Votes", Counted: true},
		{ID: "RSExh", Name: "Exhausted Ballots", Counted: true},
		{ID: "RSSki", Name: "Skipped Rankings", Counted: true},
	},
	Groups: []VotingGroup{
		{ID: "TO", Name: "Total"},
		{ID: "ED", Name: "Election Day"},
		{ID: "MV", Name: "Vote by Mail"},
		{ID: "EV", Name: "Early Voting"},
		{ID: "IA", Name: "In-Person Absentee"},
		{ID: "PV", Name: "Provisional"},
		{ID: "XA", Name: "Other Absentee"},
	},
	Styles: []Style{
		{
			ID:             "EMS",
			Name:           "Summary results",
			StatTypeIDs:    []string{"RSReg", "RSCst", "RSRej", "RSOvr", "RSUnd", "RSTot"},
			VotingGroupIDs: []string{"TO", "ED", "MV"},
		},
		{
			ID:             "EMSW",
			Name:           "Summary results with write-ins",
			StatTypeIDs:    []string{"RSReg", "RSCst", "RSRej", "RSOvr", "RSUnd", "RSTot", "RSWri"},
			VotingGroupIDs: []string{"TO", "ED", "MV"},
			WriteIns:       true,
		},
		{
			ID:             "EMR",
			Name:           "Ranked choice rounds",
			StatTypeIDs:    []string{"RSReg", "RSCst", "RSRej", "RSOvr", "RSUnd", "RSTot", "RSExh", "RSSki"},
			VotingGroupIDs: []string{"TO"},
		},
		{
			ID:             "EMRW",
			Name:           "Ranked choice rounds with write-ins",
			StatTypeIDs:    []string{"RSReg", "RSCst", "RSRej", "RSOvr", "RSUnd", "RSTot", "RSExh", "RSSki", "RSWri"},
			VotingGroupIDs: []string{"TO"},
			WriteIns:       true,
		},
		{
			ID:             "EMT",
			Name:           "Turnout",
			StatTypeIDs:    []string{"RSReg", "RSCst", "RSVot", "RSTrn"},
			VotingGroupIDs: []string{"TO", "ED", "MV", "EV", "IA", "PV", "XA"},
		},
		{
			ID:             "EMC",
			Name:           "Candidate choices",
			StatTypeIDs:    []string{"RSReg", "RSCst", "RSOvr", "RSUnd", "RSTot"},
			VotingGroupIDs: []string{"TO", "ED", "MV"},
		},
		{
			ID:             "EMCW",
			Name:           "Candidate choices with write-ins",
			StatTypeIDs:    []string{"RSReg", "RSCst", "RSOvr", "RSUnd", "RSTot", "RSWri"},
			VotingGroupIDs: []string{"TO", "ED", "MV"},
			WriteIns:       true,
		},
		{
			ID:             "EMTE",
			Name:           "Turnout with eligibility",
			StatTypeIDs:    []string{"RSReg", "RSCst", "RSVot", "RSTrn", "RSEli", "RSUnc"},
			VotingGroupIDs: []string{"TO", "ED", "MV", "EV", "IA", "PV", "XA"},
		},
	},
}
