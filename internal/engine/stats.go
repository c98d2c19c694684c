package engine

// Stats is a point-in-time census of the memory workspace.
type Stats struct {
	Entities     int     `json:"entities"`
	Archived     int     `json:"archived"`
	Triplets     int     `json:"triplets"`
	DailyLogs    int     `json:"daily_logs"`
	ScoredEvents int     `json:"scored_events"`
	Consolidated int     `json:"consolidated"`
	Pending      int     `json:"pending"`
	MeanSurprise float64 `json:"mean_surprise"`
}

// Pending counts records at or above the threshold that have not been
// consolidated yet.
func (e *Engine) Stats(threshold float64) (*Stats, error) {
	st := &Stats{}

	names, err := e.Entities.Names()
	if err != nil {
		return nil, err
	}
	st.Entities = len(names)

	archived, err := e.Entities.ArchivedNames()
	if err != nil {
		return nil, err
	}
	st.Archived = len(archived)

	st.Triplets, err = e.Graph.Count()
	if err != nil {
		return nil, err
	}

	dates, err := e.WS.DailyDates()
	if err != nil {
		return nil, err
	}
	st.DailyLogs = len(dates)

	records, err := e.LoadScores()
	if err != nil {
		return nil, err
	}
	st.ScoredEvents = len(records)
	sum := 0.0
	for _, r := range records {
		sum += r.Score
		if r.Consolidated {
			st.Consolidated++
		} else if r.Score >= threshold {
			st.Pending++
		}
	}
	if len(records) > 0 {
		st.MeanSurprise = sum / float64(len(records))
	}
	return st, nil
}
