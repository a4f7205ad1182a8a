package usecase

// EntityStats counts upsert outcomes for competitions or teams. Values are
// folded, never mutated in place, so per-competition results can be produced
// concurrently and merged afterwards.
type EntityStats struct {
	New     int `json:"new"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

func (s EntityStats) Record(outcome UpsertOutcome) EntityStats {
	switch outcome {
	case OutcomeInserted:
		s.New++
	case OutcomeUpdated:
		s.Updated++
	default:
		s.Errors++
	}
	return s
}

func (s EntityStats) Failed() EntityStats {
	s.Errors++
	return s
}

func (s EntityStats) Merge(other EntityStats) EntityStats {
	return EntityStats{
		New:     s.New + other.New,
		Updated: s.Updated + other.Updated,
		Errors:  s.Errors + other.Errors,
	}
}

// MatchStats adds processed (records examined) and skipped (competitions whose
// fetch failed) to the upsert counters.
type MatchStats struct {
	Processed int `json:"processed"`
	New       int `json:"new"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

func (s MatchStats) Record(outcome UpsertOutcome) MatchStats {
	s.Processed++
	switch outcome {
	case OutcomeInserted:
		s.New++
	case OutcomeUpdated:
		s.Updated++
	default:
		s.Errors++
	}
	return s
}

func (s MatchStats) FetchFailed() MatchStats {
	s.Skipped++
	s.Errors++
	return s
}

func (s MatchStats) Merge(other MatchStats) MatchStats {
	return MatchStats{
		Processed: s.Processed + other.Processed,
		New:       s.New + other.New,
		Updated:   s.Updated + other.Updated,
		Skipped:   s.Skipped + other.Skipped,
		Errors:    s.Errors + other.Errors,
	}
}

// SyncSummary aggregates the stages of one run. Stages that did not run are nil.
type SyncSummary struct {
	Competitions *EntityStats `json:"competitions,omitempty"`
	Teams        *EntityStats `json:"teams,omitempty"`
	Matches      *MatchStats  `json:"matches,omitempty"`
}

// AsMap renders the summary for the sync run audit log.
func (s SyncSummary) AsMap() map[string]any {
	out := make(map[string]any, 3)
	if s.Competitions != nil {
		out["competitions"] = entityStatsMap(*s.Competitions)
	}
	if s.Teams != nil {
		out["teams"] = entityStatsMap(*s.Teams)
	}
	if s.Matches != nil {
		out["matches"] = map[string]any{
			"processed": s.Matches.Processed,
			"new":       s.Matches.New,
			"updated":   s.Matches.Updated,
			"skipped":   s.Matches.Skipped,
			"errors":    s.Matches.Errors,
		}
	}
	return out
}

func entityStatsMap(s EntityStats) map[string]any {
	return map[string]any{
		"new":     s.New,
		"updated": s.Updated,
		"errors":  s.Errors,
	}
}
