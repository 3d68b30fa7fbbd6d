package pipeline

import (
	"errors"

	"filesorter-ai/internal/service"
)

// Stats counts what happened during one Run.
type Stats struct {
	// Scanned is the number of entries found on disk.
	Scanned int `json:"scanned"`
	// Cached is the number of entries that already had a stored label and were not re-queued.
	Cached int `json:"cached"`
	// CacheHits is the number of queued entries labelled from another directory's record.
	CacheHits int `json:"cache_hits"`
	// ModelCalls is the number of entries sent to the model.
	ModelCalls int `json:"model_calls"`
	// Timeouts is the number of model calls that ran out of time.
	Timeouts int `json:"timeouts"`
	// Failures is the number of entries left without a label because of an error.
	Failures int `json:"failures"`
	// Hints is the number of entries flagged for another attempt.
	Hints int `json:"hints"`
	// Cleaned is the number of empty records removed before the run.
	Cleaned int `json:"cleaned"`
	// ConsistencyChanges is the number of labels the consistency pass changed.
	ConsistencyChanges int `json:"consistency_changes"`
}

// record folds one categorization result into the counters.
func (s *Stats) record(res service.Result) {
	var credErr *service.CredentialError
	switch {
	case res.Source == service.SourceCache:
		s.CacheHits++
	case res.Err != nil && errors.As(res.Err, &credErr):
		// The model was never called.
	default:
		s.ModelCalls++
	}

	if res.Err != nil {
		s.Failures++
		if errors.Is(res.Err, service.ErrTimeout) {
			s.Timeouts++
		}
	}
	if res.Hint != nil {
		s.Hints++
	}
}
