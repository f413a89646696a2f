package pipeline

// BatchOutcome is the result slot for one batch. Done is set once the
// attribution call for that batch has returned, successfully or not.
type BatchOutcome struct {
	Done     bool
	Segments []AttributedSegment
	Err      error
}

// Merge assembles per-batch outcomes, indexed by batch position, into the
// final transcript. Failed batches contribute no segments and one warning
// each. Order is never changed.
func Merge(outcomes []BatchOutcome, batches int) (*Result, error) {
	if len(outcomes) != batches {
		return nil, &MergeInconsistencyError{Batches: batches, Outcomes: len(outcomes)}
	}

	var missing []int
	total := 0
	for i, o := range outcomes {
		if !o.Done {
			missing = append(missing, i)
			continue
		}
		total += len(o.Segments)
	}
	if len(missing) > 0 {
		return nil, &MergeInconsistencyError{Batches: batches, Outcomes: len(outcomes), Missing: missing}
	}

	res := &Result{Segments: make([]AttributedSegment, 0, total)}
	for i, o := range outcomes {
		if o.Err != nil {
			res.Warnings = append(res.Warnings, BatchWarning{Batch: i + 1, Err: o.Err})
			continue
		}
		res.Segments = append(res.Segments, o.Segments...)
	}
	return res, nil
}

// String renders a warning the way it is logged and persisted.
func (w BatchWarning) String() string {
	if w.Err == nil {
		return ""
	}
	return w.Err.Error()
}
