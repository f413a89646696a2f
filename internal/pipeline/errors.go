package pipeline

import "fmt"

// ConfigurationError reports an invalid, caller-fixable pipeline setting.
type ConfigurationError struct {
	Field string
	Value any
	Msg   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Msg)
}

// AttributionError is a per-batch failure. It never aborts a run.
type AttributionError struct {
	Batch int // 0-based batch index
	Err   error
}

func (e *AttributionError) Error() string {
	return fmt.Sprintf("batch %d: attribution failed: %v", e.Batch+1, e.Err)
}

func (e *AttributionError) Unwrap() error { return e.Err }

// MergeInconsistencyError means batch bookkeeping went wrong before merging.
// It signals a bug rather than a runtime condition.
type MergeInconsistencyError struct {
	Batches  int
	Outcomes int
	Missing  []int
}

func (e *MergeInconsistencyError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("merge inconsistency: %d batches, unfilled slots %v", e.Batches, e.Missing)
	}
	return fmt.Sprintf("merge inconsistency: %d batches but %d outcomes", e.Batches, e.Outcomes)
}
