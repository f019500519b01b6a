package operation

// BulkResult aggregates the per-operation Results from Adapter.ExecuteBulk.
type BulkResult struct {
	Results      []Result
	SuccessCount int
	FailureCount int
}

// NewBulkResult tallies SuccessCount/FailureCount from results.
func NewBulkResult(results []Result) BulkResult {
	br := BulkResult{Results: results}
	for _, r := range results {
		if r.Success {
			br.SuccessCount++
		} else {
			br.FailureCount++
		}
	}
	return br
}
