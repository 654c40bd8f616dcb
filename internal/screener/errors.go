package screener

import "errors"

// Error taxonomy for a screening run. Per-symbol errors are always converted
// into an AnalysisRecord at the orchestrator boundary; nothing here should
// ever abort a batch.
var (
	// ErrFetchTransient marks acquisition failures worth retrying (network
	// timeouts, provider rate-limit signals).
	ErrFetchTransient = errors.New("transient fetch failure")

	// ErrFetchPermanent marks acquisition failures that will not succeed on
	// retry (unknown or delisted symbol).
	ErrFetchPermanent = errors.New("permanent fetch failure")

	// ErrInsufficientHistory means the series has fewer bars than the 200-day
	// moving average requires.
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrBenchmarkUnavailable means the benchmark series could not be
	// obtained at all, which blocks RS computation for the whole run.
	ErrBenchmarkUnavailable = errors.New("benchmark data unavailable")

	// ErrComputation marks an unexpected numeric issue, such as a zero-price
	// bar showing up in a return calculation.
	ErrComputation = errors.New("computation error")
)

// IsRetryable reports whether the orchestrator should retry the acquisition
// that produced err.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrFetchTransient)
}
