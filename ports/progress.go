package ports

// ProgressReporter receives coarse progress updates from long-running
// permutation loops. Report is called at batch granularity, possibly from
// concurrent workers; implementations must be safe for concurrent use and
// must not block the caller for long.
type ProgressReporter interface {
	Report(completed, total int)
}

// ProgressFunc adapts a function to the ProgressReporter interface
type ProgressFunc func(completed, total int)

func (f ProgressFunc) Report(completed, total int) {
	f(completed, total)
}
