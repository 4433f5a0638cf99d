package roster

import "fmt"

// ─── Division filter ─────────────────────────────────────────────────────────

// Selector scopes a view to one division, or to everything.
type Selector string

const (
	SelectAll         Selector = "all"
	SelectCommercial  Selector = "commercial"
	SelectResidential Selector = "residential"
)

// ParseSelector converts a raw string to a Selector; the empty string means
// all.
func ParseSelector(s string) (Selector, error) {
	if s == "" {
		return SelectAll, nil
	}
	sel := Selector(s)
	switch sel {
	case SelectAll, SelectCommercial, SelectResidential:
		return sel, nil
	}
	return "", fmt.Errorf("unknown division selector %q", s)
}

// FilterJobs returns the order-preserving subsequence of jobs whose division
// matches the selector. SelectAll returns the input unchanged; the input is
// never mutated.
func FilterJobs(jobs []Job, sel Selector) []Job {
	if sel == SelectAll {
		return jobs
	}
	out := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		if j.Division == Division(sel) {
			out = append(out, j)
		}
	}
	return out
}

// FilterWorkers returns the workers counting toward the selector's pool: a
// worker belongs when its division equals the selector or is "both".
func FilterWorkers(workers []Worker, sel Selector) []Worker {
	if sel == SelectAll {
		return workers
	}
	out := make([]Worker, 0, len(workers))
	for _, w := range workers {
		if w.Division == Division(sel) || w.Division == DivisionBoth {
			out = append(out, w)
		}
	}
	return out
}

// PoolSize is the total-capacity head count for a division: every matching
// worker counts, assigned or not.
func PoolSize(workers []Worker, sel Selector) int {
	return len(FilterWorkers(workers, sel))
}
