package roster

// ─── Dashboard stats ─────────────────────────────────────────────────────────

// Stats is the dashboard summary: head counts, utilization, and foreman
// availability.
type Stats struct {
	TotalWorkers     int `json:"totalWorkers"`
	TotalJobs        int `json:"totalJobs"`
	Assigned         int `json:"workersAssigned"`
	UtilizationPct   int `json:"utilizationRate"`
	Foremen          int `json:"totalForemen"`
	ForemenAvailable int `json:"foremenAvailable"`
}

// ComputeStats summarizes worker/job snapshots. Utilization is the assigned
// share of all workers, rounded to whole percent; zero workers yields zero.
func ComputeStats(workers []Worker, jobs []Job) Stats {
	st := Stats{TotalWorkers: len(workers), TotalJobs: len(jobs)}
	for _, w := range workers {
		if w.Status == StatusAssigned {
			st.Assigned++
		}
		if w.IsForeman {
			st.Foremen++
			if w.Status == StatusAvailable {
				st.ForemenAvailable++
			}
		}
	}
	if st.TotalWorkers > 0 {
		st.UtilizationPct = int(float64(st.Assigned)/float64(st.TotalWorkers)*100 + 0.5)
	}
	return st
}
