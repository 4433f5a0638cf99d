package roster

// ─── Manpower forecaster ─────────────────────────────────────────────────────

// Forecast compares daily crew demand against a constant worker supply. Days
// run from the earliest start to the latest end of the dated jobs, inclusive,
// with no padding. Supply is the division's total pool size, not its
// currently free head count.
type Forecast struct {
	Supply int           `json:"supply"`
	Days   []ForecastDay `json:"days"`
}

// ForecastDay is one point of the demand series. Shortage is set when demand
// exceeds supply; consumers reconstruct contiguous shortage regions from the
// pointwise flags.
type ForecastDay struct {
	Date     Date `json:"date"`
	Demand   int  `json:"demand"`
	Shortage bool `json:"shortage"`
}

// BuildForecast derives the daily demand series from a (division-filtered)
// job list. Demand on a day is the sum of crewSize over every job whose
// inclusive date range contains that day. With no dated jobs the result is
// nil: nothing to forecast, not an error.
func BuildForecast(jobs []Job, supply int) *Forecast {
	dated := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		if j.Dated() {
			dated = append(dated, j)
		}
	}
	if len(dated) == 0 {
		return nil
	}

	min, max := dated[0].StartDate, dated[0].EndDate
	for _, j := range dated[1:] {
		if j.StartDate.Before(min) {
			min = j.StartDate
		}
		if j.EndDate.After(max) {
			max = j.EndDate
		}
	}

	f := &Forecast{Supply: supply, Days: make([]ForecastDay, 0, min.DaysUntil(max)+1)}
	for d := min; !d.After(max); d = d.AddDays(1) {
		demand := 0
		for _, j := range dated {
			if j.CoversDay(d) {
				demand += j.CrewSize
			}
		}
		f.Days = append(f.Days, ForecastDay{Date: d, Demand: demand, Shortage: demand > supply})
	}
	return f
}
