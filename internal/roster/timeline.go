package roster

// ─── Timeline projector ──────────────────────────────────────────────────────

// Timeline is the normalized Gantt projection for one division view. Start
// and End carry a two-day visual margin on each side of the tightest job
// range; Rows keep the filtered job order, not date order.
type Timeline struct {
	Start   Date          `json:"start"`
	End     Date          `json:"end"`
	Markers []Date        `json:"markers"`
	Rows    []TimelineRow `json:"rows"`
}

// TimelineRow positions one job's bar. StartOffset and Duration are fractions
// (0–1) of the padded span, ready for percentage-based placement.
type TimelineRow struct {
	Job         Job     `json:"job"`
	StartOffset float64 `json:"startOffset"`
	Duration    float64 `json:"duration"`
	CrewCount   int     `json:"crewCount"`
	HasForeman  bool    `json:"hasForeman"`
}

// timelinePadDays is the visual margin added on each side of the job range.
const timelinePadDays = 2

// BuildTimeline derives the Gantt projection from a (division-filtered) job
// list. Undated jobs are skipped, not errored; with no dated jobs at all the
// result is nil, meaning "nothing to draw".
func BuildTimeline(jobs []Job) *Timeline {
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
	min = min.AddDays(-timelinePadDays)
	max = max.AddDays(timelinePadDays)

	span := min.DaysUntil(max)
	markers := make([]Date, 0, span+1)
	for d := min; !d.After(max); d = d.AddDays(markerInterval(span)) {
		markers = append(markers, d)
	}

	tl := &Timeline{Start: min, End: max, Markers: markers, Rows: make([]TimelineRow, 0, len(dated))}
	for _, j := range dated {
		var offset, duration float64
		if span > 0 {
			offset = float64(min.DaysUntil(j.StartDate)) / float64(span)
			duration = float64(j.StartDate.DaysUntil(j.EndDate)) / float64(span)
		}
		tl.Rows = append(tl.Rows, TimelineRow{
			Job:         j,
			StartOffset: offset,
			Duration:    duration,
			CrewCount:   len(j.Crew),
			HasForeman:  j.HasForeman(),
		})
	}
	return tl
}

// markerInterval picks the marker step in days from the total span: wide
// ranges get sparser markers.
func markerInterval(spanDays int) int {
	switch {
	case spanDays > 60:
		return 7
	case spanDays > 30:
		return 5
	case spanDays > 14:
		return 3
	default:
		return 1
	}
}
