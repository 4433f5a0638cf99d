// Package roster contains the pure business logic for the Man Loader service:
// the worker/job entity store, the assignment engine, the division filter, and
// the derived timeline and manpower-forecast projections.
// It is transport-agnostic: used by the HTTP handler (handler.go) and by the
// persistence adapter (internal/persist).
package roster

import (
	"fmt"
	"time"
)

// ─── Enumerations ────────────────────────────────────────────────────────────

// Role is the informational skill tier of a worker. It is independent of the
// IsForeman capability flag: a journeyman may carry the foreman flag.
type Role string

const (
	RoleForeman    Role = "foreman"
	RoleJourneyman Role = "journeyman"
	RoleApprentice Role = "apprentice"
)

// ParseRole converts a raw string to a Role, returning an error for unknown
// values.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	switch r {
	case RoleForeman, RoleJourneyman, RoleApprentice:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Division is the organizational scope used to partition jobs and to filter
// worker eligibility. DivisionBoth is valid for workers only.
type Division string

const (
	DivisionCommercial  Division = "commercial"
	DivisionResidential Division = "residential"
	DivisionBoth        Division = "both"
)

// ParseWorkerDivision validates a worker division (both is allowed).
func ParseWorkerDivision(s string) (Division, error) {
	d := Division(s)
	switch d {
	case DivisionCommercial, DivisionResidential, DivisionBoth:
		return d, nil
	}
	return "", fmt.Errorf("unknown worker division %q", s)
}

// ParseJobDivision validates a job division (jobs are never "both").
func ParseJobDivision(s string) (Division, error) {
	d := Division(s)
	switch d {
	case DivisionCommercial, DivisionResidential:
		return d, nil
	}
	return "", fmt.Errorf("unknown job division %q", s)
}

// WorkerStatus is derived state: a worker is assigned iff it occupies a
// foreman slot or appears in a crew list on some job, otherwise available.
type WorkerStatus string

const (
	StatusAvailable WorkerStatus = "available"
	StatusAssigned  WorkerStatus = "assigned"
)

// ─── Calendar dates ──────────────────────────────────────────────────────────

const dateLayout = "2006-01-02"

// Date is a day-precision calendar date. The zero value means "not set" and
// marshals to JSON null; set dates marshal as "YYYY-MM-DD" strings, matching
// the persisted layout.
type Date struct {
	t time.Time
}

// NewDate builds a Date from year/month/day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return Date{t.UTC()}, nil
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

// After reports whether d is strictly after o.
func (d Date) After(o Date) bool { return d.t.After(o.t) }

// Equal reports whether d and o are the same calendar day.
func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

// AddDays returns the date n days after d (n may be negative).
func (d Date) AddDays(n int) Date { return Date{d.t.AddDate(0, 0, n)} }

// DaysUntil returns the number of whole days from d to o; negative when o is
// earlier than d.
func (d Date) DaysUntil(o Date) int { return int(o.t.Sub(d.t) / (24 * time.Hour)) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

// MarshalJSON writes null for unset dates and a quoted "YYYY-MM-DD" otherwise.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.t.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON accepts null, "" and "YYYY-MM-DD".
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid date literal %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ─── Entities ────────────────────────────────────────────────────────────────

// Worker is a tradesperson that can be assigned to at most one job at a time,
// either as a crew member or in the foreman slot.
type Worker struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Role      Role         `json:"role"`
	Division  Division     `json:"division"`
	IsForeman bool         `json:"isForeman"`
	Status    WorkerStatus `json:"status"`
}

// Job is a time-bounded job site with a target crew headcount and a single
// foreman slot. Crew holds worker ids in assignment order; Foreman is nil
// until a foreman is assigned.
type Job struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Division  Division `json:"division"`
	Location  string   `json:"location"`
	StartDate Date     `json:"startDate"`
	EndDate   Date     `json:"endDate"`
	Hours     int      `json:"hours"`
	CrewSize  int      `json:"crewSize"`
	Crew      []int64  `json:"crew"`
	Foreman   *int64   `json:"foreman"`
}

// Dated reports whether the job carries both a start and an end date. Undated
// jobs are excluded from the timeline and the forecast.
func (j *Job) Dated() bool { return !j.StartDate.IsZero() && !j.EndDate.IsZero() }

// CoversDay reports whether day falls inside the job's inclusive date range.
func (j *Job) CoversDay(day Date) bool {
	if !j.Dated() {
		return false
	}
	return !day.Before(j.StartDate) && !day.After(j.EndDate)
}

// HasForeman reports whether the foreman slot is filled.
func (j *Job) HasForeman() bool { return j.Foreman != nil }

// References reports whether the job holds workerID as crew or foreman.
func (j *Job) References(workerID int64) bool {
	if j.Foreman != nil && *j.Foreman == workerID {
		return true
	}
	for _, id := range j.Crew {
		if id == workerID {
			return true
		}
	}
	return false
}
