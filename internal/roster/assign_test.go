package roster_test

import (
	"errors"
	"testing"

	"crcustom/manload-service/internal/roster"
)

// ── Crew capacity ──────────────────────────────────────────────────────────

// crewSize 2: A and B fit, C is rejected and nothing changes.
func TestAssignWorker_CapacityGuard(t *testing.T) {
	s := roster.NewStore()
	a := mustWorker(t, s, journeyman("A", "commercial"))
	b := mustWorker(t, s, journeyman("B", "commercial"))
	c := mustWorker(t, s, journeyman("C", "commercial"))
	j := mustJob(t, s, smallJob("Site", "commercial", 2))

	if err := s.AssignWorker(j.ID, a.ID); err != nil {
		t.Fatalf("assign A: %v", err)
	}
	got, _ := s.GetWorker(a.ID)
	if got.Status != roster.StatusAssigned {
		t.Errorf("A status = %s, want assigned", got.Status)
	}

	if err := s.AssignWorker(j.ID, b.ID); err != nil {
		t.Fatalf("assign B: %v", err)
	}

	err := s.AssignWorker(j.ID, c.ID)
	if !errors.Is(err, roster.ErrCapacityExceeded) {
		t.Fatalf("assign C: expected ErrCapacityExceeded, got %v", err)
	}

	job, _ := s.GetJob(j.ID)
	if len(job.Crew) != 2 || job.Crew[0] != a.ID || job.Crew[1] != b.ID {
		t.Errorf("crew = %v, want [A B] in assignment order", job.Crew)
	}
	cw, _ := s.GetWorker(c.ID)
	if cw.Status != roster.StatusAvailable {
		t.Errorf("rejected C status = %s, want available", cw.Status)
	}
}

func TestAssignWorker_PreservesAssignmentOrder(t *testing.T) {
	s := roster.NewStore()
	j := mustJob(t, s, smallJob("Site", "residential", 3))
	var want []int64
	for _, n := range []string{"first", "second", "third"} {
		w := mustWorker(t, s, journeyman(n, "residential"))
		if err := s.AssignWorker(j.ID, w.ID); err != nil {
			t.Fatalf("assign %s: %v", n, err)
		}
		want = append(want, w.ID)
	}
	job, _ := s.GetJob(j.ID)
	for i, id := range want {
		if job.Crew[i] != id {
			t.Fatalf("crew order %v, want %v", job.Crew, want)
		}
	}
}

func TestAssignWorker_RejectsDoubleBooking(t *testing.T) {
	s := roster.NewStore()
	w := mustWorker(t, s, journeyman("A", "both"))
	j1 := mustJob(t, s, smallJob("One", "commercial", 1))
	j2 := mustJob(t, s, smallJob("Two", "residential", 1))

	if err := s.AssignWorker(j1.ID, w.ID); err != nil {
		t.Fatalf("first assign: %v", err)
	}
	err := s.AssignWorker(j2.ID, w.ID)
	var verr *roster.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("second assign: expected ValidationError, got %v", err)
	}
	job2, _ := s.GetJob(j2.ID)
	if len(job2.Crew) != 0 {
		t.Errorf("job two crew = %v, want empty", job2.Crew)
	}
}

func TestAssignWorker_UnknownEntities(t *testing.T) {
	s := roster.NewStore()
	w := mustWorker(t, s, journeyman("A", "both"))
	j := mustJob(t, s, smallJob("One", "commercial", 1))

	if err := s.AssignWorker(999999, w.ID); !errors.Is(err, roster.ErrNotFound) {
		t.Errorf("unknown job: expected ErrNotFound, got %v", err)
	}
	if err := s.AssignWorker(j.ID, 999999); !errors.Is(err, roster.ErrNotFound) {
		t.Errorf("unknown worker: expected ErrNotFound, got %v", err)
	}
}

// ── Unassign idempotence ───────────────────────────────────────────────────

func TestUnassignWorker_Idempotent(t *testing.T) {
	s := roster.NewStore()
	w := mustWorker(t, s, journeyman("A", "both"))
	j := mustJob(t, s, smallJob("One", "commercial", 1))
	s.AssignWorker(j.ID, w.ID)

	if err := s.UnassignWorker(j.ID, w.ID); err != nil {
		t.Fatalf("first unassign: %v", err)
	}
	if err := s.UnassignWorker(j.ID, w.ID); err != nil {
		t.Fatalf("second unassign must no-op, got %v", err)
	}

	got, _ := s.GetWorker(w.ID)
	if got.Status != roster.StatusAvailable {
		t.Errorf("status = %s, want available", got.Status)
	}
	job, _ := s.GetJob(j.ID)
	if len(job.Crew) != 0 {
		t.Errorf("crew = %v, want empty", job.Crew)
	}
}

// ── Foreman slot ───────────────────────────────────────────────────────────

func TestAssignForeman_RoleMismatch(t *testing.T) {
	s := roster.NewStore()
	w := mustWorker(t, s, journeyman("A", "both")) // no foreman flag
	j := mustJob(t, s, smallJob("One", "commercial", 1))

	err := s.AssignForeman(j.ID, w.ID)
	if !errors.Is(err, roster.ErrRoleMismatch) {
		t.Fatalf("expected ErrRoleMismatch, got %v", err)
	}
	job, _ := s.GetJob(j.ID)
	if job.Foreman != nil {
		t.Error("foreman slot must stay empty after rejected assignment")
	}
}

func TestAssignForeman_ReplaceSemantics(t *testing.T) {
	s := roster.NewStore()
	f1 := mustWorker(t, s, roster.WorkerRecord{Name: "F1", Role: "foreman", Division: "both", IsForeman: true})
	f2 := mustWorker(t, s, roster.WorkerRecord{Name: "F2", Role: "foreman", Division: "both", IsForeman: true})
	j := mustJob(t, s, smallJob("One", "commercial", 1))

	if err := s.AssignForeman(j.ID, f1.ID); err != nil {
		t.Fatalf("assign F1: %v", err)
	}
	if err := s.AssignForeman(j.ID, f2.ID); err != nil {
		t.Fatalf("replace with F2: %v", err)
	}

	job, _ := s.GetJob(j.ID)
	if job.Foreman == nil || *job.Foreman != f2.ID {
		t.Errorf("foreman = %v, want F2", job.Foreman)
	}
	old, _ := s.GetWorker(f1.ID)
	if old.Status != roster.StatusAvailable {
		t.Errorf("replaced foreman status = %s, want available", old.Status)
	}
	cur, _ := s.GetWorker(f2.ID)
	if cur.Status != roster.StatusAssigned {
		t.Errorf("new foreman status = %s, want assigned", cur.Status)
	}
}

func TestAssignForeman_SameForemanIsNoop(t *testing.T) {
	s := roster.NewStore()
	f := mustWorker(t, s, roster.WorkerRecord{Name: "F", Role: "foreman", Division: "both", IsForeman: true})
	j := mustJob(t, s, smallJob("One", "commercial", 1))
	s.AssignForeman(j.ID, f.ID)

	if err := s.AssignForeman(j.ID, f.ID); err != nil {
		t.Fatalf("re-assigning the current foreman must no-op, got %v", err)
	}
}

func TestAssignForeman_RejectsForemanBookedElsewhere(t *testing.T) {
	s := roster.NewStore()
	f := mustWorker(t, s, roster.WorkerRecord{Name: "F", Role: "foreman", Division: "both", IsForeman: true})
	j1 := mustJob(t, s, smallJob("One", "commercial", 1))
	j2 := mustJob(t, s, smallJob("Two", "residential", 1))
	s.AssignForeman(j1.ID, f.ID)

	err := s.AssignForeman(j2.ID, f.ID)
	var verr *roster.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	job1, _ := s.GetJob(j1.ID)
	if job1.Foreman == nil || *job1.Foreman != f.ID {
		t.Error("original assignment must be untouched")
	}
}

func TestUnassignForeman(t *testing.T) {
	s := roster.NewStore()
	f := mustWorker(t, s, roster.WorkerRecord{Name: "F", Role: "foreman", Division: "both", IsForeman: true})
	j := mustJob(t, s, smallJob("One", "commercial", 1))
	s.AssignForeman(j.ID, f.ID)

	if err := s.UnassignForeman(j.ID); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if err := s.UnassignForeman(j.ID); err != nil {
		t.Fatalf("second unassign must no-op, got %v", err)
	}
	job, _ := s.GetJob(j.ID)
	if job.Foreman != nil {
		t.Error("foreman slot not cleared")
	}
	got, _ := s.GetWorker(f.ID)
	if got.Status != roster.StatusAvailable {
		t.Errorf("status = %s, want available", got.Status)
	}
}

// ── No double-booking invariant ────────────────────────────────────────────

func TestNoWorkerReferencedByTwoJobs(t *testing.T) {
	s := roster.NewStore()
	f := mustWorker(t, s, roster.WorkerRecord{Name: "F", Role: "foreman", Division: "both", IsForeman: true})
	w := mustWorker(t, s, journeyman("W", "both"))
	j1 := mustJob(t, s, smallJob("One", "commercial", 2))
	j2 := mustJob(t, s, smallJob("Two", "residential", 2))

	s.AssignForeman(j1.ID, f.ID)
	s.AssignWorker(j1.ID, w.ID)
	s.AssignForeman(j2.ID, f.ID) // rejected: booked on One
	s.AssignWorker(j2.ID, w.ID)  // rejected: booked on One

	counts := map[int64]int{}
	for _, j := range s.Jobs() {
		for _, id := range j.Crew {
			counts[id]++
		}
		if j.Foreman != nil {
			counts[*j.Foreman]++
		}
	}
	for id, n := range counts {
		if n > 1 {
			t.Errorf("worker %d referenced by %d jobs", id, n)
		}
	}
}

// ── Candidate eligibility ──────────────────────────────────────────────────

func TestCrewCandidates_DivisionAndAvailability(t *testing.T) {
	s := roster.NewStore()
	com := mustWorker(t, s, journeyman("Com", "commercial"))
	res := mustWorker(t, s, journeyman("Res", "residential"))
	both := mustWorker(t, s, journeyman("Both", "both"))
	busy := mustWorker(t, s, journeyman("Busy", "commercial"))

	j := mustJob(t, s, smallJob("Site", "commercial", 4))
	other := mustJob(t, s, smallJob("Other", "commercial", 1))
	s.AssignWorker(other.ID, busy.ID)

	got, err := s.CrewCandidates(j.ID)
	if err != nil {
		t.Fatalf("CrewCandidates: %v", err)
	}
	ids := map[int64]bool{}
	for _, w := range got {
		ids[w.ID] = true
	}
	if !ids[com.ID] || !ids[both.ID] {
		t.Errorf("commercial and both workers must be eligible, got %v", ids)
	}
	if ids[res.ID] {
		t.Error("residential worker must not be eligible for a commercial job")
	}
	if ids[busy.ID] {
		t.Error("assigned worker must not be a crew candidate")
	}
}

func TestForemanCandidates_IncludesCurrentForeman(t *testing.T) {
	s := roster.NewStore()
	f := mustWorker(t, s, roster.WorkerRecord{Name: "F", Role: "foreman", Division: "commercial", IsForeman: true})
	elsewhere := mustWorker(t, s, roster.WorkerRecord{Name: "E", Role: "foreman", Division: "commercial", IsForeman: true})
	nonForeman := mustWorker(t, s, journeyman("J", "commercial"))

	j := mustJob(t, s, smallJob("Site", "commercial", 1))
	other := mustJob(t, s, smallJob("Other", "commercial", 1))
	s.AssignForeman(j.ID, f.ID)
	s.AssignForeman(other.ID, elsewhere.ID)

	got, err := s.ForemanCandidates(j.ID)
	if err != nil {
		t.Fatalf("ForemanCandidates: %v", err)
	}
	ids := map[int64]bool{}
	for _, w := range got {
		ids[w.ID] = true
	}
	if !ids[f.ID] {
		t.Error("the job's current foreman stays a candidate")
	}
	if ids[elsewhere.ID] {
		t.Error("a foreman booked on another job is not a candidate")
	}
	if ids[nonForeman.ID] {
		t.Error("workers without the foreman flag are never foreman candidates")
	}
}

func TestCandidates_UnknownJob(t *testing.T) {
	s := roster.NewStore()
	if _, err := s.CrewCandidates(7); !errors.Is(err, roster.ErrNotFound) {
		t.Errorf("CrewCandidates: expected ErrNotFound, got %v", err)
	}
	if _, err := s.ForemanCandidates(7); !errors.Is(err, roster.ErrNotFound) {
		t.Errorf("ForemanCandidates: expected ErrNotFound, got %v", err)
	}
}
