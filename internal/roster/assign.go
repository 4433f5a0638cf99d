package roster

import (
	"fmt"
	"log/slog"
)

// Assignment engine: the only code path that writes worker status or job
// crew/foreman membership. The reference behavior treated bad assignments as
// silent no-ops because the UI only ever offered eligible candidates; here
// every guard is an explicit typed error and the caller decides whether to
// surface or ignore it.

// ─── Foreman slot ────────────────────────────────────────────────────────────

// AssignForeman puts a worker in the job's foreman slot. A previously
// assigned foreman is released back to available first (replace semantics).
// Division compatibility is advisory: it shapes the candidate lists, not this
// call.
func (s *Store) AssignForeman(jobID, workerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.findJob(jobID)
	if j == nil {
		return fmt.Errorf("job %d: %w", jobID, ErrNotFound)
	}
	w := s.findWorker(workerID)
	if w == nil {
		return fmt.Errorf("worker %d: %w", workerID, ErrNotFound)
	}
	if !w.IsForeman {
		return fmt.Errorf("worker %d (%s): %w", workerID, w.Name, ErrRoleMismatch)
	}
	if j.Foreman != nil && *j.Foreman == workerID {
		return nil // already this job's foreman
	}
	if w.Status == StatusAssigned {
		return &ValidationError{Msg: fmt.Sprintf("worker %d (%s) is already assigned elsewhere", workerID, w.Name)}
	}
	if j.Foreman != nil {
		if old := s.findWorker(*j.Foreman); old != nil {
			old.Status = StatusAvailable
		}
		slog.Info("foreman replaced", "job", jobID, "old", *j.Foreman, "new", workerID)
	}
	j.Foreman = &workerID
	w.Status = StatusAssigned
	s.rev++
	return nil
}

// UnassignForeman clears the job's foreman slot and releases the worker.
// A job without a foreman is a no-op; an unknown job is an error.
func (s *Store) UnassignForeman(jobID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.findJob(jobID)
	if j == nil {
		return fmt.Errorf("job %d: %w", jobID, ErrNotFound)
	}
	if j.Foreman == nil {
		return nil
	}
	if w := s.findWorker(*j.Foreman); w != nil {
		w.Status = StatusAvailable
	}
	j.Foreman = nil
	s.rev++
	return nil
}

// ─── Crew ────────────────────────────────────────────────────────────────────

// AssignWorker appends a worker to the job's crew, preserving assignment
// order. Fails with ErrCapacityExceeded once the crew is at the target
// headcount, and rejects workers already booked on some job so that no worker
// is ever double-booked.
func (s *Store) AssignWorker(jobID, workerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.findJob(jobID)
	if j == nil {
		return fmt.Errorf("job %d: %w", jobID, ErrNotFound)
	}
	w := s.findWorker(workerID)
	if w == nil {
		return fmt.Errorf("worker %d: %w", workerID, ErrNotFound)
	}
	if len(j.Crew) >= j.CrewSize {
		return fmt.Errorf("job %d has %d/%d crew: %w", jobID, len(j.Crew), j.CrewSize, ErrCapacityExceeded)
	}
	if w.Status == StatusAssigned {
		return &ValidationError{Msg: fmt.Sprintf("worker %d (%s) is already assigned", workerID, w.Name)}
	}
	j.Crew = append(j.Crew, workerID)
	w.Status = StatusAssigned
	s.rev++
	return nil
}

// UnassignWorker removes a worker from the job's crew and releases it.
// Idempotent: a worker not on the crew is a no-op.
func (s *Store) UnassignWorker(jobID, workerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.findJob(jobID)
	if j == nil {
		return fmt.Errorf("job %d: %w", jobID, ErrNotFound)
	}
	before := len(j.Crew)
	j.Crew = removeID(j.Crew, workerID)
	if len(j.Crew) == before {
		return nil
	}
	if w := s.findWorker(workerID); w != nil {
		w.Status = StatusAvailable
	}
	s.rev++
	return nil
}

// ─── Candidate eligibility ───────────────────────────────────────────────────

// CrewCandidates lists the workers a caller may offer for the job's crew:
// available, and division-compatible (worker division equals the job's, or
// "both").
func (s *Store) CrewCandidates(jobID int64) ([]Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j := s.findJob(jobID)
	if j == nil {
		return nil, fmt.Errorf("job %d: %w", jobID, ErrNotFound)
	}
	out := make([]Worker, 0)
	for _, w := range s.workers {
		if w.Status != StatusAvailable {
			continue
		}
		if !divisionCompatible(w.Division, j.Division) {
			continue
		}
		out = append(out, *w)
	}
	return out, nil
}

// ForemanCandidates lists the workers a caller may offer for the job's
// foreman slot: carrying the foreman flag, division-compatible, and either
// available or already this job's current foreman.
func (s *Store) ForemanCandidates(jobID int64) ([]Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j := s.findJob(jobID)
	if j == nil {
		return nil, fmt.Errorf("job %d: %w", jobID, ErrNotFound)
	}
	out := make([]Worker, 0)
	for _, w := range s.workers {
		if !w.IsForeman {
			continue
		}
		current := j.Foreman != nil && *j.Foreman == w.ID
		if w.Status != StatusAvailable && !current {
			continue
		}
		if !divisionCompatible(w.Division, j.Division) {
			continue
		}
		out = append(out, *w)
	}
	return out, nil
}

func divisionCompatible(worker, job Division) bool {
	return worker == DivisionBoth || worker == job
}
