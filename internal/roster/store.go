package roster

import (
	"fmt"
	"sync"
	"time"
)

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the authoritative owner of the worker and job collections. Every
// other component works on snapshots (Workers/Jobs) or mutates through the
// Store's methods; there is no second copy of entity state anywhere.
//
// A single mutex guards both collections: "replace collection" and "mutate one
// entity" are mutually exclusive critical sections. Conflicting local and
// remote edits resolve last-writer-wins.
type Store struct {
	mu      sync.RWMutex
	workers []*Worker
	jobs    []*Job
	nextID  int64
	rev     uint64
}

// NewStore returns an empty Store. The id counter is seeded with the current
// Unix milliseconds so ids stay unique across process restarts without
// coordination, and is bumped past any id seen during a bulk replace.
func NewStore() *Store {
	return &Store{nextID: time.Now().UnixMilli()}
}

// Revision is a counter bumped on every local mutation. The autosave
// scheduler compares it against the last persisted revision to detect dirty
// state. Bulk replaces do not bump it: replaced state arrived from the
// persistence layer and is already durable upstream.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

func (s *Store) allocID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// ─── Snapshots ───────────────────────────────────────────────────────────────

// Workers returns a deep copy of the worker collection in insertion order.
func (s *Store) Workers() []Worker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Worker, len(s.workers))
	for i, w := range s.workers {
		out[i] = *w
	}
	return out
}

// Jobs returns a deep copy of the job collection in insertion order.
func (s *Store) Jobs() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Job, len(s.jobs))
	for i, j := range s.jobs {
		out[i] = copyJob(j)
	}
	return out
}

// GetWorker returns a copy of a single worker.
func (s *Store) GetWorker(id int64) (Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w := s.findWorker(id)
	if w == nil {
		return Worker{}, fmt.Errorf("worker %d: %w", id, ErrNotFound)
	}
	return *w, nil
}

// GetJob returns a copy of a single job.
func (s *Store) GetJob(id int64) (Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	j := s.findJob(id)
	if j == nil {
		return Job{}, fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	return copyJob(j), nil
}

// ─── Worker CRUD ─────────────────────────────────────────────────────────────

// CreateWorker allocates an id and adds an available worker.
func (s *Store) CreateWorker(rec WorkerRecord) (Worker, error) {
	if err := rec.Validate(); err != nil {
		return Worker{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	w := &Worker{
		ID:        s.allocID(),
		Name:      rec.Name,
		Role:      Role(rec.Role),
		Division:  Division(rec.Division),
		IsForeman: rec.IsForeman,
		Status:    StatusAvailable,
	}
	s.workers = append(s.workers, w)
	s.rev++
	return *w, nil
}

// UpdateWorker edits a worker's fields in place. Status and relationship
// membership are untouched: only the assignment engine writes those.
func (s *Store) UpdateWorker(id int64, rec WorkerRecord) (Worker, error) {
	if err := rec.Validate(); err != nil {
		return Worker{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.findWorker(id)
	if w == nil {
		return Worker{}, fmt.Errorf("worker %d: %w", id, ErrNotFound)
	}
	w.Name = rec.Name
	w.Role = Role(rec.Role)
	w.Division = Division(rec.Division)
	w.IsForeman = rec.IsForeman
	s.rev++
	return *w, nil
}

// RemoveWorker deletes a worker, cascading first: the id is stripped from
// every job's crew and cleared from any foreman slot, so no job is left
// holding a dangling reference. Unknown ids are an idempotent no-op.
func (s *Store) RemoveWorker(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findWorker(id) == nil {
		return
	}
	for _, j := range s.jobs {
		j.Crew = removeID(j.Crew, id)
		if j.Foreman != nil && *j.Foreman == id {
			j.Foreman = nil
		}
	}
	s.workers = deleteWorker(s.workers, id)
	s.rev++
}

// ─── Job CRUD ────────────────────────────────────────────────────────────────

// CreateJob allocates an id and adds a job with an empty crew and no foreman.
func (s *Store) CreateJob(rec JobRecord) (Job, error) {
	if err := rec.Validate(); err != nil {
		return Job{}, err
	}
	var start, end Date
	if rec.StartDate != "" {
		start, _ = ParseDate(rec.StartDate)
	}
	if rec.EndDate != "" {
		end, _ = ParseDate(rec.EndDate)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	j := &Job{
		ID:        s.allocID(),
		Name:      rec.Name,
		Division:  Division(rec.Division),
		Location:  rec.Location,
		StartDate: start,
		EndDate:   end,
		Hours:     rec.Hours,
		CrewSize:  rec.CrewSize,
		Crew:      []int64{},
	}
	s.jobs = append(s.jobs, j)
	s.rev++
	return copyJob(j), nil
}

// UpdateJob edits a job's fields in place. Crew membership and the foreman
// slot are untouched: only the assignment engine writes those. Shrinking
// CrewSize below the current crew count is allowed; the job just stops
// accepting new members until it drains.
func (s *Store) UpdateJob(id int64, rec JobRecord) (Job, error) {
	if err := rec.Validate(); err != nil {
		return Job{}, err
	}
	var start, end Date
	if rec.StartDate != "" {
		start, _ = ParseDate(rec.StartDate)
	}
	if rec.EndDate != "" {
		end, _ = ParseDate(rec.EndDate)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.findJob(id)
	if j == nil {
		return Job{}, fmt.Errorf("job %d: %w", id, ErrNotFound)
	}
	j.Name = rec.Name
	j.Division = Division(rec.Division)
	j.Location = rec.Location
	j.StartDate = start
	j.EndDate = end
	j.Hours = rec.Hours
	j.CrewSize = rec.CrewSize
	s.rev++
	return copyJob(j), nil
}

// RemoveJob deletes a job and reverts every worker it referenced (crew and
// foreman) to available. Unknown ids are an idempotent no-op.
func (s *Store) RemoveJob(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j := s.findJob(id)
	if j == nil {
		return
	}
	s.jobs = deleteJob(s.jobs, id)
	s.reconcileStatuses()
	s.rev++
}

// ─── Bulk replace (persistence change-notification contract) ─────────────────

// ReplaceWorkers swaps in the entire worker collection atomically, as received
// from the persistence layer. Jobs referencing workers that no longer exist
// are stripped of those references, then every status is recomputed from the
// job collection so the global invariants hold.
func (s *Store) ReplaceWorkers(workers []Worker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = make([]*Worker, len(workers))
	for i := range workers {
		w := workers[i]
		s.workers[i] = &w
		if w.ID >= s.nextID {
			s.nextID = w.ID + 1
		}
	}
	s.stripDanglingRefs()
	s.reconcileStatuses()
}

// ReplaceJobs swaps in the entire job collection atomically. References to
// unknown workers are dropped and worker statuses recomputed.
func (s *Store) ReplaceJobs(jobs []Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = make([]*Job, len(jobs))
	for i := range jobs {
		j := copyJob(&jobs[i])
		s.jobs[i] = &j
		if j.ID >= s.nextID {
			s.nextID = j.ID + 1
		}
	}
	s.stripDanglingRefs()
	s.reconcileStatuses()
}

// ─── Bulk create (import adapter contract) ───────────────────────────────────

// ImportWorkers creates workers from pre-parsed records, best-effort: a
// rejected record never aborts the batch, and each row's create is atomic.
// Report rows are zero-based record indexes; adapters rebase them onto their
// own line numbering.
func (s *Store) ImportWorkers(recs []WorkerRecord) ImportReport {
	var report ImportReport
	for i, rec := range recs {
		if _, err := s.CreateWorker(rec); err != nil {
			report.Errors = append(report.Errors, ImportError{Row: i, Reason: err.Error()})
			continue
		}
		report.Imported++
	}
	return report
}

// ImportJobs creates jobs from pre-parsed records, best-effort.
func (s *Store) ImportJobs(recs []JobRecord) ImportReport {
	var report ImportReport
	for i, rec := range recs {
		if _, err := s.CreateJob(rec); err != nil {
			report.Errors = append(report.Errors, ImportError{Row: i, Reason: err.Error()})
			continue
		}
		report.Imported++
	}
	return report
}

// ─── Internal helpers (callers hold the lock) ────────────────────────────────

func (s *Store) findWorker(id int64) *Worker {
	for _, w := range s.workers {
		if w.ID == id {
			return w
		}
	}
	return nil
}

func (s *Store) findJob(id int64) *Job {
	for _, j := range s.jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

// stripDanglingRefs removes crew/foreman references to unknown worker ids.
func (s *Store) stripDanglingRefs() {
	for _, j := range s.jobs {
		kept := j.Crew[:0]
		for _, id := range j.Crew {
			if s.findWorker(id) != nil {
				kept = append(kept, id)
			}
		}
		j.Crew = kept
		if j.Foreman != nil && s.findWorker(*j.Foreman) == nil {
			j.Foreman = nil
		}
	}
}

// reconcileStatuses recomputes every worker's status as a pure function of
// the job collection: assigned iff referenced as crew or foreman somewhere.
func (s *Store) reconcileStatuses() {
	for _, w := range s.workers {
		w.Status = StatusAvailable
		for _, j := range s.jobs {
			if j.References(w.ID) {
				w.Status = StatusAssigned
				break
			}
		}
	}
}

func copyJob(j *Job) Job {
	out := *j
	out.Crew = make([]int64, len(j.Crew))
	copy(out.Crew, j.Crew)
	if j.Foreman != nil {
		f := *j.Foreman
		out.Foreman = &f
	}
	return out
}

func removeID(ids []int64, id int64) []int64 {
	kept := ids[:0]
	for _, v := range ids {
		if v != id {
			kept = append(kept, v)
		}
	}
	return kept
}

func deleteWorker(ws []*Worker, id int64) []*Worker {
	kept := ws[:0]
	for _, w := range ws {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	return kept
}

func deleteJob(js []*Job, id int64) []*Job {
	kept := js[:0]
	for _, j := range js {
		if j.ID != id {
			kept = append(kept, j)
		}
	}
	return kept
}
