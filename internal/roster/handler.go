// HTTP handlers for the Man Loader service.
//
// Routes:
//
//	GET    /workers?division=        → list workers (division pool)
//	POST   /workers                  → create worker
//	PUT    /workers/{id}             → edit worker fields
//	DELETE /workers/{id}             → remove worker (cascades)
//	GET    /jobs?division=           → list jobs
//	POST   /jobs                     → create job
//	PUT    /jobs/{id}                → edit job fields
//	DELETE /jobs/{id}                → remove job (frees its workers)
//	POST   /jobs/{id}/foreman        → assign foreman {workerId}
//	DELETE /jobs/{id}/foreman        → unassign foreman
//	POST   /jobs/{id}/crew           → assign crew member {workerId}
//	DELETE /jobs/{id}/crew/{wid}     → unassign crew member
//	GET    /jobs/{id}/candidates     → eligible crew + foreman candidates
//	GET    /assignments?division=    → jobs with any crew or foreman
//	GET    /timeline?division=       → Gantt projection
//	GET    /forecast?division=       → manpower forecast
//	GET    /stats                    → dashboard stats
//	POST   /import/workers           → bulk-create from JSON record array
//	POST   /import/jobs              → bulk-create from JSON record array
package roster

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Handler exposes a Store over HTTP. The optional onChange callback fires
// after every successful mutation so the persistence adapter can schedule a
// snapshot save.
type Handler struct {
	store    *Store
	onChange func()
}

// NewHandler returns a configured Handler. onChange may be nil.
func NewHandler(store *Store, onChange func()) *Handler {
	return &Handler{store: store, onChange: onChange}
}

// RegisterRoutes mounts all roster routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/workers", h.handleWorkers)
	mux.HandleFunc("/workers/", h.handleWorkerByID)
	mux.HandleFunc("/jobs", h.handleJobs)
	mux.HandleFunc("/jobs/", h.handleJobAction)
	mux.HandleFunc("/assignments", h.listAssignments)
	mux.HandleFunc("/timeline", h.getTimeline)
	mux.HandleFunc("/forecast", h.getForecast)
	mux.HandleFunc("/stats", h.getStats)
	mux.HandleFunc("/import/workers", h.importWorkers)
	mux.HandleFunc("/import/jobs", h.importJobs)
}

func (h *Handler) changed() {
	if h.onChange != nil {
		h.onChange()
	}
}

// ─── Workers ─────────────────────────────────────────────────────────────────

func (h *Handler) handleWorkers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sel, err := ParseSelector(r.URL.Query().Get("division"))
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		jsonOK(w, FilterWorkers(h.store.Workers(), sel))
	case http.MethodPost:
		var rec WorkerRecord
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			jsonError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		worker, err := h.store.CreateWorker(rec)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		h.changed()
		jsonOK(w, worker)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleWorkerByID(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r.URL.Path, "/workers/")
	if !ok {
		return
	}
	switch r.Method {
	case http.MethodGet:
		worker, err := h.store.GetWorker(id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		jsonOK(w, worker)
	case http.MethodPut:
		var rec WorkerRecord
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			jsonError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		worker, err := h.store.UpdateWorker(id, rec)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		h.changed()
		jsonOK(w, worker)
	case http.MethodDelete:
		h.store.RemoveWorker(id)
		h.changed()
		jsonOK(w, map[string]string{"status": "removed"})
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// ─── Jobs ────────────────────────────────────────────────────────────────────

func (h *Handler) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sel, err := ParseSelector(r.URL.Query().Get("division"))
		if err != nil {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		jsonOK(w, FilterJobs(h.store.Jobs(), sel))
	case http.MethodPost:
		var rec JobRecord
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			jsonError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		job, err := h.store.CreateJob(rec)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		h.changed()
		jsonOK(w, job)
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleJobAction dispatches /jobs/{id}, /jobs/{id}/foreman,
// /jobs/{id}/crew[/{workerID}] and /jobs/{id}/candidates.
func (h *Handler) handleJobAction(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || len(parts) > 4 {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}
	jobID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		jsonError(w, fmt.Sprintf("invalid job id %q", parts[1]), http.StatusBadRequest)
		return
	}

	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
		job, err := h.store.GetJob(jobID)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		jsonOK(w, job)
	case len(parts) == 2 && r.Method == http.MethodPut:
		var rec JobRecord
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			jsonError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		job, err := h.store.UpdateJob(jobID, rec)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		h.changed()
		jsonOK(w, job)
	case len(parts) == 2 && r.Method == http.MethodDelete:
		h.store.RemoveJob(jobID)
		h.changed()
		jsonOK(w, map[string]string{"status": "removed"})
	case len(parts) == 3 && parts[2] == "foreman":
		h.handleForeman(w, r, jobID)
	case len(parts) == 3 && parts[2] == "crew" && r.Method == http.MethodPost:
		h.assignCrew(w, r, jobID)
	case len(parts) == 4 && parts[2] == "crew" && r.Method == http.MethodDelete:
		workerID, err := strconv.ParseInt(parts[3], 10, 64)
		if err != nil {
			jsonError(w, fmt.Sprintf("invalid worker id %q", parts[3]), http.StatusBadRequest)
			return
		}
		if err := h.store.UnassignWorker(jobID, workerID); err != nil {
			writeDomainError(w, err)
			return
		}
		h.changed()
		h.respondJob(w, jobID)
	case len(parts) == 3 && parts[2] == "candidates" && r.Method == http.MethodGet:
		h.listCandidates(w, jobID)
	default:
		jsonError(w, "invalid path or method", http.StatusNotFound)
	}
}

func (h *Handler) handleForeman(w http.ResponseWriter, r *http.Request, jobID int64) {
	switch r.Method {
	case http.MethodPost:
		var body struct {
			WorkerID int64 `json:"workerId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.WorkerID == 0 {
			jsonError(w, "body must contain workerId", http.StatusBadRequest)
			return
		}
		if err := h.store.AssignForeman(jobID, body.WorkerID); err != nil {
			writeDomainError(w, err)
			return
		}
	case http.MethodDelete:
		if err := h.store.UnassignForeman(jobID); err != nil {
			writeDomainError(w, err)
			return
		}
	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.changed()
	h.respondJob(w, jobID)
}

func (h *Handler) assignCrew(w http.ResponseWriter, r *http.Request, jobID int64) {
	var body struct {
		WorkerID int64 `json:"workerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.WorkerID == 0 {
		jsonError(w, "body must contain workerId", http.StatusBadRequest)
		return
	}
	if err := h.store.AssignWorker(jobID, body.WorkerID); err != nil {
		writeDomainError(w, err)
		return
	}
	h.changed()
	h.respondJob(w, jobID)
}

func (h *Handler) respondJob(w http.ResponseWriter, jobID int64) {
	job, err := h.store.GetJob(jobID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jsonOK(w, job)
}

// ─── Candidate and assignment views ──────────────────────────────────────────

// CandidateLists pairs the two eligibility views for one job.
type CandidateLists struct {
	Crew    []Worker `json:"crew"`
	Foremen []Worker `json:"foremen"`
}

func (h *Handler) listCandidates(w http.ResponseWriter, jobID int64) {
	crew, err := h.store.CrewCandidates(jobID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	foremen, err := h.store.ForemanCandidates(jobID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	jsonOK(w, CandidateLists{Crew: crew, Foremen: foremen})
}

// AssignmentView is one job's staffing detail: resolved crew members, the
// foreman if any, and whether the job still needs staffing.
type AssignmentView struct {
	Job          Job      `json:"job"`
	CrewMembers  []Worker `json:"crewMembers"`
	Foreman      *Worker  `json:"foreman"`
	NeedsForeman bool     `json:"needsForeman"`
	NeedsCrew    bool     `json:"needsCrew"`
}

// listAssignments returns the jobs holding any crew or foreman, in the
// filtered job order.
func (h *Handler) listAssignments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sel, err := ParseSelector(r.URL.Query().Get("division"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	workers := h.store.Workers()
	byID := make(map[int64]Worker, len(workers))
	for _, wk := range workers {
		byID[wk.ID] = wk
	}

	views := make([]AssignmentView, 0)
	for _, j := range FilterJobs(h.store.Jobs(), sel) {
		if len(j.Crew) == 0 && !j.HasForeman() {
			continue
		}
		v := AssignmentView{
			Job:          j,
			CrewMembers:  make([]Worker, 0, len(j.Crew)),
			NeedsForeman: !j.HasForeman(),
			NeedsCrew:    len(j.Crew) < j.CrewSize,
		}
		for _, id := range j.Crew {
			if wk, ok := byID[id]; ok {
				v.CrewMembers = append(v.CrewMembers, wk)
			}
		}
		if j.Foreman != nil {
			if wk, ok := byID[*j.Foreman]; ok {
				v.Foreman = &wk
			}
		}
		views = append(views, v)
	}
	jsonOK(w, views)
}

// ─── Derived views ───────────────────────────────────────────────────────────

func (h *Handler) getTimeline(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sel, err := ParseSelector(r.URL.Query().Get("division"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	tl := BuildTimeline(FilterJobs(h.store.Jobs(), sel))
	if tl == nil {
		jsonOK(w, map[string]any{"rows": []TimelineRow{}})
		return
	}
	jsonOK(w, tl)
}

func (h *Handler) getForecast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sel, err := ParseSelector(r.URL.Query().Get("division"))
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	supply := PoolSize(h.store.Workers(), sel)
	f := BuildForecast(FilterJobs(h.store.Jobs(), sel), supply)
	if f == nil {
		jsonOK(w, map[string]any{"supply": supply, "days": []ForecastDay{}})
		return
	}
	jsonOK(w, f)
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	jsonOK(w, ComputeStats(h.store.Workers(), h.store.Jobs()))
}

// ─── Bulk import (JSON record arrays) ────────────────────────────────────────

func (h *Handler) importWorkers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var recs []WorkerRecord
	if err := json.NewDecoder(r.Body).Decode(&recs); err != nil {
		jsonError(w, "body must be a JSON array of worker records", http.StatusBadRequest)
		return
	}
	report := h.store.ImportWorkers(recs)
	if report.Imported > 0 {
		h.changed()
	}
	jsonOK(w, report)
}

func (h *Handler) importJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var recs []JobRecord
	if err := json.NewDecoder(r.Body).Decode(&recs); err != nil {
		jsonError(w, "body must be a JSON array of job records", http.StatusBadRequest)
		return
	}
	report := h.store.ImportJobs(recs)
	if report.Imported > 0 {
		h.changed()
	}
	jsonOK(w, report)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func pathID(w http.ResponseWriter, path, prefix string) (int64, bool) {
	raw := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if raw == "" || strings.Contains(raw, "/") {
		jsonError(w, "invalid path", http.StatusNotFound)
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		jsonError(w, fmt.Sprintf("invalid id %q", raw), http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// writeDomainError maps domain errors onto HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		jsonError(w, verr.Msg, http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrCapacityExceeded), errors.Is(err, ErrRoleMismatch):
		jsonError(w, err.Error(), http.StatusConflict)
	default:
		jsonError(w, err.Error(), http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
