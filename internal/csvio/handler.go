package csvio

import (
	"encoding/json"
	"net/http"

	"crcustom/manload-service/internal/roster"
)

// Handler exposes the CSV import/export routes:
//
//	POST /csv/workers           → import workers from a CSV request body
//	POST /csv/jobs              → import jobs from a CSV request body
//	GET  /csv/workers/template  → downloadable workers template
//	GET  /csv/jobs/template     → downloadable jobs template
type Handler struct {
	store    *roster.Store
	onChange func()
}

// NewHandler returns a configured Handler. onChange may be nil.
func NewHandler(store *roster.Store, onChange func()) *Handler {
	return &Handler{store: store, onChange: onChange}
}

// RegisterRoutes mounts all CSV routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/csv/workers", h.importWorkers)
	mux.HandleFunc("/csv/jobs", h.importJobs)
	mux.HandleFunc("/csv/workers/template", templateHandler("worker_template.csv", WorkerTemplate))
	mux.HandleFunc("/csv/jobs/template", templateHandler("job_template.csv", JobTemplate))
}

func (h *Handler) importWorkers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	report, err := ImportWorkers(r.Body, h.store)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.notifyIfImported(report)
	jsonOK(w, report)
}

func (h *Handler) importJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	report, err := ImportJobs(r.Body, h.store)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.notifyIfImported(report)
	jsonOK(w, report)
}

func (h *Handler) notifyIfImported(report roster.ImportReport) {
	if report.Imported > 0 && h.onChange != nil {
		h.onChange()
	}
}

func templateHandler(filename, content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(content))
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
