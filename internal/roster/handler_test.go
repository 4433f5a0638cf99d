package roster_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"crcustom/manload-service/internal/roster"
)

func newTestServer(t *testing.T, s *roster.Store) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	roster.NewHandler(s, nil).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string, out any) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func TestHandler_WorkerLifecycle(t *testing.T) {
	s := roster.NewStore()
	srv := newTestServer(t, s)

	var created roster.Worker
	resp := postJSON(t, srv.URL+"/workers", `{"name":"John","role":"journeyman","division":"commercial"}`, &created)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
	if created.ID == 0 || created.Status != roster.StatusAvailable {
		t.Fatalf("created = %+v", created)
	}

	var list []roster.Worker
	getJSON(t, srv.URL+"/workers", &list)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("list = %+v", list)
	}

	resp = postJSON(t, srv.URL+"/workers", `{"name":"","role":"journeyman","division":"commercial"}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid record: status %d, want 400", resp.StatusCode)
	}
}

func TestHandler_DivisionQuery(t *testing.T) {
	s := roster.NewStore()
	mustWorker(t, s, journeyman("C", "commercial"))
	mustWorker(t, s, journeyman("R", "residential"))
	mustWorker(t, s, journeyman("B", "both"))
	srv := newTestServer(t, s)

	var list []roster.Worker
	getJSON(t, srv.URL+"/workers?division=residential", &list)
	if len(list) != 2 {
		t.Errorf("residential pool = %d workers, want 2 (residential + both)", len(list))
	}

	resp := getJSON(t, srv.URL+"/workers?division=industrial", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad selector: status %d, want 400", resp.StatusCode)
	}
}

func putJSON(t *testing.T, url, body string, out any) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("PUT %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func TestHandler_JobUpdate(t *testing.T) {
	s := roster.NewStore()
	w := mustWorker(t, s, journeyman("W", "commercial"))
	j := mustJob(t, s, smallJob("Site", "commercial", 2))
	s.AssignWorker(j.ID, w.ID)
	srv := newTestServer(t, s)

	var updated roster.Job
	body := `{"name":"Site B","division":"commercial","location":"9 New Rd","startDate":"2024-04-01","endDate":"2024-04-20","hours":200,"crewSize":5}`
	resp := putJSON(t, srv.URL+"/jobs/"+itoa(j.ID), body, &updated)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update: status %d", resp.StatusCode)
	}
	if updated.Name != "Site B" || updated.CrewSize != 5 {
		t.Errorf("updated = %+v", updated)
	}
	if len(updated.Crew) != 1 || updated.Crew[0] != w.ID {
		t.Errorf("crew must survive a field edit, got %v", updated.Crew)
	}

	bad := `{"name":"Site B","division":"commercial","location":"9 New Rd","startDate":"2024-04-20","endDate":"2024-04-01","hours":200,"crewSize":5}`
	resp = putJSON(t, srv.URL+"/jobs/"+itoa(j.ID), bad, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("end-before-start: status %d, want 400", resp.StatusCode)
	}

	resp = putJSON(t, srv.URL+"/jobs/999999", body, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown job: status %d, want 404", resp.StatusCode)
	}
}

func TestHandler_AssignmentErrors(t *testing.T) {
	s := roster.NewStore()
	w := mustWorker(t, s, journeyman("A", "both"))
	j := mustJob(t, s, smallJob("One", "commercial", 1))
	srv := newTestServer(t, s)

	// Journeyman into the foreman slot: conflict.
	resp := postJSON(t, srv.URL+"/jobs/"+itoa(j.ID)+"/foreman", `{"workerId":`+itoa(w.ID)+`}`, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("role mismatch: status %d, want 409", resp.StatusCode)
	}

	// Unknown job: not found.
	resp = postJSON(t, srv.URL+"/jobs/999999/crew", `{"workerId":`+itoa(w.ID)+`}`, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown job: status %d, want 404", resp.StatusCode)
	}

	// Fill the single slot, then overflow it.
	var updated roster.Job
	resp = postJSON(t, srv.URL+"/jobs/"+itoa(j.ID)+"/crew", `{"workerId":`+itoa(w.ID)+`}`, &updated)
	if resp.StatusCode != http.StatusOK || len(updated.Crew) != 1 {
		t.Fatalf("assign: status %d, job %+v", resp.StatusCode, updated)
	}
	other := mustWorker(t, s, journeyman("B", "both"))
	resp = postJSON(t, srv.URL+"/jobs/"+itoa(j.ID)+"/crew", `{"workerId":`+itoa(other.ID)+`}`, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("capacity exceeded: status %d, want 409", resp.StatusCode)
	}
}

func TestHandler_EmptyTimelineAndForecast(t *testing.T) {
	s := roster.NewStore()
	mustWorker(t, s, journeyman("A", "commercial"))
	srv := newTestServer(t, s)

	var tl struct {
		Rows []roster.TimelineRow `json:"rows"`
	}
	getJSON(t, srv.URL+"/timeline", &tl)
	if tl.Rows == nil || len(tl.Rows) != 0 {
		t.Errorf("timeline rows = %v, want empty list", tl.Rows)
	}

	var f roster.Forecast
	getJSON(t, srv.URL+"/forecast?division=commercial", &f)
	if f.Supply != 1 || len(f.Days) != 0 {
		t.Errorf("forecast = %+v, want supply 1 and no days", f)
	}
}

func TestHandler_StatsAndAssignments(t *testing.T) {
	s := roster.NewStore()
	f := mustWorker(t, s, roster.WorkerRecord{Name: "F", Role: "foreman", Division: "both", IsForeman: true})
	w := mustWorker(t, s, journeyman("W", "commercial"))
	staffed := mustJob(t, s, smallJob("Staffed", "commercial", 2))
	mustJob(t, s, smallJob("Empty", "commercial", 2))
	s.AssignForeman(staffed.ID, f.ID)
	s.AssignWorker(staffed.ID, w.ID)
	srv := newTestServer(t, s)

	var st roster.Stats
	getJSON(t, srv.URL+"/stats", &st)
	if st.TotalWorkers != 2 || st.TotalJobs != 2 || st.Assigned != 2 {
		t.Errorf("stats = %+v", st)
	}
	if st.UtilizationPct != 100 {
		t.Errorf("UtilizationPct = %d, want 100", st.UtilizationPct)
	}

	var views []roster.AssignmentView
	getJSON(t, srv.URL+"/assignments", &views)
	if len(views) != 1 {
		t.Fatalf("assignments = %+v, want only the staffed job", views)
	}
	v := views[0]
	if v.Job.ID != staffed.ID || v.Foreman == nil || v.Foreman.ID != f.ID {
		t.Errorf("view = %+v", v)
	}
	if v.NeedsForeman {
		t.Error("NeedsForeman = true with foreman set")
	}
	if !v.NeedsCrew {
		t.Error("NeedsCrew = false with 1 of 2 crew slots filled")
	}
}

func TestHandler_BulkImport(t *testing.T) {
	s := roster.NewStore()
	srv := newTestServer(t, s)

	var report roster.ImportReport
	body := `[{"name":"A","role":"journeyman","division":"commercial"},{"name":"","role":"journeyman","division":"commercial"}]`
	resp := postJSON(t, srv.URL+"/import/workers", body, &report)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import: status %d", resp.StatusCode)
	}
	if report.Imported != 1 || len(report.Errors) != 1 || report.Errors[0].Row != 1 {
		t.Errorf("report = %+v, want 1 imported and an error at index 1", report)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
