// Package csvio is the CSV import/export adapter. It owns line parsing and
// field-level validation, turns rows into entity records, and feeds them to
// the roster bulk-create operations; domain rules (enum membership, date
// ordering, foreman capability) stay in the core. Row numbers in reports are
// 1-based file lines, header included, so row 2 is the first data row.
package csvio

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"crcustom/manload-service/internal/roster"
)

// WorkersHeader and JobsHeader are the expected column layouts.
const (
	WorkersHeader = "name,role,division,isForeman"
	JobsHeader    = "name,division,location,startDate,endDate,hours,crewSize"
)

// ImportWorkers parses worker rows and bulk-creates them in the store. Rows
// that fail to parse and rows the core rejects land in the same report,
// ordered by line number; the batch never aborts.
func ImportWorkers(r io.Reader, store *roster.Store) (roster.ImportReport, error) {
	rows, err := readRows(r)
	if err != nil {
		return roster.ImportReport{}, err
	}

	var parseErrs []roster.ImportError
	recs := make([]roster.WorkerRecord, 0, len(rows))
	lines := make([]int, 0, len(rows))
	for _, row := range rows {
		if len(row.fields) < 4 {
			parseErrs = append(parseErrs, roster.ImportError{
				Row:    row.line,
				Reason: fmt.Sprintf("expected %s, got %d field(s)", WorkersHeader, len(row.fields)),
			})
			continue
		}
		recs = append(recs, roster.WorkerRecord{
			Name:      row.fields[0],
			Role:      row.fields[1],
			Division:  row.fields[2],
			IsForeman: row.fields[3] == "true",
		})
		lines = append(lines, row.line)
	}

	return mergeReport(store.ImportWorkers(recs), lines, parseErrs), nil
}

// ImportJobs parses job rows and bulk-creates them in the store. Unlike the
// core, the CSV layout requires every column including both dates.
func ImportJobs(r io.Reader, store *roster.Store) (roster.ImportReport, error) {
	rows, err := readRows(r)
	if err != nil {
		return roster.ImportReport{}, err
	}

	var parseErrs []roster.ImportError
	recs := make([]roster.JobRecord, 0, len(rows))
	lines := make([]int, 0, len(rows))
	for _, row := range rows {
		rec, reason := jobRecord(row.fields)
		if reason != "" {
			parseErrs = append(parseErrs, roster.ImportError{Row: row.line, Reason: reason})
			continue
		}
		recs = append(recs, rec)
		lines = append(lines, row.line)
	}

	return mergeReport(store.ImportJobs(recs), lines, parseErrs), nil
}

func jobRecord(fields []string) (roster.JobRecord, string) {
	if len(fields) < 7 {
		return roster.JobRecord{}, fmt.Sprintf("expected %s, got %d field(s)", JobsHeader, len(fields))
	}
	for i, name := range strings.Split(JobsHeader, ",") {
		if fields[i] == "" {
			return roster.JobRecord{}, fmt.Sprintf("missing required field %s", name)
		}
	}
	hours, err := strconv.Atoi(fields[5])
	if err != nil {
		return roster.JobRecord{}, fmt.Sprintf("invalid hours %q, must be a number", fields[5])
	}
	crewSize, err := strconv.Atoi(fields[6])
	if err != nil {
		return roster.JobRecord{}, fmt.Sprintf("invalid crewSize %q, must be a number", fields[6])
	}
	return roster.JobRecord{
		Name:      fields[0],
		Division:  fields[1],
		Location:  fields[2],
		StartDate: fields[3],
		EndDate:   fields[4],
		Hours:     hours,
		CrewSize:  crewSize,
	}, ""
}

// ─── Row reading ─────────────────────────────────────────────────────────────

type row struct {
	line   int
	fields []string
}

// readRows reads all data rows, skipping the header line and blank lines.
// Rows are plain comma-separated values with surrounding whitespace trimmed;
// quoting is not supported, matching the template layout. Line numbers count
// every file line so report rows map directly onto the user's editor.
func readRows(r io.Reader) ([]row, error) {
	var rows []row

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if line == 1 {
			continue // header
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		rows = append(rows, row{line: line, fields: fields})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	return rows, nil
}

// mergeReport rebases the core's index-based rows onto file lines and folds
// in the adapter's own parse errors, ordered by line.
func mergeReport(report roster.ImportReport, lines []int, parseErrs []roster.ImportError) roster.ImportReport {
	merged := roster.ImportReport{Imported: report.Imported, Errors: parseErrs}
	for _, e := range report.Errors {
		merged.Errors = append(merged.Errors, roster.ImportError{Row: lines[e.Row], Reason: e.Reason})
	}
	sort.Slice(merged.Errors, func(i, j int) bool { return merged.Errors[i].Row < merged.Errors[j].Row })
	return merged
}

// ─── Templates ───────────────────────────────────────────────────────────────

// WorkerTemplate is a ready-to-edit workers CSV with example rows.
const WorkerTemplate = WorkersHeader + `
John Smith,journeyman,commercial,false
Jane Doe,apprentice,residential,false
Mike Jones,foreman,both,true
Sarah Williams,journeyman,commercial,false
Tom Brown,foreman,residential,true
`

// JobTemplate is a ready-to-edit jobs CSV with example rows.
const JobTemplate = JobsHeader + `
Downtown Office Building,commercial,123 Main St,2024-02-01,2024-03-15,160,4
Smith Residence,residential,456 Oak Ave,2024-02-10,2024-02-28,80,2
Warehouse Expansion,commercial,789 Industrial Pkwy,2024-03-01,2024-04-30,320,6
Jones House Rewire,residential,321 Elm St,2024-02-15,2024-03-01,60,2
`
