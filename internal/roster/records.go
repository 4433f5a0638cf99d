package roster

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared by every record check; validator.Validate is safe for
// concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ─── Input records ───────────────────────────────────────────────────────────

// WorkerRecord is the validated input for creating or updating a worker.
// Status and relationship membership are never part of the record: status is
// derived state owned by the assignment engine.
type WorkerRecord struct {
	Name      string `json:"name" validate:"required"`
	Role      string `json:"role" validate:"required,oneof=foreman journeyman apprentice"`
	Division  string `json:"division" validate:"required,oneof=commercial residential both"`
	IsForeman bool   `json:"isForeman"`
}

// JobRecord is the validated input for creating a job. Dates are optional at
// the domain level (undated jobs simply never appear on the timeline); when
// both are present the end date must not precede the start date.
type JobRecord struct {
	Name      string `json:"name" validate:"required"`
	Division  string `json:"division" validate:"required,oneof=commercial residential"`
	Location  string `json:"location" validate:"required"`
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Hours     int    `json:"hours" validate:"gte=0"`
	CrewSize  int    `json:"crewSize" validate:"gte=0"`
}

// Validate applies the struct tags plus the foreman-capability rule: a record
// claiming role "foreman" must also carry the foreman flag.
func (r WorkerRecord) Validate() error {
	if err := validate.Struct(r); err != nil {
		return &ValidationError{Msg: validationMessage(err)}
	}
	if r.Role == string(RoleForeman) && !r.IsForeman {
		return &ValidationError{Msg: fmt.Sprintf("worker %q has role foreman but isForeman is false", r.Name)}
	}
	return nil
}

// Validate applies the struct tags plus the date-ordering rule.
func (r JobRecord) Validate() error {
	if err := validate.Struct(r); err != nil {
		return &ValidationError{Msg: validationMessage(err)}
	}
	if r.StartDate != "" && r.EndDate != "" {
		start, _ := ParseDate(r.StartDate)
		end, _ := ParseDate(r.EndDate)
		if end.Before(start) {
			return &ValidationError{Msg: fmt.Sprintf("end date %s precedes start date %s", r.EndDate, r.StartDate)}
		}
	}
	return nil
}

// validationMessage flattens a validator error into a single readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("missing required field %s", field))
		case "oneof":
			parts = append(parts, fmt.Sprintf("invalid %s %q, must be one of: %s", field, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", ")))
		case "datetime":
			parts = append(parts, fmt.Sprintf("invalid %s %q, use format YYYY-MM-DD", field, fe.Value()))
		case "gte":
			parts = append(parts, fmt.Sprintf("%s must be >= %s", field, fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("invalid %s", field))
		}
	}
	return strings.Join(parts, "; ")
}

// ─── Bulk-import report ──────────────────────────────────────────────────────

// ImportError describes one rejected row of a bulk import.
type ImportError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportReport is the per-record outcome of a bulk create: best-effort partial
// success, one error entry per rejected row.
type ImportReport struct {
	Imported int           `json:"imported"`
	Errors   []ImportError `json:"errors"`
}
