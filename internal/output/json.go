package output

import (
	json "github.com/goccy/go-json"

	"bqschema/internal/diff"
	"bqschema/internal/schema"
	"bqschema/internal/validate"
)

type jsonFormatter struct{}

type diffSummary struct {
	Added    int  `json:"added"`
	Removed  int  `json:"removed"`
	Modified int  `json:"modified"`
	Breaking bool `json:"breaking"`
}

type diffPayload struct {
	Format   string                 `json:"format"`
	Summary  diffSummary            `json:"summary"`
	Warnings []string               `json:"warnings,omitempty"`
	Added    []*schema.OutputField  `json:"added,omitempty"`
	Removed  []*schema.OutputField  `json:"removed,omitempty"`
	Modified []*diff.FieldChangeSet `json:"modified,omitempty"`
}

type validationPayload struct {
	Format     string           `json:"format"`
	Valid      bool             `json:"valid"`
	ErrorCount int              `json:"errorCount"`
	Errors     []validate.Issue `json:"errors,omitempty"`
	Warnings   []validate.Issue `json:"warnings,omitempty"`
}

// FormatSchema renders fields as a plain BigQuery schema JSON array, the
// shape `bq mk --schema` and `bq load --schema` accept directly.
func (jsonFormatter) FormatSchema(fields []*schema.OutputField) (string, error) {
	return marshalJSON(fields)
}

func (jsonFormatter) FormatDiff(d *diff.SchemaDiff) (string, error) {
	payload := diffPayload{Format: string(FormatJSON)}
	if d != nil {
		payload.Warnings = d.Warnings
		payload.Added = d.Added
		payload.Removed = d.Removed
		payload.Modified = d.Modified
		payload.Summary = diffSummary{
			Added:    len(d.Added),
			Removed:  len(d.Removed),
			Modified: len(d.Modified),
			Breaking: d.HasBreakingChanges(),
		}
	}
	return marshalJSON(payload)
}

func (jsonFormatter) FormatValidation(r *validate.Result) (string, error) {
	payload := validationPayload{Format: string(FormatJSON)}
	if r != nil {
		payload.Valid = r.Valid
		payload.ErrorCount = r.ErrorCount
		payload.Errors = r.Errors
		payload.Warnings = r.Warnings
	}
	return marshalJSON(payload)
}

func marshalJSON(payload any) (string, error) {
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
