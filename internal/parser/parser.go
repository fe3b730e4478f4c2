// Package parser extracts proposal records from ServiceNow update-set XML exports.
package parser

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/hack4good/ideadex/internal/models"
)

// RecordElement is the XML element name of a hack4good proposal record.
const RecordElement = "x_snc_hack4good_0_hack4good_proposal"

// Placeholder is rendered for optional fields that are absent.
const Placeholder = "—"

// FailureReason classifies why a file could not be parsed.
type FailureReason string

const (
	ReasonDecode        FailureReason = "decode_error"
	ReasonMissingRecord FailureReason = "missing_record_node"
	ReasonMissingField  FailureReason = "missing_required_field"
)

// Failure is a typed per-file parse failure. It is collected by the caller
// and reported in the run summary; it never aborts the run.
type Failure struct {
	Path   string
	Reason FailureReason
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("parser: %s: %s: %v", f.Path, f.Reason, f.Err)
	}
	return fmt.Sprintf("parser: %s: %s", f.Path, f.Reason)
}

func (f *Failure) Unwrap() error { return f.Err }

// recordFields mirrors the proposal fields we read from the export.
type recordFields struct {
	ProjectName      string `xml:"project_name"`
	FocusArea        string `xml:"focus_area"`
	Description      string `xml:"description"`
	ShortDescription string `xml:"short_description"`
	ImpactStatement  string `xml:"impact_statement"`
	SysCreatedOn     string `xml:"sys_created_on"`
}

// nestedDoc matches the usual export shape where the record element is a
// child of a wrapper (<record_update> or <unload>).
type nestedDoc struct {
	Record *recordFields `xml:"x_snc_hack4good_0_hack4good_proposal"`
}

// flatDoc matches exports where the record element is the document root.
type flatDoc struct {
	XMLName xml.Name `xml:"x_snc_hack4good_0_hack4good_proposal"`
	recordFields
}

// FocusOrder is the fixed focus-area enumeration in canonical order.
var FocusOrder = []string{"cure", "disaster", "education", "sustainability", "other"}

var focusLabels = map[string]string{
	"cure":           "Cure",
	"disaster":       "Disaster Response",
	"education":      "Education",
	"sustainability": "Sustainability",
	"other":          "Other",
}

// FocusLabel maps a raw focus_area key to its display label. Unrecognised
// keys are humanized (underscores to spaces, each word capitalized) rather
// than rejected.
func FocusLabel(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	if key == "" {
		return focusLabels["other"]
	}
	if label, ok := focusLabels[key]; ok {
		return label
	}
	return humanize(key)
}

func humanize(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Parse decodes raw export bytes into a Proposal. sourcePath is recorded on
// both the proposal and any failure. The returned error is always a *Failure.
func Parse(sourcePath string, data []byte) (*models.Proposal, *Failure) {
	rec, fail := locateRecord(sourcePath, data)
	if fail != nil {
		return nil, fail
	}

	name := strings.TrimSpace(rec.ProjectName)
	if name == "" {
		return nil, &Failure{Path: sourcePath, Reason: ReasonMissingField, Err: fmt.Errorf("project_name is empty")}
	}

	description := strings.TrimSpace(rec.Description)
	if description == "" {
		description = strings.TrimSpace(rec.ShortDescription)
	}
	if description == "" {
		description = Placeholder
	}

	impact := strings.TrimSpace(rec.ImpactStatement)
	if impact == "" {
		impact = Placeholder
	}

	return &models.Proposal{
		ProjectName: name,
		FocusArea:   FocusLabel(rec.FocusArea),
		Description: description,
		Impact:      impact,
		CreatedAt:   parseCreatedOn(rec.SysCreatedOn),
		SourcePath:  sourcePath,
	}, nil
}

// locateRecord tries the nested record path first, then the flat one.
func locateRecord(sourcePath string, data []byte) (*recordFields, *Failure) {
	var nested nestedDoc
	if err := xml.Unmarshal(data, &nested); err != nil {
		return nil, &Failure{Path: sourcePath, Reason: ReasonDecode, Err: err}
	}
	if nested.Record != nil {
		return nested.Record, nil
	}

	var flat flatDoc
	if err := xml.Unmarshal(data, &flat); err == nil && flat.XMLName.Local == RecordElement {
		return &flat.recordFields, nil
	}

	return nil, &Failure{Path: sourcePath, Reason: ReasonMissingRecord}
}

// parseCreatedOn reinterprets a "YYYY-MM-DD HH:MM:SS" export value as UTC.
// Invalid or absent values yield nil rather than failing the record.
func parseCreatedOn(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	iso := strings.Replace(raw, " ", "T", 1) + "Z"
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return nil
	}
	return &t
}
