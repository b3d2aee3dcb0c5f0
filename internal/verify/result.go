package verify

// DocumentType identifies which rule set a validation ran under.
type DocumentType string

const (
	DocumentTypeStudent DocumentType = "student"
	DocumentTypeLicense DocumentType = "license"
)

// Field names used in extracted field maps. An empty string value means the
// heuristic found nothing; missing fields are not errors.
const (
	FieldName          = "name"
	FieldStudentID     = "studentId"
	FieldUniversity    = "university"
	FieldDepartment    = "department"
	FieldLicenseNumber = "licenseNumber"
	FieldIssueDate     = "issueDate"
)

// Fields maps field names to best-effort extracted values.
type Fields map[string]string

// ValidationResult is the outcome of one document validation call. It is
// created once per call and never mutated after construction.
type ValidationResult struct {
	// Valid is the rule engine's verdict.
	Valid bool `json:"valid"`

	// DocumentType is the rule set that produced the verdict.
	DocumentType DocumentType `json:"documentType"`

	// Text is the full reconstructed text the rules ran against.
	Text string `json:"text"`

	// Fields holds the extracted structured fields.
	Fields Fields `json:"fields"`

	// Diagnostics carries the named boolean and numeric signals behind the
	// verdict (keyword gates, shape test, keyword score).
	Diagnostics map[string]any `json:"diagnostics,omitempty"`

	// Message is a human-readable reason, set on invalid or failed results.
	Message string `json:"message,omitempty"`

	// OCREngine tags which provider produced the text.
	OCREngine string `json:"ocrEngine"`
}
