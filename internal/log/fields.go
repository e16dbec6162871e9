package log

// Common field names for structured logging.
const (
	FieldComponent = "component"
	FieldError     = "error"
	FieldSession   = "session_id"
	FieldSync      = "sync_id"
	FieldCompany   = "company"
	FieldSource    = "source"
	FieldGroups    = "groups"
	FieldLedgers   = "ledgers"
	FieldVouchers  = "vouchers"
	FieldIssues    = "issues"
	FieldDuration  = "duration_ms"
	FieldURL       = "url"
	FieldPath      = "path"
)

// Component names.
const (
	ComponentCLI     = "cli"
	ComponentSession = "session"
	ComponentTally   = "tally"
	ComponentStore   = "store"
	ComponentSource  = "source"
)
