package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields, propagated through the call chain via context.
const (
	// FieldRunID is the harvest/lifecycle run ID (UUID)
	FieldRunID = "run_id"

	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldSource is the job source identifier
	FieldSource = "source"

	// FieldCategory is the job category (Fresher, Internship, Remote)
	FieldCategory = "category"

	// FieldStage is the lifecycle stage name (expire, scrape, reconcile)
	FieldStage = "stage"
)

// Standard metric fields, used for aggregation and alerting.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldStatus is the operation status
	FieldStatus = "status"

	// FieldSize is the response body size in bytes
	FieldSize = "size"
)
