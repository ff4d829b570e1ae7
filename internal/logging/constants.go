package logging

// Field names shared by every component so log lines can be filtered
// consistently, whichever command produced them.
const (
	FieldFile        = "file_path"
	FieldOperation   = "operation"
	FieldStatus      = "status"
	FieldReason      = "reason"
	FieldError       = "error"
	FieldDuration    = "duration_ms"
	FieldCount       = "count"
	FieldDelimiter   = "delimiter"
	FieldOutputFile  = "output_file"
	FieldEncoding    = "encoding"
	FieldBatchID     = "batch_id"
	FieldRow         = "row"
	FieldColumn      = "column"
	FieldHeaderRow   = "header_row"
	FieldPeriodCount = "period_count"
	FieldEmployee    = "employee"
	FieldSequence    = "seq"
	FieldRecipient   = "recipient"
	FieldFormat      = "format"
)
