package logging

// Field names for structured logging.
const (
	FieldError      = "error"
	FieldPath       = "path"
	FieldWorkingDir = "working_dir"
	FieldConfig     = "config"

	// Marks.
	FieldMarksFile = "marks_file"
	FieldIndex     = "index"
	FieldName      = "name"
	FieldLine      = "line"
	FieldFrom      = "from"
	FieldTo        = "to"
	FieldCount     = "count"

	// Renumbering.
	FieldDelta    = "delta"
	FieldPending  = "pending"
	FieldDebounce = "debounce"

	// Symbols.
	FieldLanguage = "language"
	FieldSymbols  = "symbols"

	// Version.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
