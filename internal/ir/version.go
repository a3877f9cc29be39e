package ir

// Version constants for records and engine.
const (
	// RecordVersion is the record schema version.
	RecordVersion = "1"

	// EngineVersion is the boundary engine version.
	EngineVersion = "0.1.0"
)
