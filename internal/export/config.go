package export

// Config holds configuration for one export run.
type Config struct {
	EventID   string // Liveheats event id
	OutputDir string // Directory the report file is written to
	LogFile   string // Optional log file, in addition to stderr
	Verbose   bool   // Enable debug logging
}
