package logbuf

// Wire-level names carried by entries and accepted by the stream filters.
// The scheme is fixed by the streaming interface; internal/logging maps
// slog levels onto it at the capture boundary.
const (
	LevelDebug    = "DEBUG"
	LevelInfo     = "INFO"
	LevelWarning  = "WARNING"
	LevelError    = "ERROR"
	LevelCritical = "CRITICAL"
)

var levelRanks = map[string]int{
	LevelDebug:    10,
	LevelInfo:     20,
	LevelWarning:  30,
	LevelError:    40,
	LevelCritical: 50,
}

// LevelRank returns the ordering rank of a wire level name.
// Unknown names rank 0, below every threshold.
func LevelRank(level string) int {
	return levelRanks[level]
}

// Entry is a single captured log record. Entries are immutable once
// appended; Seq is assigned by the buffer and doubles as the resumable
// cursor for consumers.
type Entry struct {
	Seq        uint64            `json:"seq"`
	Timestamp  string            `json:"timestamp"`
	Level      string            `json:"level"`
	LoggerName string            `json:"logger_name"`
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields"`
}
