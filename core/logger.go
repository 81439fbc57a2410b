package core

// StudentRef identifies the student a log entry is about.
type StudentRef struct {
	ID    string
	Name  string
	Email string
}

// Logger is any service that can log. Expected args: error, map[string]interface{}, StudentRef.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
