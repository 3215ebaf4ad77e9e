package port

// Logger is the minimal logging dependency of application services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// NopLogger discards everything
type NopLogger struct{}

// Info implements Logger
func (NopLogger) Info(string, ...interface{}) {}

// Error implements Logger
func (NopLogger) Error(string, ...interface{}) {}
