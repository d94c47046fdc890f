package logger

// noopLogger discards everything. Used by tests and by any code path that
// needs a Logger before a real one has been constructed.
type noopLogger struct{}

// NewNoop returns a Logger that does nothing.
func NewNoop() Logger {
	return noopLogger{}
}

func (noopLogger) Debug(string, ...Field)       {}
func (noopLogger) Info(string, ...Field)        {}
func (noopLogger) Warn(string, ...Field)        {}
func (noopLogger) Error(string, ...Field)       {}
func (noopLogger) Fatal(string, ...Field)       {}
func (n noopLogger) WithFields(...Field) Logger { return n }
func (n noopLogger) WithError(error) Logger     { return n }
func (noopLogger) Sync() error                  { return nil }
