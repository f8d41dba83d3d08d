package shared

// Logger is the leveled logging interface used throughout okta-creds. Components never
// depend on a concrete logging library, so any framework shimmed to these four methods
// can be injected. The concrete type used by the cli is simple-logger
// (https://github.com/mmmorris1975/simple-logger).
type Logger interface {
	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warningf(string, ...interface{})
	Errorf(string, ...interface{})
}

// DefaultLogger is a Logger-compatible implementation for use as a fallback/default logger.  It does nothing.
type DefaultLogger bool

// Debugf does nothing.
func (l *DefaultLogger) Debugf(string, ...interface{}) {}

// Infof does nothing.
func (l *DefaultLogger) Infof(string, ...interface{}) {}

// Warningf does nothing.
func (l *DefaultLogger) Warningf(string, ...interface{}) {}

// Errorf does nothing.
func (l *DefaultLogger) Errorf(string, ...interface{}) {}
