package core

// Logger is any service the app can log to.
// Implementations may pull a logged-in account.Account out of args to
// attribute the event to a person.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
