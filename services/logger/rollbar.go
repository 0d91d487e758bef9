package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/masomo-storefront/core"
	"github.com/trezcool/masomo-storefront/core/user"
)

// Levels
const (
	levelDebug = "DEBUG"
	levelInfo  = "INFO"
	levelWarn  = "WARN"
	levelError = "ERROR"
	levelFatal = "FATAL"
)

// RollbarLogger writes to a std logger and reports to Rollbar (when enabled).
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// split separates the logged in user from the other args.
// expected fmt: msg | error, map[string]interface{}, user.User
func split(args []interface{}) (usr *user.User, rest []interface{}) {
	rest = make([]interface{}, 0, len(args))
	for _, arg := range args {
		if u, ok := arg.(user.User); ok {
			if usr == nil { // only keep one User
				usr = &u
			}
			continue
		}
		rest = append(rest, arg)
	}
	return usr, rest
}

func (l RollbarLogger) report(level, msg string, args []interface{}) {
	usr, rest := split(args)
	if usr != nil {
		rollbar.SetPerson(usr.ID, usr.Name, usr.Email)
	} else {
		rollbar.ClearPerson()
	}

	rbArgs := append([]interface{}{msg}, rest...)
	switch level {
	case levelDebug:
		rollbar.Debug(rbArgs...)
	case levelInfo:
		rollbar.Info(rbArgs...)
	case levelWarn:
		rollbar.Warning(rbArgs...)
	case levelError:
		rollbar.Error(rbArgs...)
	case levelFatal:
		rollbar.Critical(rbArgs...)
	}

	l.std.Printf("%s: %s", level, msg)
	for _, arg := range rest {
		l.std.Printf("%+v", arg)
	}
	if usr != nil {
		l.std.Printf("user: %s <%s>", usr.ID, usr.Email)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) { l.report(levelDebug, msg, args) }
func (l RollbarLogger) Info(msg string, args ...interface{})  { l.report(levelInfo, msg, args) }
func (l RollbarLogger) Warn(msg string, args ...interface{})  { l.report(levelWarn, msg, args) }
func (l RollbarLogger) Error(msg string, args ...interface{}) { l.report(levelError, msg, args) }

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.report(levelFatal, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}
