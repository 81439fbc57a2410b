package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/releve/core"
)

// RollbarLogger reports to rollbar and mirrors every entry on a std logger.
type RollbarLogger struct {
	std   *log.Logger
	debug bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.TestMode)
	return &RollbarLogger{std: std, debug: conf.Debug}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// prepare turns `msg | error, map[string]interface{}, core.StudentRef` args into rollbar
// interfaces. The first StudentRef becomes the rollbar person; later ones are dropped.
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var student *core.StudentRef
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case core.StudentRef:
			if student == nil {
				student = &a
			}
		case *core.StudentRef:
			if student == nil && a != nil {
				student = a
			}
		default:
			newArgs = append(newArgs, arg)
		}
	}
	if student != nil {
		rollbar.SetPerson(student.ID, student.Name, student.Email)
	} else {
		rollbar.ClearPerson()
	}
	return newArgs
}

func (l RollbarLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("[%s] %s", level, msg)
	for _, arg := range args {
		switch a := arg.(type) {
		case core.StudentRef:
			l.std.Printf("  student: %s", a.ID)
		default:
			l.std.Printf("  %+v", a)
		}
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	if !l.debug {
		return
	}
	rollbar.Debug(l.prepare(msg, args)...)
	l.print("DEBUG", msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.print("INFO", msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.print("WARN", msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.print("ERROR", msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	rollbar.Wait()
	l.print("FATAL", msg, args)
	l.std.Fatal(msg)
}
