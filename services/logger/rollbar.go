package logsvc

import (
	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/user"
)

// RollbarLogger reports events to rollbar and prints them through zap.
type RollbarLogger struct {
	zl *zap.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(zl *zap.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{zl: zl}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Sync flushes buffered zap entries & waits for pending rollbar reports.
func (l RollbarLogger) Sync() {
	_ = l.zl.Sync()
	rollbar.Wait()
}

// expected fmt: msg | error, map[string]interface{}, user.User
func (l RollbarLogger) prepare(msg string, args []interface{}) []interface{} {
	var usrSet bool
	newArgs := make([]interface{}, 0, len(args)+1)
	newArgs = append(newArgs, msg)
	for _, arg := range args {
		// set logged in User
		if usr, ok := arg.(user.User); ok {
			if !usrSet { // only set one User
				rollbar.SetPerson(usr.ID, usr.Name, usr.Email)
				usrSet = true
			}
		} else {
			newArgs = append(newArgs, arg)
		}
	}
	if !usrSet {
		rollbar.ClearPerson()
	}
	return newArgs
}

func fields(args []interface{}) []zap.Field {
	flds := make([]zap.Field, 0, len(args))
	for _, arg := range args {
		switch a := arg.(type) {
		case error:
			flds = append(flds, zap.Error(a))
		case user.User:
			if a.ID != "" {
				flds = append(flds, zap.String("user_id", a.ID))
			}
		case map[string]interface{}:
			for k, v := range a {
				flds = append(flds, zap.Any(k, v))
			}
		default:
			flds = append(flds, zap.Any("extra", a))
		}
	}
	return flds
}

func (l RollbarLogger) print(level zapcore.Level, msg string, args []interface{}) {
	if ce := l.zl.Check(level, msg); ce != nil {
		ce.Write(fields(args)...)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rollbar.Debug(l.prepare(msg, args)...)
	l.print(zapcore.DebugLevel, msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rollbar.Info(l.prepare(msg, args)...)
	l.print(zapcore.InfoLevel, msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rollbar.Warning(l.prepare(msg, args)...)
	l.print(zapcore.WarnLevel, msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rollbar.Error(l.prepare(msg, args)...)
	l.print(zapcore.ErrorLevel, msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rollbar.Critical(l.prepare(msg, args)...)
	rollbar.Wait()
	l.print(zapcore.FatalLevel, msg, args) // exits
}
