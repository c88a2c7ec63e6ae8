package logger

import (
	"context"
	"fmt"

	"github.com/danilofalcao/llama-relay/internal/constants"
	contextutils "github.com/danilofalcao/llama-relay/internal/utils/context"
	"go.uber.org/zap"
)

var (
	Fallback = New("fallback", DEBUG, nil, NewSink(""))
)

type Logger struct {
	name   string
	level  LogLevel
	exitCh chan string
	sink   *zap.Logger
}

func New(name string, level LogLevel, exitCh chan string, sink *zap.Logger) *Logger {
	if sink == nil {
		sink = zap.NewNop()
	}
	return &Logger{
		name:   name,
		level:  level,
		exitCh: exitCh,
		sink:   sink.Named(name),
	}
}

func (l *Logger) out(ctx context.Context, s string, level LogLevel) {
	fields := make([]zap.Field, 0, 2)
	if level == TRACE {
		fields = append(fields, zap.Bool("trace", true))
	}
	if reqId := contextutils.GetRequestID(ctx); reqId != "" {
		fields = append(fields, zap.String("request_id", reqId))
	}
	if ce := l.sink.Check(level.zapLevel(), s); ce != nil {
		ce.Write(fields...)
	}
}

// Clone returns a child logger with the given name and a copy of ctx carrying
// it. The request ID and deadline of ctx are preserved.
func (l *Logger) Clone(ctx context.Context, name string) (*Logger, context.Context) {
	lgr := &Logger{
		name:   name,
		level:  l.level,
		exitCh: l.exitCh,
		sink:   l.sink.Named(name),
	}
	return lgr, context.WithValue(ctx, constants.LoggerKey, lgr)
}

func (l *Logger) Name() string {
	return l.name
}

func (l *Logger) Level() LogLevel {
	return l.level
}

func (l *Logger) WithLevel(level LogLevel) *Logger {
	l.level = level
	return l
}

// Sync flushes any buffered entries in the sink.
func (l *Logger) Sync() error {
	return l.sink.Sync()
}

func (l *Logger) Trace(ctx context.Context, s string) {
	if l.level > TRACE {
		return
	}
	l.out(ctx, s, TRACE)
}

func (l *Logger) Tracef(ctx context.Context, s string, args ...any) {
	l.Trace(ctx, fmt.Sprintf(s, args...))
}

func (l *Logger) Debug(ctx context.Context, s string) {
	if l.level > DEBUG {
		return
	}
	l.out(ctx, s, DEBUG)
}

func (l *Logger) Debugf(ctx context.Context, s string, args ...any) {
	l.Debug(ctx, fmt.Sprintf(s, args...))

}

func (l *Logger) Info(ctx context.Context, s string) {
	if l.level > INFO {
		return
	}
	l.out(ctx, s, INFO)
}

func (l *Logger) Infof(ctx context.Context, s string, args ...any) {
	l.Info(ctx, fmt.Sprintf(s, args...))
}

func (l *Logger) Warn(ctx context.Context, s string) {
	if l.level > WARN {
		return
	}
	l.out(ctx, s, WARN)
}

func (l *Logger) Warnf(ctx context.Context, s string, args ...any) {
	l.Warn(ctx, fmt.Sprintf(s, args...))
}

func (l *Logger) Error(ctx context.Context, s string) {
	if l.level > ERROR {
		return
	}
	l.out(ctx, s, ERROR)
}

func (l *Logger) Errorf(ctx context.Context, s string, args ...any) {
	l.Error(ctx, fmt.Sprintf(s, args...))
}

// Fatal logs s and hands it to the exit channel. The owner of the channel
// decides how the process ends. Only the first message is kept if nobody is
// draining the channel; later ones are logged but never block.
func (l *Logger) Fatal(ctx context.Context, s string) {
	if l.level > FATAL {
		return
	}
	l.out(ctx, s, FATAL)
	select {
	case l.exitCh <- s:
	default:
	}
}

func (l *Logger) Fatalf(ctx context.Context, s string, args ...any) {
	l.Fatal(ctx, fmt.Sprintf(s, args...))
}
