package logger

import (
	"context"
	"fmt"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TracingKey is the log field carrying the request tracing id.
const TracingKey = "x-ray-id"

type ctxKey struct{}

// BkLog is logger
var BkLog *BkLogger

func init() {
	InitLoggerDefaultDev()
}

// BkLogger wraps a zap logger with an optional tracing id.
// Use Logger for structured fields or the embedded SugaredLogger for templates.
type BkLogger struct {
	// tracing id
	TracingId string
	logLevel  zap.AtomicLevel
	Logger    *zap.Logger
	*zap.SugaredLogger
}

// FileConfig configures the rotating file output.
type FileConfig struct {
	OutputPath  string
	MaxSizeInMB int
	MaxBackups  int
	MaxAge      int
	Dev         bool
}

// InitLoggerDefault -- init production logger on stdout
func InitLoggerDefault() {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig = encoderCfg
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stdout"}
	BkLog = build(cfg)
}

// InitLoggerDefaultDev -- init development logger on stdout
func InitLoggerDefaultDev() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	cfg.OutputPaths = []string{"stdout"}
	BkLog = build(cfg)
}

// InitLoggerFile -- init logger writing to a rotating file
func InitLoggerFile(fc FileConfig) {
	BkLog = NewLogger(fc)
}

func build(cfg zap.Config) *BkLogger {
	l, err := cfg.Build()
	if err != nil {
		fmt.Printf("Cannot create logger from configuration: %v\n", err)
		l = zap.NewNop()
	}
	return &BkLogger{logLevel: cfg.Level, Logger: l, SugaredLogger: l.Sugar()}
}

// NewLogger creates a logger backed by lumberjack.
func NewLogger(fc FileConfig) *BkLogger {
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   fc.OutputPath,
		MaxSize:    fc.MaxSizeInMB, // megabytes
		MaxBackups: fc.MaxBackups,
		MaxAge:     fc.MaxAge, // days
		Compress:   true,
		LocalTime:  true,
	})

	var encoder zapcore.Encoder
	if fc.Dev {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(cfg)
	}

	atom := zap.NewAtomicLevelAt(zap.InfoLevel)
	l := zap.New(zapcore.NewCore(encoder, w, atom), zap.AddCaller())
	return &BkLogger{logLevel: atom, Logger: l, SugaredLogger: l.Sugar()}
}

// NewLoggerFromCore wraps an existing zap core, mostly for tests.
func NewLoggerFromCore(core zapcore.Core) *BkLogger {
	l := zap.New(core)
	return &BkLogger{logLevel: zap.NewAtomicLevel(), Logger: l, SugaredLogger: l.Sugar()}
}

// WithTracingId returns a copy whose entries carry the tracing id.
func (b *BkLogger) WithTracingId(tracingId string) *BkLogger {
	l := b.Logger.With(zap.String(TracingKey, tracingId))
	return &BkLogger{TracingId: tracingId, logLevel: b.logLevel, Logger: l, SugaredLogger: l.Sugar()}
}

// SetLevel changes the level at runtime.
func (b *BkLogger) SetLevel(level string) error {
	return b.logLevel.UnmarshalText([]byte(level))
}

// Level returns the current minimum enabled level.
func (b *BkLogger) Level() zapcore.Level {
	return b.logLevel.Level()
}

// Close will flush log to file
func (b *BkLogger) Close() {
	_ = b.Logger.Sync()
}

// LoggerCtx returns the logger stored in ctx, or BkLog.
func LoggerCtx(ctx context.Context) *BkLogger {
	if l, ok := ctx.Value(ctxKey{}).(*BkLogger); ok {
		return l
	}
	return BkLog
}

// AddLogCtx stores a logger tagged with tracingId in ctx.
func AddLogCtx(ctx context.Context, bkLogger *BkLogger, tracingId string) context.Context {
	return context.WithValue(ctx, ctxKey{}, bkLogger.WithTracingId(tracingId))
}
