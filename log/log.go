// Package log is the leveled logger used across the explorer. It wraps a
// sugared zap logger behind package level functions so callers never need to
// carry a logger around.
package log

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	log   *zap.SugaredLogger
	level zap.AtomicLevel

	errorLogMu sync.Mutex
	errorLog   *os.File
)

func init() {
	// $LOG_LEVEL overrides the default level, which is handy to get debug
	// output from tests without touching the code.
	lvl := "error"
	if s := os.Getenv("LOG_LEVEL"); s != "" {
		lvl = s
	}
	Init(lvl, "stderr")
}

// Logger returns the underlying sugared zap logger.
func Logger() *zap.SugaredLogger { return log }

// Init initializes the logger. Output can be "stdout", "stderr" or a file path.
func Init(logLevel, output string) {
	cfg := newConfig(logLevel, output)
	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	level = cfg.Level
	log = logger.Sugar()
	log.Debugf("logger ready at level %s with output %s", logLevel, output)
}

// SetLevel changes the minimum enabled level without rebuilding the logger.
func SetLevel(logLevel string) {
	level.SetLevel(levelFromString(logLevel))
}

// Level returns the current minimum enabled level as a string.
func Level() string {
	return level.Level().String()
}

// SetFileErrorLog makes warning and error messages also be appended to path.
func SetFileErrorLog(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	errorLogMu.Lock()
	defer errorLogMu.Unlock()
	if errorLog != nil {
		errorLog.Close()
	}
	errorLog = f
	log.Infof("using file %s for logging warnings and errors", path)
	return nil
}

func levelFromString(logLevel string) zapcore.Level {
	switch logLevel {
	case "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "warn":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	case "fatal":
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}

func newConfig(logLevel, output string) zap.Config {
	encoderCfg := zapcore.EncoderConfig{
		TimeKey:       "ts",
		LevelKey:      "level",
		CallerKey:     "caller",
		MessageKey:    "msg",
		StacktraceKey: "stacktrace",
		LineEnding:    zapcore.DefaultLineEnding,
		EncodeLevel:   zapcore.CapitalColorLevelEncoder,
		EncodeTime: func(ts time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(ts.Local().Format(time.RFC3339))
		},
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	return zap.Config{
		Level:    zap.NewAtomicLevelAt(levelFromString(logLevel)),
		Encoding: "console",
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		EncoderConfig:    encoderCfg,
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{output},
	}
}

func writeErrorToFile(msg string) {
	errorLogMu.Lock()
	f := errorLog
	errorLogMu.Unlock()
	if f == nil {
		return
	}
	// do not block the caller
	go f.WriteString(fmt.Sprintf("[%s] %s\n", time.Now().Format("2006/0102/150405"), msg))
}

// Debug sends a debug level log message
func Debug(args ...any) {
	log.Debug(args...)
}

// Info sends an info level log message
func Info(args ...any) {
	log.Info(args...)
}

// Warn sends a warn level log message
func Warn(args ...any) {
	log.Warn(args...)
	writeErrorToFile(fmt.Sprint(args...))
}

// Error sends an error level log message
func Error(args ...any) {
	log.Error(args...)
	writeErrorToFile(fmt.Sprint(args...))
}

// Fatal sends a fatal level log message and exits.
func Fatal(args ...any) {
	log.Fatal(args...)
	panic("unreachable")
}

// Debugf sends a formatted debug level log message
func Debugf(template string, args ...any) {
	log.Debugf(template, args...)
}

// Infof sends a formatted info level log message
func Infof(template string, args ...any) {
	log.Infof(template, args...)
}

// Warnf sends a formatted warn level log message
func Warnf(template string, args ...any) {
	log.Warnf(template, args...)
	writeErrorToFile(fmt.Sprintf(template, args...))
}

// Errorf sends a formatted error level log message
func Errorf(template string, args ...any) {
	log.Errorf(template, args...)
	writeErrorToFile(fmt.Sprintf(template, args...))
}

// Fatalf sends a formatted fatal level log message and exits.
func Fatalf(template string, args ...any) {
	log.Fatalf(template, args...)
	panic("unreachable")
}

// Debugw sends a key-value formatted debug level log message
func Debugw(msg string, keysAndValues ...any) {
	log.Debugw(msg, keysAndValues...)
}

// Infow sends a key-value formatted info level log message
func Infow(msg string, keysAndValues ...any) {
	log.Infow(msg, keysAndValues...)
}

// Warnw sends a key-value formatted warn level log message
func Warnw(msg string, keysAndValues ...any) {
	log.Warnw(msg, keysAndValues...)
	writeErrorToFile(fmt.Sprint(append([]any{msg, " "}, keysAndValues...)...))
}

// Errorw sends a key-value formatted error level log message
func Errorw(msg string, keysAndValues ...any) {
	log.Errorw(msg, keysAndValues...)
	writeErrorToFile(fmt.Sprint(append([]any{msg, " "}, keysAndValues...)...))
}
