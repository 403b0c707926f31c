package services

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"retagger/internal/interfaces"
	"retagger/internal/shared"
)

// NewLogger returns the logger for a log_format option: "json" and
// "console" log through zerolog, anything else prints coloured text.
func NewLogger(format string) interfaces.LoggerService {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONLogger(os.Stderr)
	case "console":
		return NewJSONLogger(zerolog.ConsoleWriter{Out: os.Stderr})
	default:
		return NewConsoleLogger()
	}
}

// ConsoleLogger implementation
type ConsoleLogger struct {
	debugMode bool
}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{debugMode: false}
}

func (cl *ConsoleLogger) Info(message string, args ...interface{}) {
	shared.ColorInfo.Printf(message+"\n", args...)
}

func (cl *ConsoleLogger) Warning(message string, args ...interface{}) {
	shared.ColorWarning.Printf("⚠️ "+message+"\n", args...)
}

func (cl *ConsoleLogger) Error(message string, args ...interface{}) {
	shared.ColorError.Printf("❌ "+message+"\n", args...)
}

func (cl *ConsoleLogger) Debug(message string, args ...interface{}) {
	if !cl.debugMode {
		return
	}
	shared.ColorMuted.Printf("🐛 DEBUG: "+message+"\n", args...)
}

func (cl *ConsoleLogger) Success(message string, args ...interface{}) {
	shared.ColorSuccess.Printf("✅ "+message+"\n", args...)
}

func (cl *ConsoleLogger) SetDebugMode(enabled bool) {
	cl.debugMode = enabled
}

// JSONLogger writes structured log lines through zerolog
type JSONLogger struct {
	logger zerolog.Logger
}

func NewJSONLogger(w io.Writer) *JSONLogger {
	return &JSONLogger{
		logger: zerolog.New(w).With().Timestamp().Logger().Level(zerolog.InfoLevel),
	}
}

// Zerolog exposes the underlying logger, e.g. for HTTP request logging.
func (jl *JSONLogger) Zerolog() zerolog.Logger {
	return jl.logger
}

func (jl *JSONLogger) Info(message string, args ...interface{}) {
	jl.logger.Info().Msg(fmt.Sprintf(message, args...))
}

func (jl *JSONLogger) Warning(message string, args ...interface{}) {
	jl.logger.Warn().Msg(fmt.Sprintf(message, args...))
}

func (jl *JSONLogger) Error(message string, args ...interface{}) {
	jl.logger.Error().Msg(fmt.Sprintf(message, args...))
}

func (jl *JSONLogger) Debug(message string, args ...interface{}) {
	jl.logger.Debug().Msg(fmt.Sprintf(message, args...))
}

func (jl *JSONLogger) Success(message string, args ...interface{}) {
	jl.logger.Info().Bool("success", true).Msg(fmt.Sprintf(message, args...))
}

func (jl *JSONLogger) SetDebugMode(enabled bool) {
	if enabled {
		jl.logger = jl.logger.Level(zerolog.DebugLevel)
	} else {
		jl.logger = jl.logger.Level(zerolog.InfoLevel)
	}
}
