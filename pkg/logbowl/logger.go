package logbowl

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// Environment variable names
const (
	LogLevelEnvVar  = "NILAUNCH_LOG_LEVEL"
	LogFormatEnvVar = "NILAUNCH_LOG_CONSOLE_FORMATTER"
)

// Log formats
const (
	FormatEmoji = "emoji"
	FormatText  = "text"
	FormatJSON  = "json"
)

// FatalExitCode is the process status used by Fatal.
const FatalExitCode = 1

var domains = map[string]string{"system": "⚙️", "config": "🔩", "process": "🧬", "launcher": "🚀", "compiler": "☕", "aot": "🏗️", "toolchain": "🧰", "env": "🌿", "file": "📄", "test": "🧪", "default": "❓"}
var actions = map[string]string{"init": "🌱", "parse": "🧩", "load": "💡", "resolve": "🔍", "build": "🏗️", "execute": "▶️", "fork": "🍴", "wait": "⏳", "exec": "🔀", "validate": "🛡️", "finish": "🏁", "info": "💡", "default": "⚙️"}
var statuses = map[string]string{"success": "✅", "failure": "❌", "error": "🔥", "warning": "⚠️", "info": "ℹ️", "debug": "🐞", "invalid": "💢", "notfound": "❓", "progress": "➡️", "ok": "✅", "default": "➡️"}

// exit terminates the process after a fatal diagnostic. Tests replace it.
var exit = os.Exit

func getEmoji(m map[string]string, key string) string {
	if val, ok := m[key]; ok {
		return val
	}
	return m["default"]
}

// Logger wraps hclog.Logger to provide the simplified API.
type Logger struct {
	hclog.Logger
}

// Create creates a new Logger instance writing to stderr.
func Create(name string) Logger {
	return New(name, nil)
}

// New creates a Logger writing to out. A nil out means stderr.
func New(name string, out io.Writer) Logger {
	levelStr := os.Getenv(LogLevelEnvVar)
	level := hclog.LevelFromString(strings.ToUpper(levelStr))
	if level == hclog.NoLevel {
		level = hclog.Info
	}

	formatStr := strings.ToLower(os.Getenv(LogFormatEnvVar))
	jsonFormat := formatStr == FormatJSON

	opts := &hclog.LoggerOptions{
		Name:       name,
		Level:      level,
		Output:     out,
		JSONFormat: jsonFormat,
	}
	return Logger{hclog.New(opts)}
}

func (l Logger) log(level hclog.Level, domain, action, status, message string, args ...interface{}) {
	formatStr := strings.ToLower(os.Getenv(LogFormatEnvVar))
	switch formatStr {
	case FormatText:
		l.Logger.Log(level, fmt.Sprintf("[%s] %s", strings.ToUpper(domain), message), args...)
	case FormatJSON:
		l.Logger.With("domain", domain, "action", action, "status", status).Log(level, message, args...)
	default: // Emoji format
		l.Logger.Log(level, fmt.Sprintf("%s %s %s %s", getEmoji(domains, domain), getEmoji(actions, action), getEmoji(statuses, status), message), args...)
	}
}

func (l Logger) Info(domain, action, status, message string, args ...interface{}) {
	l.log(hclog.Info, domain, action, status, message, args...)
}
func (l Logger) Debug(domain, action, status, message string, args ...interface{}) {
	l.log(hclog.Debug, domain, action, status, message, args...)
}
func (l Logger) Warn(domain, action, status, message string, args ...interface{}) {
	l.log(hclog.Warn, domain, action, status, message, args...)
}
func (l Logger) Error(domain, action, status, message string, args ...interface{}) {
	l.log(hclog.Error, domain, action, status, message, args...)
}

// Fatal logs at error level and terminates the process with FatalExitCode.
func (l Logger) Fatal(domain, action, status, message string, args ...interface{}) {
	l.log(hclog.Error, domain, action, status, message, args...)
	exit(FatalExitCode)
}
