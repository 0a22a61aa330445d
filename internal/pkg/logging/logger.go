// Package logging configures the process-wide logrus logger.
// Log lines always go to stderr; stdout is reserved for the result document of a command.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05"

var Logger *logrus.Logger

// LogConfig represents logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, text, simple, or compact
}

var output io.Writer = os.Stderr

// bracketFields are rendered as [value] prefixes instead of key=value pairs, in this order.
var bracketFields = []string{"component", "interface"}

// CompactFormatter renders "[LEVEL][component][interface] message (k=v, ...)".
type CompactFormatter struct {
	ShowTime bool
}

// Format renders a single log entry
func (f *CompactFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := entry.Buffer
	if b == nil {
		b = &bytes.Buffer{}
	}

	if f.ShowTime {
		fmt.Fprintf(b, "[%s]", entry.Time.Format("15:04:05"))
	}
	fmt.Fprintf(b, "[%s]", strings.ToUpper(entry.Level.String()))

	for _, key := range bracketFields {
		if v, ok := entry.Data[key]; ok {
			fmt.Fprintf(b, "[%v]", v)
		}
	}

	b.WriteByte(' ')
	b.WriteString(entry.Message)

	if pairs := fieldPairs(entry.Data); len(pairs) > 0 {
		fmt.Fprintf(b, " (%s)", strings.Join(pairs, ", "))
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// fieldPairs returns the remaining fields as sorted key=value strings.
func fieldPairs(data logrus.Fields) []string {
	pairs := make([]string, 0, len(data))
	for key, value := range data {
		if isBracketField(key) {
			continue
		}
		pairs = append(pairs, fmt.Sprintf("%s=%v", key, value))
	}
	sort.Strings(pairs)
	return pairs
}

func isBracketField(key string) bool {
	for _, k := range bracketFields {
		if k == key {
			return true
		}
	}
	return false
}

var formatters = map[string]func() logrus.Formatter{
	"json":    func() logrus.Formatter { return &logrus.JSONFormatter{TimestampFormat: timestampFormat} },
	"text":    newTextFormatter,
	"":        newTextFormatter,
	"simple":  func() logrus.Formatter { return &CompactFormatter{ShowTime: false} },
	"compact": func() logrus.Formatter { return &CompactFormatter{ShowTime: true} },
}

func newTextFormatter() logrus.Formatter {
	return &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: timestampFormat}
}

// InitLogger initializes the global logger with the provided configuration.
// Unknown levels fall back to info and unknown formats to text, both with a warning.
func InitLogger(config LogConfig) {
	Logger = logrus.New()
	Logger.SetOutput(output)

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	newFormatter, ok := formatters[strings.ToLower(config.Format)]
	if !ok {
		newFormatter = newTextFormatter
	}
	Logger.SetFormatter(newFormatter())

	if err != nil {
		Logger.Warnf("Invalid log level '%s', defaulting to 'info'", config.Level)
	}
	if !ok {
		Logger.Warnf("Invalid log format '%s', defaulting to 'text'", config.Format)
	}
	Logger.Debugf("Logger initialized with level: %s, format: %s", level.String(), config.Format)
}

// SetOutput redirects log output, e.g. to silence logs in tests.
func SetOutput(w io.Writer) {
	output = w
	if Logger != nil {
		Logger.SetOutput(w)
	}
}

// GetLogger returns the global logger, initializing it with the defaults on first use.
func GetLogger() *logrus.Logger {
	if Logger == nil {
		InitLogger(LogConfig{Level: "info", Format: "simple"})
	}
	return Logger
}

func WithComponent(component string) *logrus.Entry {
	return GetLogger().WithField("component", component)
}

func WithInterface(iface string) *logrus.Entry {
	return GetLogger().WithField("interface", iface)
}

func WithComponentAndInterface(component, iface string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"component": component,
		"interface": iface,
	})
}

// WithOperation tags entries of one reconciliation operation.
func WithOperation(component, operation string) *logrus.Entry {
	return GetLogger().WithFields(logrus.Fields{
		"component": component,
		"operation": operation,
	})
}

func WithError(err error) *logrus.Entry {
	return GetLogger().WithError(err)
}
