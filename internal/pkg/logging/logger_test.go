//go:build unit

package logging

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompactFormatter_Format(t *testing.T) {
	entryAt := time.Date(2024, 3, 1, 14, 5, 9, 0, time.UTC)

	tests := []struct {
		name      string
		formatter CompactFormatter
		data      logrus.Fields
		message   string
		expected  string
	}{
		{
			name:     "MessageOnly",
			message:  "Reconciliation finished",
			expected: "[INFO] Reconciliation finished\n",
		},
		{
			name:      "WithTime",
			formatter: CompactFormatter{ShowTime: true},
			message:   "Observed host network state",
			expected:  "[14:05:09][INFO] Observed host network state\n",
		},
		{
			name:     "ComponentAndInterface",
			data:     logrus.Fields{"component": "netlink", "interface": "eth0"},
			message:  "Changed MTU",
			expected: "[INFO][netlink][eth0] Changed MTU\n",
		},
		{
			name:     "SortedFields",
			data:     logrus.Fields{"component": "reconcile", "phase": "reported", "changed": true},
			message:  "Reconciliation finished",
			expected: "[INFO][reconcile] Reconciliation finished (changed=true, phase=reported)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &logrus.Entry{
				Data:    tt.data,
				Time:    entryAt,
				Level:   logrus.InfoLevel,
				Message: tt.message,
			}
			if entry.Data == nil {
				entry.Data = logrus.Fields{}
			}

			out, err := tt.formatter.Format(entry)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(out))
		})
	}
}

func TestInitLogger(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(&bytes.Buffer{}) })

	t.Run("LevelAndFormat", func(t *testing.T) {
		InitLogger(LogConfig{Level: "debug", Format: "json"})
		assert.Equal(t, logrus.DebugLevel, Logger.GetLevel())
		assert.IsType(t, &logrus.JSONFormatter{}, Logger.Formatter)
	})

	t.Run("InvalidLevelDefaultsToInfo", func(t *testing.T) {
		InitLogger(LogConfig{Level: "verbose", Format: "simple"})
		assert.Equal(t, logrus.InfoLevel, Logger.GetLevel())
		assert.Equal(t, &CompactFormatter{ShowTime: false}, Logger.Formatter)
	})

	t.Run("InvalidFormatDefaultsToText", func(t *testing.T) {
		InitLogger(LogConfig{Level: "info", Format: "xml"})
		assert.IsType(t, &logrus.TextFormatter{}, Logger.Formatter)
	})

	t.Run("HelpersWriteToOutput", func(t *testing.T) {
		InitLogger(LogConfig{Level: "info", Format: "simple"})
		buf.Reset()

		WithComponentAndInterface("netlink", "eth0").Info("Brought interface up")
		WithError(errors.New("boom")).Warn("Failed")
		WithOperation("reconcile", "l3_interface").WithField("changed", false).Info("Reconciliation finished")

		assert.Contains(t, buf.String(), "[INFO][netlink][eth0] Brought interface up\n")
		assert.Contains(t, buf.String(), "[WARNING] Failed (error=boom)\n")
		assert.Contains(t, buf.String(), "[INFO][reconcile] Reconciliation finished (changed=false, operation=l3_interface)\n")
	})
}
