package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T, level string, format OutputFormat, fn func()) string {
	t.Helper()
	buf := &bytes.Buffer{}
	SetTestOutput(buf)
	defer UnsetTestOutput()

	InitLogger(level, format)
	fn()

	return buf.String()
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		logFn    func()
		contains []string
		excludes []string
	}{
		{
			name:  "info log",
			level: "info",
			logFn: func() {
				Info("Resolving manifest")
			},
			contains: []string{"Resolving manifest", "level=info"},
		},
		{
			name:  "debug log with debug level",
			level: "debug",
			logFn: func() {
				Debug("fetching asset index")
			},
			contains: []string{"fetching asset index", "level=debug"},
		},
		{
			name:  "debug log with info level",
			level: "info",
			logFn: func() {
				Debug("fetching asset index")
			},
			excludes: []string{"fetching asset index"},
		},
		{
			name:  "error log",
			level: "error",
			logFn: func() {
				Error("library download failed")
			},
			contains: []string{"library download failed", "level=error"},
		},
		{
			name:  "warn log with fields",
			level: "warn",
			logFn: func() {
				Warn("library not found, skipping", Fields{"library": "org.ow2.asm:asm", "attempts": 5})
			},
			contains: []string{"library not found", "level=warn", "library=org.ow2.asm:asm", "attempts=5"},
		},
		{
			name:  "success log",
			level: "info",
			logFn: func() {
				Success("Instance created")
			},
			contains: []string{"Instance created", "status=success"},
		},
		{
			name:  "formatted info log",
			level: "info",
			logFn: func() {
				Infof("Installing %s", "java_17")
			},
			contains: []string{"Installing java_17"},
		},
		{
			name:  "formatted info with fields",
			level: "info",
			logFn: func() {
				InfofWithFields(Fields{"phase": "assets", "instance": "survival"}, "downloaded %d objects", 3)
			},
			contains: []string{"downloaded 3 objects", "phase=assets", "instance=survival"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureOutput(t, tt.level, FormatText, tt.logFn)
			for _, want := range tt.contains {
				assert.Contains(t, output, want)
			}
			for _, notWant := range tt.excludes {
				assert.NotContains(t, output, notWant)
			}
		})
	}
}

func TestPrettyFormat(t *testing.T) {
	output := captureOutput(t, "info", FormatPretty, func() {
		Info("pretty message", Fields{"instance": "demo"})
	})
	assert.Contains(t, output, "pretty message")
	assert.Contains(t, output, "demo")
}

func TestRestyAdapter(t *testing.T) {
	output := captureOutput(t, "debug", FormatText, func() {
		var l RestyAdapter
		l.Warnf("retrying %s (attempt %d)", "https://piston-meta.example/v2.json", 2)
		l.Debugf("response status %d", 503)
	})
	assert.Contains(t, output, "retrying https://piston-meta.example/v2.json (attempt 2)")
	assert.Contains(t, output, "response status 503")
}

func TestGetLogger_InitializesIfNil(t *testing.T) {
	loggerMu.Lock()
	logger = nil
	loggerMu.Unlock()

	assert.NotPanics(t, func() {
		lg := GetLogger()
		assert.NotNil(t, lg)
	})
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", ParseLevel("DEBUG").String())
	assert.Equal(t, "WARN", ParseLevel("warning").String())
	assert.Equal(t, "INFO", ParseLevel("bogus").String())
}

func TestMergeFields(t *testing.T) {
	tests := []struct {
		name   string
		fields []Fields
		expect map[string]interface{}
	}{
		{
			name:   "single field",
			fields: []Fields{{"phase": "jar"}},
			expect: map[string]interface{}{"phase": "jar"},
		},
		{
			name:   "multiple fields",
			fields: []Fields{{"instance": "survival"}, {"done": 12, "server": true}},
			expect: map[string]interface{}{"instance": "survival", "done": 12, "server": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := mergeFields(tt.fields...)
			result := make(map[string]interface{})
			for i := 0; i < len(attrs); i += 2 {
				result[attrs[i].(string)] = attrs[i+1]
			}
			assert.Equal(t, tt.expect, result)
		})
	}
}
