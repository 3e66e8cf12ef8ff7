package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/tagpack/pkg/cli/config"
)

func TestLogger_Configure(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{
			name:    "Valid level: debug",
			level:   "debug",
			wantErr: false,
		},
		{
			name:    "Valid level: DEBUG (case insensitive)",
			level:   "DEBUG",
			wantErr: false,
		},
		{
			name:    "Valid level: info",
			level:   "info",
			wantErr: false,
		},
		{
			name:    "Valid level: Warn",
			level:   "Warn",
			wantErr: false,
		},
		{
			name:    "Valid level: ERROR",
			level:   "ERROR",
			wantErr: false,
		},
		{
			name:    "Invalid level: empty string",
			level:   "",
			wantErr: true,
		},
		{
			name:    "Invalid level: trace",
			level:   "trace",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &config.Logger{
				Level:  tt.level,
				Format: "text",
			}

			result, err := logger.Configure()
			if (err != nil) != tt.wantErr {
				t.Errorf("Configure() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && result == nil {
				t.Error("Configure() returned nil logger for valid input")
			}
		})
	}
}

func TestLogger_Configure_Format(t *testing.T) {
	for _, format := range []string{"text", "json", "JSON"} {
		t.Run(format, func(t *testing.T) {
			logger := &config.Logger{
				Level:  "info",
				Format: format,
				Output: filepath.Join(t.TempDir(), "tagpack.log"),
			}

			result, err := logger.Configure()
			gt.NoError(t, err)
			defer func() {
				gt.NoError(t, logger.Close())
			}()

			result.Info("test log message")
		})
	}

	logger := &config.Logger{Level: "info", Format: "xml"}
	_, err := logger.Configure()
	gt.Error(t, err)
}

func TestLogger_RedactsSecrets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagpack.log")
	logger := &config.Logger{
		Level:  "debug",
		Format: "json",
		Output: path,
	}

	result, err := logger.Configure()
	gt.NoError(t, err)

	hook := config.GitHub{WebhookSecret: "s3cr3t-value"}
	result.Info("configured", "github", hook)
	gt.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	gt.NoError(t, err)
	gt.String(t, string(data)).Contains("configured")
	gt.String(t, string(data)).NotContains("s3cr3t-value")
}

func TestLogger_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tagpack.log")
	gt.NoError(t, os.WriteFile(path, []byte("existing line\n"), 0644))

	logger := &config.Logger{Level: "info", Format: "json", Output: path}
	result, err := logger.Configure()
	gt.NoError(t, err)
	result.Info("appended")
	gt.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	gt.NoError(t, err)
	gt.String(t, string(data)).Contains("existing line")
	gt.String(t, string(data)).Contains("appended")
}

func TestLogger_Flags(t *testing.T) {
	logger := &config.Logger{}
	flags := logger.Flags()

	if len(flags) != 3 {
		t.Errorf("Flags() returned %d flags, want 3", len(flags))
	}

	flagNames := make(map[string]bool)
	for _, flag := range flags {
		if f, ok := flag.(interface{ Names() []string }); ok {
			if names := f.Names(); len(names) > 0 {
				flagNames[names[0]] = true
			}
		}
	}

	for _, name := range []string{"log-level", "log-format", "log-file"} {
		if !flagNames[name] {
			t.Errorf("Missing %s flag", name)
		}
	}
}
