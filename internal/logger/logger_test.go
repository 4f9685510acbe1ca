package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newBufferedLogger(env string, buf *bytes.Buffer) *zap.Logger {
	config := buildConfig(env)
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(config.EncoderConfig),
		zapcore.AddSync(buf),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

// Feature: sale-composition, Property 6: Production logs are structured
func TestProperty_ProductionLogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every production entry is JSON with level, timestamp and message", prop.ForAll(
		func(message string, level string) bool {
			var buf bytes.Buffer
			logger := newBufferedLogger("production", &buf)

			switch level {
			case "debug":
				logger.Debug(message)
			case "warn":
				logger.Warn(message)
			case "error":
				logger.Error(message)
			default:
				logger.Info(message)
			}

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				return false
			}
			for _, key := range []string{"level", "timestamp", "message"} {
				if _, ok := entry[key]; !ok {
					return false
				}
			}
			return entry["message"] == message
		},
		gen.AnyString(),
		gen.OneConstOf("debug", "info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestComponentTagsEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(newBufferedLogger("production", &buf), "composer")

	logger.Info("Line added", zap.Int64("product_id", 3))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if entry["component"] != "composer" {
		t.Errorf("expected component field, got %v", entry["component"])
	}
	if entry["product_id"] != float64(3) {
		t.Errorf("expected product_id field, got %v", entry["product_id"])
	}
}

func TestComponentToleratesNilBase(t *testing.T) {
	if Component(nil, "server") == nil {
		t.Fatal("Logger should not be nil")
	}
}

func TestNewBuildsBothEnvironments(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		logger, err := New(env)
		if err != nil {
			t.Fatalf("Failed to create %s logger: %v", env, err)
		}
		_ = logger.Sync()
	}
}
