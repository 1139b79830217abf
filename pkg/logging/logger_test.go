package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/folio-social/folio/pkg/config"
)

func scalyrTestLogger(buf *bytes.Buffer) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:       "timestamp",
		LevelKey:      "level",
		MessageKey:    "message",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		EncodeTime:    zapcore.ISO8601TimeEncoder,
		EncodeLevel:   zapcore.LowercaseLevelEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
	core := zapcore.NewCore(NewScalyrEncoder(encoderConfig), zapcore.AddSync(buf), zapcore.InfoLevel)
	return zap.New(core)
}

func TestScalyrEncoder(t *testing.T) {
	cfg := &config.LoggingConfig{
		Level:        "INFO",
		Format:       "json",
		ScalyrFormat: true,
	}

	oldLogger := Logger
	defer func() { Logger = oldLogger }()

	if err := InitLogger(cfg); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	var buf bytes.Buffer
	logger := scalyrTestLogger(&buf)

	logger.Info("test message",
		zap.String("key", "value"),
		zap.Int64("account_id", 7),
		zap.Duration("latency", 1500*time.Millisecond))

	var logObj map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logObj); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if logObj["message"] != "test message" {
		t.Errorf("Expected message 'test message', got: %v", logObj["message"])
	}
	if logObj["key"] != "value" {
		t.Errorf("Expected field 'key'='value', got: %v", logObj["key"])
	}
	if logObj["account_id"] != float64(7) {
		t.Errorf("Expected field 'account_id'=7, got: %v", logObj["account_id"])
	}
	if logObj["latency"] != "1.5s" {
		t.Errorf("Expected field 'latency'='1.5s', got: %v", logObj["latency"])
	}
	if _, ok := logObj["timestamp"]; !ok {
		t.Error("Expected 'timestamp' field in log output")
	}
}

func TestScalyrEncoderWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := scalyrTestLogger(&buf).With(zap.String("component", "accounts"), zap.Bool("memory", true))

	logger.Info("registered")

	var logObj map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &logObj); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if logObj["component"] != "accounts" {
		t.Errorf("Expected context field 'component'='accounts', got: %v", logObj["component"])
	}
	if logObj["memory"] != true {
		t.Errorf("Expected context field 'memory'=true, got: %v", logObj["memory"])
	}
}

func TestFromContext(t *testing.T) {
	base := zap.NewNop()

	if got := FromContext(context.Background(), base); got != base {
		t.Error("FromContext without a span should return the base logger")
	}

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1},
		SpanID:  trace.SpanID{2},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	if got := FromContext(ctx, base); got == base {
		t.Error("FromContext with a span should return a derived logger")
	}
}
