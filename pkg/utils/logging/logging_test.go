package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/facepay-lab/facepay/pkg/utils/logging"
)

func TestFromFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	if logging.From(ctx) == nil {
		t.Fatal("From should never return nil")
	}
}

func TestWithCarriesLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := logging.With(context.Background(), logger)

	logging.From(ctx).Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected log output, got %q", buf.String())
	}
}

func TestRedactorMasksPrivateKey(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		ReplaceAttr: logging.Redactor(),
	}))

	const key = "15953296e322c945eaa0c215f8740fcdb1cb18231d19e477efa91ae4310becdf"
	logger.Info("signing", "private_key", key)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if v, ok := record["private_key"].(string); ok && strings.Contains(v, key) {
		t.Error("private key leaked into log output")
	}
	if strings.Contains(buf.String(), key) {
		t.Error("private key material found in raw log output")
	}
}
