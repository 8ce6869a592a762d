package types_test

import (
	"testing"

	"github.com/facepay-lab/facepay/pkg/domain/types"
)

func TestAccountID(t *testing.T) {
	t.Run("valid address", func(t *testing.T) {
		id := types.AccountID("0x9f93EebD463d4B7c991986a082d974E77b5a02Dc")
		if err := id.Validate(); err != nil {
			t.Errorf("expected valid address, got %v", err)
		}
	})

	t.Run("normalize lowers case", func(t *testing.T) {
		id := types.AccountID("0x9f93EebD463d4B7c991986a082d974E77b5a02Dc")
		if id.Normalize() != "0x9f93eebd463d4b7c991986a082d974e77b5a02dc" {
			t.Errorf("unexpected normalized form: %s", id.Normalize())
		}
	})

	t.Run("empty is invalid", func(t *testing.T) {
		if err := types.AccountID("").Validate(); err == nil {
			t.Error("expected error for empty account ID")
		}
	})

	t.Run("non-hex is invalid", func(t *testing.T) {
		if err := types.AccountID("not-an-address").Validate(); err == nil {
			t.Error("expected error for malformed account ID")
		}
	})
}

func TestProvenance(t *testing.T) {
	for _, p := range types.AllProvenances() {
		if !p.IsValid() {
			t.Errorf("provenance %s should be valid", p)
		}
	}

	if types.Provenance("unknown").IsValid() {
		t.Error("unknown provenance should be invalid")
	}

	if !types.ProvenanceHashFallback.IsFallback() {
		t.Error("hash-fallback should report IsFallback")
	}
	if types.ProvenanceNeural.IsFallback() {
		t.Error("neural should not report IsFallback")
	}

	if _, err := types.ParseProvenance("neural"); err != nil {
		t.Errorf("expected neural to parse, got %v", err)
	}
	if _, err := types.ParseProvenance("bogus"); err == nil {
		t.Error("expected parse error for bogus provenance")
	}
}

func TestPaymentStage(t *testing.T) {
	for _, s := range types.AllPaymentStages() {
		if !s.IsValid() {
			t.Errorf("stage %s should be valid", s)
		}
	}

	if !types.StageConfirmed.IsTerminal() {
		t.Error("confirmed should be terminal")
	}
	if !types.StageFailed.IsTerminal() {
		t.Error("failed should be terminal")
	}
	if types.StageSubmitted.IsTerminal() {
		t.Error("submitted should not be terminal")
	}

	if _, err := types.ParsePaymentStage("signed"); err != nil {
		t.Errorf("expected signed to parse, got %v", err)
	}
	if _, err := types.ParsePaymentStage("done"); err == nil {
		t.Error("expected parse error for unknown stage")
	}
}

func TestMetric(t *testing.T) {
	for _, m := range types.AllMetrics() {
		if !m.IsValid() {
			t.Errorf("metric %s should be valid", m)
		}
	}
	if types.Metric("manhattan").IsValid() {
		t.Error("manhattan should be invalid")
	}
}
