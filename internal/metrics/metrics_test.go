package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"addressproof/internal/verifier"
)

var _ verifier.Observer = (*Recorder)(nil)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveVerification("valid")
	r.ObserveVerification("valid")
	r.ObserveVerification("name_mismatch")
	r.ObserveMatch("whole_word")
	r.ObserveMatch("fuzzy_word")
	r.ObserveMatch("whole_word")
	r.ObserveOCR("tesseract", 120*time.Millisecond, nil)
	r.ObserveOCR("tesseract", time.Second, errors.New("boom"))

	assert.InDelta(t, 2, testutil.ToFloat64(r.VerificationsTotal.WithLabelValues("valid")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.VerificationsTotal.WithLabelValues("name_mismatch")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(r.MatchStrategyTotal.WithLabelValues("whole_word")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.MatchStrategyTotal.WithLabelValues("fuzzy_word")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.OCRRequestsTotal.WithLabelValues("tesseract", "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.OCRRequestsTotal.WithLabelValues("tesseract", "success")), 0)
	assert.Equal(t, 1, testutil.CollectAndCount(r.OCRDuration))
}

func TestRecorderRegistersNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)
	r.ObserveVerification("valid")
	r.ObserveMatch("compact")
	r.ObserveOCR("vision", time.Millisecond, nil)

	families, err := reg.Gather()
	require.NoError(t, err)

	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.ElementsMatch(t, []string{
		"addressproof_verifications_total",
		"addressproof_ocr_duration_seconds",
		"addressproof_ocr_requests_total",
		"addressproof_match_strategy_total",
	}, names)
}

func TestNewRecorderTwiceOnSameRegistryPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewRecorder(reg)
	assert.Panics(t, func() { NewRecorder(reg) })
}
