package logger

import (
	"github.com/maxaizer/jobmarket/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"testing"
)

func entry(level log.Level, fields log.Fields) *log.Entry {
	e := log.WithFields(fields)
	e.Level = level
	return e
}

func count(errorType string) float64 {
	return testutil.ToFloat64(metrics.ErrorsCounter.WithLabelValues(errorType))
}

func Test_ErrorCounterHook_CountsErrorsByType(t *testing.T) {
	hook := &errorCounterHook{}
	cacheBefore, untypedBefore := count(ErrorTypeCache), count(untypedError)

	assert.NoError(t, hook.Fire(entry(log.ErrorLevel, log.Fields{ErrorTypeField: ErrorTypeCache})))
	assert.NoError(t, hook.Fire(entry(log.ErrorLevel, log.Fields{})))
	assert.NoError(t, hook.Fire(entry(log.ErrorLevel, log.Fields{ErrorTypeField: "made-up"})))

	assert.Equal(t, cacheBefore+1, count(ErrorTypeCache))
	assert.Equal(t, untypedBefore+2, count(untypedError))
}

func Test_ErrorCounterHook_Warnings_CountOnlyWithKnownType(t *testing.T) {
	hook := &errorCounterHook{}
	datasetBefore, untypedBefore := count(ErrorTypeDataset), count(untypedError)

	assert.NoError(t, hook.Fire(entry(log.WarnLevel, log.Fields{ErrorTypeField: ErrorTypeDataset})))
	assert.NoError(t, hook.Fire(entry(log.WarnLevel, log.Fields{})))

	assert.Equal(t, datasetBefore+1, count(ErrorTypeDataset))
	assert.Equal(t, untypedBefore, count(untypedError))
}

func Test_ErrorCounterHook_IgnoresInfoLevels(t *testing.T) {
	levels := (&errorCounterHook{}).Levels()

	assert.Contains(t, levels, log.WarnLevel)
	assert.NotContains(t, levels, log.InfoLevel)
}
