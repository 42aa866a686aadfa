package logger

import (
	"github.com/maxaizer/jobmarket/internal/metrics"
	log "github.com/sirupsen/logrus"
)

const untypedError = "untyped"

var knownErrorTypes = map[string]struct{}{
	ErrorTypeDb:      {},
	ErrorTypeDataset: {},
	ErrorTypeCache:   {},
}

// errorCounterHook feeds jobmarket_errors_total. Warnings are counted only when they carry a known
// error type, as the degraded-mode ones do (local-only cache, unmigrated store, dropped entries).
type errorCounterHook struct{}

func (h *errorCounterHook) Fire(entry *log.Entry) error {
	errorType, _ := entry.Data[ErrorTypeField].(string)
	if _, known := knownErrorTypes[errorType]; !known {
		if entry.Level == log.WarnLevel {
			return nil
		}
		errorType = untypedError
	}

	metrics.ErrorsCounter.WithLabelValues(errorType).Inc()
	return nil
}

func (h *errorCounterHook) Levels() []log.Level {
	return []log.Level{
		log.WarnLevel,
		log.ErrorLevel,
		log.FatalLevel,
		log.PanicLevel,
	}
}

func addErrorCounterHook() {
	log.AddHook(&errorCounterHook{})
	log.Debug("counting logged errors by type")
}
