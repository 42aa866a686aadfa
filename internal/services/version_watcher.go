package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmarket/internal/domain/events"
	"github.com/maxaizer/jobmarket/internal/logger"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"sync"
)

type datasetSyncer interface {
	Import(ctx context.Context) (int, error)
}

// VersionWatcher polls the dataset version on a cron schedule and publishes
// events.DatasetVersionChanged whenever it differs from the last one seen.
type VersionWatcher struct {
	source versionSource
	syncer datasetSyncer
	bus    EventBus.Bus
	cron   *cron.Cron

	mu   sync.Mutex
	last string
}

type WatcherOption func(w *VersionWatcher)

// WithSync runs syncer before every check, so a store fed from the dataset file catches up with it
// before its version is read.
func WithSync(syncer datasetSyncer) WatcherOption {
	return func(w *VersionWatcher) {
		w.syncer = syncer
	}
}

func NewVersionWatcher(bus EventBus.Bus, source versionSource, schedule string,
	opts ...WatcherOption) (*VersionWatcher, error) {

	if schedule == "" {
		return nil, errors.New("version check schedule must not be empty")
	}

	w := &VersionWatcher{
		source: source,
		bus:    bus,
		cron:   cron.New(),
	}
	for _, opt := range opts {
		opt(w)
	}

	_, err := w.cron.AddFunc(schedule, w.check)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid version check schedule %q", schedule)
	}

	return w, nil
}

func (w *VersionWatcher) Start() {
	w.cron.Start()
	log.Info("dataset version watcher started")
}

func (w *VersionWatcher) Stop() {
	<-w.cron.Stop().Done()
}

// Check compares the current version with the last seen one. The first observed version counts as
// a change so that subscribers can prepare for it.
func (w *VersionWatcher) Check(ctx context.Context) (bool, error) {
	if w.syncer != nil {
		if _, err := w.syncer.Import(ctx); err != nil {
			return false, errors.Wrap(err, "can't sync dataset")
		}
	}

	version, err := w.source.Version(ctx)
	if err != nil {
		return false, err
	}

	w.mu.Lock()
	previous := w.last
	w.last = version
	w.mu.Unlock()

	if previous == version {
		return false, nil
	}

	log.Infof("dataset version is now %q (was %q)", version, previous)
	w.bus.Publish(events.DatasetVersionChangedTopic, events.DatasetVersionChanged{Previous: previous, Current: version})
	return true, nil
}

func (w *VersionWatcher) check() {
	if _, err := w.Check(context.Background()); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to check dataset version: %v", err)
	}
}
