package services

import (
	"context"
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/jobmarket/internal/domain/events"
	"github.com/maxaizer/jobmarket/internal/domain/models"
	"github.com/maxaizer/jobmarket/internal/logger"
	log "github.com/sirupsen/logrus"
	"time"
)

const (
	defaultEmergingWindow   = 6
	defaultEmergingTopK     = 10
	defaultEmergingMinTotal = 3
)

type warmable interface {
	MonthlyAnalytics(ctx context.Context, raw models.RawFilter, topSkillsCount int, seriesOverride []string) (models.AnalyticsResult, error)
	TopSkills(ctx context.Context, raw models.RawFilter, k int) ([]models.SkillCount, error)
	EmergingSkills(ctx context.Context, raw models.RawFilter, monthsWindow, topK, minTotalCount int) (models.EmergingSkillTrendPayload, error)
}

// CacheWarmer recomputes the unfiltered dashboard after every dataset change, in the background.
type CacheWarmer struct {
	service   warmable
	topSkills int
}

func NewCacheWarmer(bus EventBus.Bus, service warmable, topSkills int) (*CacheWarmer, error) {
	w := &CacheWarmer{service: service, topSkills: topSkills}

	err := bus.SubscribeAsync(events.DatasetVersionChangedTopic, w.onDatasetVersionChanged, true)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func (w *CacheWarmer) Warm(ctx context.Context) error {
	start := time.Now()
	all := models.RawFilter{}

	if _, err := w.service.MonthlyAnalytics(ctx, all, w.topSkills, nil); err != nil {
		return err
	}
	if _, err := w.service.TopSkills(ctx, all, w.topSkills); err != nil {
		return err
	}
	if _, err := w.service.EmergingSkills(ctx, all, defaultEmergingWindow, defaultEmergingTopK, defaultEmergingMinTotal); err != nil {
		return err
	}

	log.Infof("analytics cache warmed in %v", time.Since(start))
	return nil
}

func (w *CacheWarmer) onDatasetVersionChanged(event events.DatasetVersionChanged) {
	if w.topSkills <= 0 {
		return
	}
	if err := w.Warm(context.Background()); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeCache).
			Errorf("failed to warm cache for version %q: %v", event.Current, err)
	}
}
