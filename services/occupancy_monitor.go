package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/yeremiapane/demeter/metrics"
	"github.com/yeremiapane/demeter/models"
	"github.com/yeremiapane/demeter/utils"
	"gorm.io/gorm"
)

// OccupancySnapshot is the floor overview pushed to kitchen and front-of-house screens.
type OccupancySnapshot struct {
	Desks     int64 `json:"desks"`
	Occupied  int64 `json:"occupied"`
	Pending   int64 `json:"pending"`
	InKitchen int64 `json:"in_kitchen"`
	TakenAt   int64 `json:"taken_at"`
}

// OccupancyMonitor periodically publishes an OccupancySnapshot and refreshes the gauges.
type OccupancyMonitor struct {
	DB       *gorm.DB
	Notifier Notifier
	Clock    clockwork.Clock
	Interval time.Duration

	stop chan struct{}
	wg   sync.WaitGroup
}

func NewOccupancyMonitor(db *gorm.DB, notifier Notifier, clock clockwork.Clock) *OccupancyMonitor {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &OccupancyMonitor{
		DB:       db,
		Notifier: orNop(notifier),
		Clock:    clock,
		Interval: 5 * time.Second,
		stop:     make(chan struct{}),
	}
}

func (om *OccupancyMonitor) Snapshot(ctx context.Context) (OccupancySnapshot, error) {
	db := om.DB.WithContext(ctx)
	snap := OccupancySnapshot{TakenAt: om.Clock.Now().Unix()}

	if err := db.Model(&models.Desk{}).Count(&snap.Desks).Error; err != nil {
		return snap, fmt.Errorf("count desks: %w", err)
	}
	if err := db.Model(&models.Session{}).Where("state = ?", models.SessionOpen).Count(&snap.Occupied).Error; err != nil {
		return snap, fmt.Errorf("count open sessions: %w", err)
	}
	if err := db.Model(&models.Request{}).Where("state = ?", models.RequestPending).Count(&snap.Pending).Error; err != nil {
		return snap, fmt.Errorf("count pending requests: %w", err)
	}
	if err := db.Model(&models.Request{}).Where("state = ?", models.RequestInKitchen).Count(&snap.InKitchen).Error; err != nil {
		return snap, fmt.Errorf("count in-kitchen requests: %w", err)
	}
	return snap, nil
}

func (om *OccupancyMonitor) Start() {
	om.wg.Add(1)
	go func() {
		defer om.wg.Done()
		ticker := om.Clock.NewTicker(om.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.Chan():
				om.publish()
			case <-om.stop:
				return
			}
		}
	}()
}

func (om *OccupancyMonitor) Stop() {
	close(om.stop)
	om.wg.Wait()
}

func (om *OccupancyMonitor) publish() {
	ctx, cancel := context.WithTimeout(context.Background(), om.Interval)
	defer cancel()

	snap, err := om.Snapshot(ctx)
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("occupancy snapshot")
		return
	}

	metrics.OccupiedDesks.Set(float64(snap.Occupied))
	metrics.QueuedRequests.WithLabelValues(models.RequestPending.String()).Set(float64(snap.Pending))
	metrics.QueuedRequests.WithLabelValues(models.RequestInKitchen.String()).Set(float64(snap.InKitchen))
	om.Notifier.Notify(EventOccupancy, snap)
}
