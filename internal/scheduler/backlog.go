// Package scheduler runs periodic jobs against the complaint store.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"complaintdesk/backend/internal/chathub"
	"complaintdesk/backend/internal/logger"
	"complaintdesk/backend/internal/models"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 30 * time.Second

// BacklogCounter reports pending complaints older than a given age.
type BacklogCounter interface {
	Backlog(ctx context.Context, age time.Duration) (models.BacklogStats, error)
}

// BacklogMonitor periodically tells the dashboards how many complaints have
// been waiting longer than Age.
type BacklogMonitor struct {
	cronEngine *cron.Cron
	counter    BacklogCounter
	publisher  chathub.Publisher
	spec       string
	age        time.Duration
}

func NewBacklogMonitor(counter BacklogCounter, publisher chathub.Publisher, spec string, age time.Duration) *BacklogMonitor {
	return &BacklogMonitor{
		cronEngine: cron.New(cron.WithLocation(time.UTC)),
		counter:    counter,
		publisher:  publisher,
		spec:       spec,
		age:        age,
	}
}

// Start schedules the job. It fails on an invalid cron spec.
func (m *BacklogMonitor) Start() error {
	if _, err := m.cronEngine.AddFunc(m.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		m.RunOnce(ctx)
	}); err != nil {
		return fmt.Errorf("invalid backlog cron spec %q: %w", m.spec, err)
	}
	m.cronEngine.Start()
	logger.Component("scheduler").WithField("spec", m.spec).Info("Backlog monitor started")
	return nil
}

// Stop waits for a running job to finish.
func (m *BacklogMonitor) Stop() {
	<-m.cronEngine.Stop().Done()
}

// RunOnce counts the backlog and publishes it when non-empty.
func (m *BacklogMonitor) RunOnce(ctx context.Context) {
	log := logger.Component("scheduler")
	stats, err := m.counter.Backlog(ctx, m.age)
	if err != nil {
		log.WithError(err).Error("Failed to count pending backlog")
		return
	}
	if stats.Count == 0 {
		return
	}
	log.WithField("count", stats.Count).Warn("Complaints waiting for a reply")
	m.publisher.Publish(ctx, models.EventPendingBacklog, stats)
}
