package chathub

import (
	"context"
	"time"

	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/logger"
	"complaintdesk/backend/internal/models"
)

const (
	broadcastBuffer = 256
	snapshotTimeout = 5 * time.Second
)

// ComplaintLister supplies the snapshot sent to new subscribers.
type ComplaintLister interface {
	ListComplaints(ctx context.Context, f models.ComplaintFilter) ([]models.Complaint, error)
}

// ManagerService fans dashboard events out to every connected client.
type ManagerService struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	BroadcastCh  chan models.Event

	Lister ComplaintLister

	snapshotCh chan snapshot
	done       chan struct{}
}

// snapshot is a loaded complaints_list waiting to be handed to its client.
type snapshot struct {
	clientID string
	ev       models.Event
}

func NewManagerService(lister ComplaintLister) *ManagerService {
	return &ManagerService{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		BroadcastCh:  make(chan models.Event, broadcastBuffer),
		Lister:       lister,
		snapshotCh:   make(chan snapshot),
		done:         make(chan struct{}),
	}
}

// Register adds c to the hub. It returns false once the hub has stopped.
func (m *ManagerService) Register(c Client) bool {
	select {
	case m.RegisterCh <- c:
		return true
	case <-m.done:
		return false
	}
}

// Unregister removes c from the hub. It is a no-op once the hub has stopped.
func (m *ManagerService) Unregister(c Client) {
	select {
	case m.UnregisterCh <- c:
	case <-m.done:
	}
}

// Run is the hub loop. It owns Clients and returns when ctx is cancelled.
func (m *ManagerService) Run(ctx context.Context) {
	log := logger.Component("hub")
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			for id, c := range m.Clients {
				c.Close()
				delete(m.Clients, id)
			}
			return

		case c := <-m.RegisterCh:
			m.Clients[c.GetClientID()] = c
			log.WithField("client_id", c.GetClientID()).Debug("Dashboard client registered")
			if m.Lister != nil {
				go m.loadSnapshot(ctx, c.GetClientID())
			}

		case s := <-m.snapshotCh:
			c, ok := m.Clients[s.clientID]
			if !ok {
				continue
			}
			select {
			case c.GetSendChannel() <- s.ev:
			default:
				m.remove(s.clientID)
			}

		case c := <-m.UnregisterCh:
			m.remove(c.GetClientID())

		case ev := <-m.BroadcastCh:
			for id, c := range m.Clients {
				select {
				case c.GetSendChannel() <- ev:
				default:
					log.WithField("client_id", id).Warn("Dashboard client too slow, dropping")
					m.remove(id)
				}
			}
		}
	}
}

func (m *ManagerService) remove(id string) {
	if c, ok := m.Clients[id]; ok {
		c.Close()
		delete(m.Clients, id)
	}
}

// loadSnapshot queries the newest complaints off the hub loop and hands the
// result back to Run, so broadcasts keep flowing while the query runs.
func (m *ManagerService) loadSnapshot(ctx context.Context, clientID string) {
	qctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	rows, err := m.Lister.ListComplaints(qctx, models.ComplaintFilter{Limit: config.SnapshotLimit})
	if err != nil {
		logger.Component("hub").WithError(err).WithField("client_id", clientID).Error("Failed to load complaints snapshot")
		return
	}
	if rows == nil {
		rows = []models.Complaint{}
	}
	ev, err := models.NewEvent(models.EventComplaintsList, rows)
	if err != nil {
		return
	}
	select {
	case m.snapshotCh <- snapshot{clientID: clientID, ev: ev}:
	case <-m.done:
	}
}

// Broadcast queues ev for delivery. It never blocks; events are dropped
// when the queue is full.
func (m *ManagerService) Broadcast(ev models.Event) {
	select {
	case m.BroadcastCh <- ev:
	default:
		logger.Component("hub").WithField("event", ev.Name).Warn("Broadcast queue full, event dropped")
	}
}

// Publish implements Publisher for a single-process deployment.
func (m *ManagerService) Publish(_ context.Context, name string, payload any) {
	ev, err := models.NewEvent(name, payload)
	if err != nil {
		logger.Component("hub").WithError(err).WithField("event", name).Error("Failed to encode event")
		return
	}
	m.Broadcast(ev)
}
