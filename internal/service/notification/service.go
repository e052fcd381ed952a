package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/sse"
	"github.com/google/uuid"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 20
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 1
	QueueSize     int           // default: 500
}

// Service pushes notifications to realtime subscribers immediately and
// forwards manager notifications to the sink from background workers.
type Service struct {
	hub    *sse.Hub
	sink   notification.Sink
	config Config

	queue    chan string
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewNotificationService starts the sink workers. sink may be nil.
func NewNotificationService(hub *sse.Hub, sink notification.Sink, cfg Config) *Service {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 20
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 1
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 500
	}

	s := &Service{
		hub:    hub,
		sink:   sink,
		config: cfg,
		queue:  make(chan string, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	if sink != nil {
		for i := 0; i < cfg.WorkerCount; i++ {
			s.wg.Add(1)
			go s.worker(i)
		}
		slog.Info("Notification sink workers started", "workers", cfg.WorkerCount, "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval)
	}

	return s
}

// worker sends queued messages to the sink, several per call.
func (s *Service) worker(id int) {
	defer s.wg.Done()

	batch := make([]string, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.sink.Send(ctx, strings.Join(batch, "\n\n")); err != nil {
			slog.Error("Failed to forward notifications", "worker", id, "count", len(batch), "error", err)
		} else {
			slog.Debug("Forwarded notifications", "worker", id, "count", len(batch))
		}
		batch = batch[:0]
	}

	for {
		select {
		case text := <-s.queue:
			batch = append(batch, text)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain what is already queued before exiting.
			for {
				select {
				case text := <-s.queue:
					batch = append(batch, text)
					if len(batch) >= s.config.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// NotifyEmployee implements notification.Notifier.
func (s *Service) NotifyEmployee(ctx context.Context, employeeID string, req notification.CreateNotificationRequest) {
	n := newNotification(req)
	s.hub.Publish(employeeID, sse.Event{
		Event: string(n.Type),
		Data:  toResponse(n),
	})
}

// NotifyManagers implements notification.Notifier.
func (s *Service) NotifyManagers(ctx context.Context, req notification.CreateNotificationRequest) {
	n := newNotification(req)
	s.hub.PublishToRoles(sse.Event{
		Event: string(n.Type),
		Data:  toResponse(n),
	}, string(employee.RoleAdmin), string(employee.RoleBoss))

	if s.sink == nil {
		return
	}

	select {
	case <-s.stopCh:
		return
	default:
	}

	select {
	case s.queue <- formatText(n):
	default:
		slog.Warn("Notification queue full, dropping message", "type", n.Type)
	}
}

// Broadcast sends an event to every connected client regardless of role.
func (s *Service) Broadcast(event string, data interface{}) {
	s.hub.Broadcast(sse.Event{Event: event, Data: data})
}

// Stop flushes queued messages and waits for the workers to exit.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("Notification service stopped")
	})
}

func newNotification(req notification.CreateNotificationRequest) notification.Notification {
	return notification.Notification{
		ID:        uuid.New().String(),
		Type:      req.Type,
		Title:     req.Title,
		Message:   req.Message,
		Data:      req.Data,
		CreatedAt: time.Now(),
	}
}

func toResponse(n notification.Notification) notification.NotificationResponse {
	return notification.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

func formatText(n notification.Notification) string {
	return fmt.Sprintf("%s\n%s", n.Title, n.Message)
}
