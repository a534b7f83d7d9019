package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/worklane/workforce-backend-go/internal/domain/notification"
	"github.com/worklane/workforce-backend-go/internal/pkg/sse"
)

// Config tunes the background delivery workers.
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
	WorkerCount   int
	QueueSize     int
}

func DefaultConfig() Config {
	return Config{
		BatchSize:     100,
		FlushInterval: 5 * time.Second,
		WorkerCount:   2,
		QueueSize:     1000,
	}
}

// ServiceImpl delivers notifications asynchronously. Writers enqueue onto a
// channel and background workers batch-insert, then fan out over SSE.
type ServiceImpl struct {
	repo  notification.Repository
	hub   *sse.Hub
	cfg   Config
	queue chan *notification.Notification

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopCh   chan struct{}
}

func NewNotificationService(repo notification.Repository, hub *sse.Hub, cfg Config) notification.Service {
	if cfg.BatchSize <= 0 {
		cfg = DefaultConfig()
	}

	s := &ServiceImpl{
		repo:   repo,
		hub:    hub,
		cfg:    cfg,
		queue:  make(chan *notification.Notification, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	return s
}

func buildNotification(req notification.CreateNotificationRequest) *notification.Notification {
	return &notification.Notification{
		ID:             uuid.New().String(),
		OrganizationID: req.OrganizationID,
		RecipientID:    req.RecipientID,
		SenderID:       req.SenderID,
		Type:           req.Type,
		Title:          req.Title,
		Message:        req.Message,
		Data:           req.Data,
		CreatedAt:      time.Now().UTC(),
	}
}

// QueueNotification implements notification.Service.
func (s *ServiceImpl) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	return s.enqueue(ctx, buildNotification(req))
}

// QueueBulkNotification implements notification.Service.
func (s *ServiceImpl) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	for _, req := range reqs {
		if err := s.enqueue(ctx, buildNotification(req)); err != nil {
			return err
		}
	}
	return nil
}

// enqueue hands the notification to the workers. A full queue falls back to
// a synchronous insert so nothing is silently dropped.
func (s *ServiceImpl) enqueue(ctx context.Context, n *notification.Notification) error {
	select {
	case s.queue <- n:
		return nil
	default:
		slog.Warn("notification queue full, inserting directly", "recipient_id", n.RecipientID)
		return s.directInsert(ctx, n)
	}
}

func (s *ServiceImpl) directInsert(ctx context.Context, n *notification.Notification) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.publish(n)
	return nil
}

func (s *ServiceImpl) worker(id int) {
	defer s.wg.Done()

	batch := make([]*notification.Notification, 0, s.cfg.BatchSize)
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.repo.CreateBatch(ctx, batch); err != nil {
			slog.Error("failed to flush notification batch", "worker", id, "size", len(batch), "error", err)
		} else {
			for _, n := range batch {
				s.publish(n)
			}
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case n := <-s.queue:
			batch = append(batch, n)
			if len(batch) >= s.cfg.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain what is already queued before exiting.
			for {
				select {
				case n := <-s.queue:
					batch = append(batch, n)
					if len(batch) >= s.cfg.BatchSize {
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

func (s *ServiceImpl) publish(n *notification.Notification) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(n.RecipientID, sse.Event{
		UserID: n.RecipientID,
		Event:  "notification",
		Data:   mapToResponse(n),
	})
}

func mapToResponse(n *notification.Notification) notification.NotificationResponse {
	return notification.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// GetNotifications implements notification.Service.
func (s *ServiceImpl) GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	items, total, err := s.repo.GetByUserID(ctx, userID, page, pageSize, unreadOnly)
	if err != nil {
		return nil, err
	}

	unread, err := s.repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]notification.NotificationResponse, 0, len(items))
	for _, n := range items {
		responses = append(responses, mapToResponse(n))
	}

	return &notification.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unread,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

// GetUnreadCount implements notification.Service.
func (s *ServiceImpl) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// MarkAsRead implements notification.Service.
func (s *ServiceImpl) MarkAsRead(ctx context.Context, userID string, req notification.MarkAsReadRequest) error {
	if len(req.NotificationIDs) == 0 {
		return nil
	}
	return s.repo.MarkAsRead(ctx, req.NotificationIDs, userID)
}

// MarkAllAsRead implements notification.Service.
func (s *ServiceImpl) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// Delete implements notification.Service.
func (s *ServiceImpl) Delete(ctx context.Context, userID string, notificationID string) error {
	return s.repo.Delete(ctx, notificationID, userID)
}

// Subscribe implements notification.Service. The returned channel closes
// when the cleanup function runs.
func (s *ServiceImpl) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	hubCh, hubCleanup := s.hub.Subscribe(userID)
	out := make(chan notification.SSEEvent, 10)

	done := make(chan struct{})
	go func() {
		defer close(out)
		for {
			select {
			case ev, ok := <-hubCh:
				if !ok {
					return
				}
				resp, isResp := ev.Data.(notification.NotificationResponse)
				if !isResp {
					continue
				}
				select {
				case out <- notification.SSEEvent{Event: ev.Event, Data: resp}:
				default:
				}
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	cleanup := func() {
		close(done)
		hubCleanup()
	}
	return out, cleanup
}

// Stop flushes pending notifications and stops the workers.
func (s *ServiceImpl) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
	})
}
