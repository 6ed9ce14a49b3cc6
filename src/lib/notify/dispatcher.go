package notify

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/wasnasmay/altess-final-sub004/src/lib"
	"github.com/wasnasmay/altess-final-sub004/src/models"
	"github.com/wasnasmay/altess-final-sub004/src/models/scopes"
	"github.com/wasnasmay/altess-final-sub004/src/types"
	"gorm.io/gorm"
)

var (
	errQueueFull   = errors.New("notification queue full")
	errQueueClosed = errors.New("notification queue closed")
)

var notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ticket_notifications_total",
	Help: "Ticket email deliveries by outcome.",
}, []string{"outcome"})

const retryBatchSize = 50

// Dispatcher sends ticket emails from a fixed pool of workers. Emails that
// cannot be queued or delivered are stored as NotificationJob rows and picked
// up again by RetryPending.
type Dispatcher struct {
	db          *gorm.DB
	sender      Sender
	qr          QRResolver
	queue       chan types.TicketNotification
	workers     int
	maxAttempts int
	timeout     time.Duration
	now         func() time.Time

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

type Option func(*Dispatcher)

func WithQRResolver(qr QRResolver) Option {
	return func(d *Dispatcher) { d.qr = qr }
}

func WithWorkers(n int) Option {
	return func(d *Dispatcher) { d.workers = n }
}

func WithQueueSize(n int) Option {
	return func(d *Dispatcher) { d.queue = make(chan types.TicketNotification, n) }
}

func WithMaxAttempts(n int) Option {
	return func(d *Dispatcher) { d.maxAttempts = n }
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

func NewDispatcher(db *gorm.DB, sender Sender, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		db:          db,
		sender:      sender,
		queue:       make(chan types.TicketNotification, 256),
		workers:     4,
		maxAttempts: 5,
		timeout:     30 * time.Second,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for n := range d.queue {
				d.deliver(n)
			}
		}()
	}
	log.Printf("[notify] Started %d workers\n", d.workers)
}

// Stop drains the queue and waits for in-flight deliveries.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
	// Left over when no worker was ever started.
	for n := range d.queue {
		d.persist(n, errQueueClosed)
	}
}

// Notify queues n without blocking the caller.
func (d *Dispatcher) Notify(n types.TicketNotification) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.persist(n, errQueueClosed)
		return
	}
	select {
	case d.queue <- n:
		notificationsTotal.WithLabelValues("queued").Inc()
	default:
		log.Printf("[notify] Queue full, storing ticket email for %s\n", n.PurchaseID)
		d.persist(n, errQueueFull)
	}
}

func (d *Dispatcher) deliver(n types.TicketNotification) {
	if err := d.send(n); err != nil {
		log.Printf("[notify] Ticket email for %s failed: %s\n", n.PurchaseID, err.Error())
		notificationsTotal.WithLabelValues("failed").Inc()
		d.persist(n, err)
		return
	}
	notificationsTotal.WithLabelValues("sent").Inc()
}

func (d *Dispatcher) send(n types.TicketNotification) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if n.QRCodeURL == "" && d.qr != nil {
		url, err := d.qr.Resolve(ctx, n)
		if err != nil {
			log.Printf("[notify] Could not build QR code for %s: %s\n", n.PurchaseID, err.Error())
			url = lib.PublicQRCodeURL(n.PurchaseID)
		}
		n.QRCodeURL = url
	}
	return d.sender.Send(ctx, n)
}

func (d *Dispatcher) persist(n types.TicketNotification, cause error) {
	var attemptErr error
	if !errors.Is(cause, errQueueFull) && !errors.Is(cause, errQueueClosed) {
		attemptErr = cause
	}
	if _, err := models.CreateNotificationJob(d.db, n, attemptErr, d.now().Add(backoff(1))); err != nil {
		notificationsTotal.WithLabelValues("lost").Inc()
		return
	}
	notificationsTotal.WithLabelValues("stored").Inc()
}

// RetryPending sends due NotificationJob rows and returns how many were
// delivered.
func (d *Dispatcher) RetryPending(ctx context.Context) (int, error) {
	var jobs []models.NotificationJob
	if err := d.db.WithContext(ctx).
		Scopes(scopes.WithPendingStatus, scopes.DueBefore(d.now())).
		Order("next_attempt_at").
		Limit(retryBatchSize).
		Find(&jobs).
		Error; err != nil {
		log.Printf("[notify] Could not load pending ticket emails: %s\n", err.Error())
		return 0, err
	}

	sent := 0
	for i := range jobs {
		job := &jobs[i]
		updates := map[string]any{}
		n, err := job.Notification()
		if err == nil {
			err = d.send(n)
		}
		if err == nil {
			updates["status"] = types.NOTIFICATION_SENT
			sent++
			notificationsTotal.WithLabelValues("sent").Inc()
		} else {
			attempts := job.Attempts + 1
			updates["attempts"] = attempts
			updates["last_error"] = err.Error()
			if attempts >= d.maxAttempts {
				updates["status"] = types.NOTIFICATION_FAILED
				log.Printf("[notify] Giving up on ticket email for %s after %d attempts: %s\n", job.PurchaseID, attempts, err.Error())
			} else {
				updates["next_attempt_at"] = d.now().Add(backoff(attempts))
			}
			notificationsTotal.WithLabelValues("failed").Inc()
		}
		if err := d.db.WithContext(ctx).Model(job).Updates(updates).Error; err != nil {
			log.Printf("[notify] Could not update notification job %s: %s\n", job.ID, err.Error())
		}
	}
	if len(jobs) > 0 {
		log.Printf("[notify] Retried %d ticket emails, %d sent\n", len(jobs), sent)
	}
	return sent, nil
}

// ScheduleRetries registers the retry sweep on the shared scheduler.
func (d *Dispatcher) ScheduleRetries(every time.Duration) (*string, error) {
	return lib.CreateCronJob("notification-retry", every, func() {
		d.RetryPending(context.Background())
	})
}

func backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	delay := time.Minute << (attempts - 1)
	if delay > time.Hour || delay <= 0 {
		return time.Hour
	}
	return delay
}
