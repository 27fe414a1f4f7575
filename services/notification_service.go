package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"melatoninAPI/internal/notification"
)

// PushProvider is the delivery backend (FCM in production). The service
// works without one; notifications then only land in the database.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

type NotificationService struct {
	db   *pgxpool.Pool
	push PushProvider
}

func NewNotificationService(db *pgxpool.Pool) *NotificationService {
	return &NotificationService{db: db}
}

func (s *NotificationService) SetPushProvider(p PushProvider) {
	s.push = p
}

// Notify persists a notification and pushes it best-effort. Delivery
// failures are logged, never propagated: a missed push must not fail the
// action that produced it.
func (s *NotificationService) Notify(ctx context.Context, userID int64, typ notification.Type, title, body string) {
	_, err := s.db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, title, body, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`, uuid.New().String(), userID, typ, title, body)
	if err != nil {
		log.Printf("NotificationService: failed to persist notification for user %d: %v", userID, err)
		return
	}

	if s.push == nil {
		return
	}

	tokens, err := s.deviceTokens(ctx, userID)
	if err != nil {
		log.Printf("NotificationService: failed to load device tokens for user %d: %v", userID, err)
		return
	}
	if err := s.push.SendPush(ctx, tokens, title, body, map[string]any{"type": string(typ)}); err != nil {
		log.Printf("NotificationService: push failed for user %d: %v", userID, err)
	}
}

func (s *NotificationService) deviceTokens(ctx context.Context, userID int64) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `
		SELECT token, platform FROM device_tokens WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.Token, &t.Platform); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (s *NotificationService) GetNotifications(ctx context.Context, userID int64) ([]notification.Notification, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, type, title, body, read_at, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 50
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	defer rows.Close()

	var notifs []notification.Notification
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifs = append(notifs, n)
	}
	return notifs, rows.Err()
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, userID int64) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read_at IS NULL
	`, userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID int64, notificationID string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE notifications SET read_at = NOW()
		WHERE id = $1 AND user_id = $2 AND read_at IS NULL
	`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("notification not found")
	}
	return nil
}

// ScheduleReminder registers a daily ritual nudge at an "HH:MM" wall-clock
// time. One reminder per (user, ritual); rescheduling overwrites the time.
func (s *NotificationService) ScheduleReminder(ctx context.Context, userID int64, req *notification.ScheduleReminderRequest) (*notification.Reminder, error) {
	if _, err := time.Parse("15:04", req.RemindAt); err != nil {
		return nil, fmt.Errorf("remindAt must be HH:MM (24h): %w", err)
	}

	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM rituals WHERE id = $1)`, req.RitualID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check ritual: %w", err)
	}
	if !exists {
		return nil, ErrRitualNotFound
	}

	rem := &notification.Reminder{}
	err = s.db.QueryRow(ctx, `
		INSERT INTO ritual_reminders (user_id, ritual_id, remind_at, active, created_at)
		VALUES ($1, $2, $3, true, NOW())
		ON CONFLICT (user_id, ritual_id)
		DO UPDATE SET remind_at = $3, active = true
		RETURNING id, user_id, ritual_id, remind_at, active, created_at
	`, userID, req.RitualID, req.RemindAt).Scan(
		&rem.ID, &rem.UserID, &rem.RitualID, &rem.RemindAt, &rem.Active, &rem.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule reminder: %w", err)
	}
	return rem, nil
}

func (s *NotificationService) GetActiveReminders(ctx context.Context, userID int64) ([]notification.Reminder, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, ritual_id, remind_at, active, created_at
		FROM ritual_reminders
		WHERE user_id = $1 AND active = true
		ORDER BY remind_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reminders: %w", err)
	}
	defer rows.Close()

	var reminders []notification.Reminder
	for rows.Next() {
		var r notification.Reminder
		if err := rows.Scan(&r.ID, &r.UserID, &r.RitualID, &r.RemindAt, &r.Active, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}

// StartReminderWorker dispatches due reminders once a minute until ctx is
// cancelled. A reminder is due when its wall-clock time matches the
// current UTC minute and it was not already sent today.
func (s *NotificationService) StartReminderWorker(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.dispatchDueReminders(ctx)
			}
		}
	}()
}

func (s *NotificationService) dispatchDueReminders(ctx context.Context) {
	now := time.Now().UTC().Format("15:04")

	rows, err := s.db.Query(ctx, `
		SELECT rr.user_id, r.name
		FROM ritual_reminders rr
		JOIN rituals r ON r.id = rr.ritual_id
		WHERE rr.active = true
		  AND rr.remind_at = $1
		  AND (rr.last_sent_at IS NULL OR rr.last_sent_at < CURRENT_DATE)
	`, now)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("NotificationService: reminder sweep failed: %v", err)
		}
		return
	}
	defer rows.Close()

	type due struct {
		userID     int64
		ritualName string
	}
	var dues []due
	for rows.Next() {
		var d due
		if err := rows.Scan(&d.userID, &d.ritualName); err != nil {
			log.Printf("NotificationService: failed to scan due reminder: %v", err)
			return
		}
		dues = append(dues, d)
	}

	for _, d := range dues {
		s.Notify(ctx, d.userID, notification.TypeRitualReminder,
			"Ritual reminder", fmt.Sprintf("Time for your %s ritual.", d.ritualName))
	}

	if len(dues) > 0 {
		if _, err := s.db.Exec(ctx, `
			UPDATE ritual_reminders SET last_sent_at = NOW() WHERE active = true AND remind_at = $1
		`, now); err != nil {
			log.Printf("NotificationService: failed to stamp sent reminders: %v", err)
		}
	}
}
