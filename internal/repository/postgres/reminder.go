package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fleetledger-backend/internal/domain"
	"fleetledger-backend/internal/repository"
)

type reminderRepository struct {
	db *sql.DB
}

func NewReminderRepository(db *sql.DB) repository.ReminderRepository {
	return &reminderRepository{db: db}
}

const reminderColumns = `id, rule_code, object_type, object_id, title, message, due_on, remind_on, severity, status, last_sent_at, context, created_on`

// Create suppresses duplicates: only one reminder ever exists for a given
// (object_type, object_id, rule_code, due_on). Repeating rules get a fresh
// rule code per repetition, so this stays a pure existence check.
func (r *reminderRepository) Create(ctx context.Context, rem *domain.Reminder) (bool, error) {
	rem.ID = uuid.NewString()
	now := time.Now()

	contextJSON, err := json.Marshal(rem.Context)
	if err != nil {
		return false, fmt.Errorf("marshal reminder context: %w", err)
	}

	query := `INSERT INTO reminders (id, rule_code, object_type, object_id, title, message, due_on, remind_on, severity, status, context, created_on)
	          SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending', $10, $11
	          WHERE NOT EXISTS (
	              SELECT 1 FROM reminders
	              WHERE object_type = $3 AND object_id = $4 AND rule_code = $2 AND due_on = $7
	          )
	          RETURNING id`
	var id string
	err = r.db.QueryRowContext(ctx, query,
		rem.ID, rem.RuleCode, rem.ObjectType, rem.ObjectID, rem.Title, rem.Message,
		rem.DueOn, rem.RemindOn, rem.Severity, contextJSON, now).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert reminder: %w", err)
	}
	rem.Status = domain.ReminderStatusPending
	rem.CreatedOn = now
	return true, nil
}

func (r *reminderRepository) ListPending(ctx context.Context, remindOnOrBefore time.Time) ([]domain.Reminder, error) {
	// severity is text, so rank it explicitly rather than sorting the column.
	query := `SELECT ` + reminderColumns + ` FROM reminders
	          WHERE status = 'pending' AND remind_on <= $1 AND last_sent_at IS NULL
	          ORDER BY CASE severity WHEN 'critical' THEN 0 WHEN 'warning' THEN 1 ELSE 2 END, remind_on ASC`
	rows, err := r.db.QueryContext(ctx, query, remindOnOrBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminders(rows)
}

func (r *reminderRepository) List(ctx context.Context, status string, limit, offset int32) ([]domain.Reminder, int32, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders`
	countQuery := `SELECT count(*) FROM reminders`
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = $1"
		countQuery += " WHERE status = $1"
		args = append(args, status)
	}
	query += fmt.Sprintf(" ORDER BY remind_on DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	var count int32
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reminders, err := scanReminders(rows)
	if err != nil {
		return nil, 0, err
	}
	return reminders, count, nil
}

func (r *reminderRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) error {
	query := `UPDATE reminders SET status = 'sent', last_sent_at = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, sentAt, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("reminder %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanReminders(rows *sql.Rows) ([]domain.Reminder, error) {
	var reminders []domain.Reminder
	for rows.Next() {
		var (
			rem         domain.Reminder
			contextJSON []byte
		)
		if err := rows.Scan(&rem.ID, &rem.RuleCode, &rem.ObjectType, &rem.ObjectID, &rem.Title, &rem.Message,
			&rem.DueOn, &rem.RemindOn, &rem.Severity, &rem.Status, &rem.LastSentAt, &contextJSON, &rem.CreatedOn); err != nil {
			return nil, err
		}
		if len(contextJSON) > 0 {
			if err := json.Unmarshal(contextJSON, &rem.Context); err != nil {
				return nil, fmt.Errorf("unmarshal reminder context: %w", err)
			}
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}
