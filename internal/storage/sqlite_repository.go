package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"studyd/internal/model"
)

// Scheduled dates persist as bare ISO dates; the clock component lives in its
// own "HH:MM" column, mirroring the in-memory model.
const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) UpsertSubject(ctx context.Context, in model.Subject) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subjects (id, name, color, total_topics, completed_topics)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			color = excluded.color,
			total_topics = excluded.total_topics,
			completed_topics = excluded.completed_topics`,
		in.ID, in.Name, in.Color, in.TotalTopics, in.CompletedTopics,
	)
	return err
}

func (r *SQLiteRepository) DeleteSubject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM subjects WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListSubjects(ctx context.Context) ([]model.Subject, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, color, total_topics, completed_topics
		FROM subjects ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Subject, 0)
	for rows.Next() {
		var item model.Subject
		if scanErr := rows.Scan(&item.ID, &item.Name, &item.Color, &item.TotalTopics, &item.CompletedTopics); scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertTopic(ctx context.Context, in model.Topic) error {
	subtopics, err := json.Marshal(stringList(in.Subtopics))
	if err != nil {
		return fmt.Errorf("encode subtopics: %w", err)
	}
	resources, err := json.Marshal(stringList(in.Resources))
	if err != nil {
		return fmt.Errorf("encode resources: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO topics (id, subject_id, title, description, subtopics, priority,
			scheduled_date, scheduled_time, duration_minutes, completed, notes, resources)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject_id = excluded.subject_id,
			title = excluded.title,
			description = excluded.description,
			subtopics = excluded.subtopics,
			priority = excluded.priority,
			scheduled_date = excluded.scheduled_date,
			scheduled_time = excluded.scheduled_time,
			duration_minutes = excluded.duration_minutes,
			completed = excluded.completed,
			notes = excluded.notes,
			resources = excluded.resources`,
		in.ID, in.SubjectID, in.Title, in.Description, string(subtopics), string(in.Priority),
		nullDate(in.ScheduledDate), in.ScheduledTime, in.DurationMinutes, boolInt(in.Completed), in.Notes, string(resources),
	)
	return err
}

func (r *SQLiteRepository) DeleteTopic(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM topics WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

// ListTopics loads the whole topic collection. A row with an unparseable
// scheduled date or a corrupt list column is dropped rather than failing the
// load; losing one record beats losing the planner.
func (r *SQLiteRepository) ListTopics(ctx context.Context) ([]model.Topic, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subject_id, title, description, subtopics, priority,
			scheduled_date, scheduled_time, duration_minutes, completed, notes, resources
		FROM topics ORDER BY subject_id, title ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Topic, 0)
	for rows.Next() {
		item, scanErr := scanTopic(rows)
		if scanErr != nil {
			if errors.Is(scanErr, errBadRecord) {
				continue
			}
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, subjects []model.Subject, topics []model.Topic) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM topics`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM subjects`); err != nil {
		return err
	}
	for _, subject := range subjects {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO subjects (id, name, color, total_topics, completed_topics)
			VALUES (?, ?, ?, ?, ?)`,
			subject.ID, subject.Name, subject.Color, subject.TotalTopics, subject.CompletedTopics,
		); err != nil {
			return err
		}
	}
	for _, topic := range topics {
		subtopics, err := json.Marshal(stringList(topic.Subtopics))
		if err != nil {
			return fmt.Errorf("encode subtopics: %w", err)
		}
		resources, err := json.Marshal(stringList(topic.Resources))
		if err != nil {
			return fmt.Errorf("encode resources: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO topics (id, subject_id, title, description, subtopics, priority,
				scheduled_date, scheduled_time, duration_minutes, completed, notes, resources)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			topic.ID, topic.SubjectID, topic.Title, topic.Description, string(subtopics), string(topic.Priority),
			nullDate(topic.ScheduledDate), topic.ScheduledTime, topic.DurationMinutes, boolInt(topic.Completed), topic.Notes, string(resources),
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

var errBadRecord = errors.New("storage: malformed record")

type scanner interface {
	Scan(dest ...any) error
}

func scanTopic(s scanner) (model.Topic, error) {
	var out model.Topic
	var subtopics string
	var priority string
	var date sql.NullString
	var completed int
	var resources string
	if err := s.Scan(&out.ID, &out.SubjectID, &out.Title, &out.Description, &subtopics, &priority,
		&date, &out.ScheduledTime, &out.DurationMinutes, &completed, &out.Notes, &resources); err != nil {
		return model.Topic{}, err
	}
	out.Priority = model.Priority(priority)
	out.Completed = completed == 1

	if date.Valid && date.String != "" {
		parsed, err := time.ParseInLocation(dateLayout, date.String, time.Local)
		if err != nil {
			return model.Topic{}, errBadRecord
		}
		out.ScheduledDate = &parsed
	}
	if err := json.Unmarshal([]byte(subtopics), &out.Subtopics); err != nil {
		return model.Topic{}, errBadRecord
	}
	if err := json.Unmarshal([]byte(resources), &out.Resources); err != nil {
		return model.Topic{}, errBadRecord
	}
	return out, nil
}

func nullDate(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.Format(dateLayout)
}

func stringList(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
