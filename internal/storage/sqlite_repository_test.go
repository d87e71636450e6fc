package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"studyd/internal/model"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "studyd-test.db")
	repo, err := OpenSQLite(dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func localDate(t *testing.T, value string) *time.Time {
	t.Helper()
	out, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	return &out
}

func TestSubjectUpsertAndList(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	subject := model.Subject{ID: "subject-1", Name: "Algorithms", Color: "#3b82f6"}
	if err := repo.UpsertSubject(ctx, subject); err != nil {
		t.Fatalf("upsert subject: %v", err)
	}

	subject.TotalTopics = 2
	subject.CompletedTopics = 1
	if err := repo.UpsertSubject(ctx, subject); err != nil {
		t.Fatalf("upsert subject again: %v", err)
	}

	list, err := repo.ListSubjects(ctx)
	if err != nil {
		t.Fatalf("list subjects: %v", err)
	}
	if len(list) != 1 || list[0].TotalTopics != 2 || list[0].CompletedTopics != 1 {
		t.Fatalf("unexpected subject list: %#v", list)
	}

	if err := repo.DeleteSubject(ctx, subject.ID); err != nil {
		t.Fatalf("delete subject: %v", err)
	}
	if err := repo.DeleteSubject(ctx, subject.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestTopicUpsertRoundTripsScheduleAndLists(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	topic := model.Topic{
		ID:              "topic-1",
		SubjectID:       "subject-1",
		Title:           "Graph traversal",
		Description:     "BFS and DFS",
		Subtopics:       []string{"BFS", "DFS"},
		Priority:        model.PriorityHigh,
		ScheduledDate:   localDate(t, "2026-03-02"),
		ScheduledTime:   "10:00",
		DurationMinutes: 45,
		Notes:           "Start with adjacency lists.",
		Resources:       []string{"https://example.com/graphs"},
	}
	if err := repo.UpsertTopic(ctx, topic); err != nil {
		t.Fatalf("upsert topic: %v", err)
	}

	list, err := repo.ListTopics(ctx)
	if err != nil {
		t.Fatalf("list topics: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("unexpected topic count: %d", len(list))
	}
	got := list[0]
	if got.ScheduledDate == nil || !got.ScheduledDate.Equal(*topic.ScheduledDate) {
		t.Fatalf("scheduled date did not round-trip: %#v", got.ScheduledDate)
	}
	if got.ScheduledTime != "10:00" || got.Priority != model.PriorityHigh {
		t.Fatalf("unexpected topic: %#v", got)
	}
	if len(got.Subtopics) != 2 || len(got.Resources) != 1 {
		t.Fatalf("list columns did not round-trip: %#v", got)
	}
}

func TestTopicNilDateStaysNil(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	topic := model.Topic{
		ID:              "topic-1",
		SubjectID:       "subject-1",
		Title:           "Unscheduled reading",
		Priority:        model.PriorityLow,
		DurationMinutes: 30,
	}
	if err := repo.UpsertTopic(ctx, topic); err != nil {
		t.Fatalf("upsert topic: %v", err)
	}
	list, err := repo.ListTopics(ctx)
	if err != nil {
		t.Fatalf("list topics: %v", err)
	}
	if len(list) != 1 || list[0].ScheduledDate != nil {
		t.Fatalf("expected nil scheduled date, got: %#v", list)
	}
}

func TestListTopicsDropsMalformedRows(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "studyd-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	ctx := context.Background()
	good := model.Topic{ID: "good", SubjectID: "subject-1", Title: "Good", Priority: model.PriorityMedium, DurationMinutes: 30}
	if err := repo.UpsertTopic(ctx, good); err != nil {
		t.Fatalf("upsert topic: %v", err)
	}
	if _, err := db.Exec(`
		INSERT INTO topics (id, subject_id, title, priority, scheduled_date, duration_minutes)
		VALUES ('broken', 'subject-1', 'Broken', 'High', 'not-a-date', 30)`); err != nil {
		t.Fatalf("insert broken row: %v", err)
	}

	list, err := repo.ListTopics(ctx)
	if err != nil {
		t.Fatalf("list topics: %v", err)
	}
	if len(list) != 1 || list[0].ID != "good" {
		t.Fatalf("expected only the good row, got: %#v", list)
	}
}

func TestReplaceAllSwapsCollections(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if err := repo.UpsertSubject(ctx, model.Subject{ID: "old", Name: "Old"}); err != nil {
		t.Fatalf("seed subject: %v", err)
	}
	if err := repo.UpsertTopic(ctx, model.Topic{ID: "old-topic", SubjectID: "old", Title: "Old", Priority: model.PriorityLow, DurationMinutes: 10}); err != nil {
		t.Fatalf("seed topic: %v", err)
	}

	subjects := []model.Subject{{ID: "new", Name: "New", TotalTopics: 1}}
	topics := []model.Topic{{ID: "new-topic", SubjectID: "new", Title: "New", Priority: model.PriorityHigh, DurationMinutes: 20}}
	if err := repo.ReplaceAll(ctx, subjects, topics); err != nil {
		t.Fatalf("replace all: %v", err)
	}

	gotSubjects, err := repo.ListSubjects(ctx)
	if err != nil {
		t.Fatalf("list subjects: %v", err)
	}
	gotTopics, err := repo.ListTopics(ctx)
	if err != nil {
		t.Fatalf("list topics: %v", err)
	}
	if len(gotSubjects) != 1 || gotSubjects[0].ID != "new" {
		t.Fatalf("unexpected subjects after replace: %#v", gotSubjects)
	}
	if len(gotTopics) != 1 || gotTopics[0].ID != "new-topic" {
		t.Fatalf("unexpected topics after replace: %#v", gotTopics)
	}
}

func TestMigrateDownRemovesTables(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "studyd-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	if _, err := db.Exec(`SELECT 1 FROM topics`); err == nil {
		t.Fatal("expected topics table to be gone")
	}
}
