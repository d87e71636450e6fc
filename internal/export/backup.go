package export

import (
	"encoding/json"
	"fmt"
	"time"

	"studyd/internal/model"
)

// BackupVersion tags the JSON payload so a future format change can keep
// reading old files.
const BackupVersion = 1

// Backup is the full-state JSON snapshot: every subject and topic, with ids,
// so a restore round-trips identity instead of minting new records.
type Backup struct {
	Version    int           `json:"version"`
	ExportedAt time.Time     `json:"exportedAt"`
	Subjects   []subjectJSON `json:"subjects"`
	Topics     []topicJSON   `json:"topics"`
}

type subjectJSON struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Color           string `json:"color"`
	TotalTopics     int    `json:"totalTopics"`
	CompletedTopics int    `json:"completedTopics"`
}

type topicJSON struct {
	ID              string   `json:"id"`
	SubjectID       string   `json:"subjectId"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	Subtopics       []string `json:"subtopics,omitempty"`
	Priority        string   `json:"priority"`
	ScheduledDate   string   `json:"scheduledDate,omitempty"`
	ScheduledTime   string   `json:"scheduledTime,omitempty"`
	DurationMinutes int      `json:"durationMinutes"`
	Completed       bool     `json:"completed"`
	Notes           string   `json:"notes,omitempty"`
	Resources       []string `json:"resources,omitempty"`
}

const backupDateLayout = "2006-01-02"

// MarshalBackup encodes the collections as an indented JSON snapshot.
func MarshalBackup(subjects []model.Subject, topics []model.Topic) ([]byte, error) {
	backup := Backup{
		Version:    BackupVersion,
		ExportedAt: time.Now().UTC(),
		Subjects:   make([]subjectJSON, 0, len(subjects)),
		Topics:     make([]topicJSON, 0, len(topics)),
	}
	for _, subject := range subjects {
		backup.Subjects = append(backup.Subjects, subjectJSON{
			ID:              subject.ID,
			Name:            subject.Name,
			Color:           subject.Color,
			TotalTopics:     subject.TotalTopics,
			CompletedTopics: subject.CompletedTopics,
		})
	}
	for _, topic := range topics {
		item := topicJSON{
			ID:              topic.ID,
			SubjectID:       topic.SubjectID,
			Title:           topic.Title,
			Description:     topic.Description,
			Subtopics:       topic.Subtopics,
			Priority:        string(topic.Priority),
			ScheduledTime:   topic.ScheduledTime,
			DurationMinutes: topic.DurationMinutes,
			Completed:       topic.Completed,
			Notes:           topic.Notes,
			Resources:       topic.Resources,
		}
		if topic.ScheduledDate != nil {
			item.ScheduledDate = topic.ScheduledDate.Format(backupDateLayout)
		}
		backup.Topics = append(backup.Topics, item)
	}
	return json.MarshalIndent(backup, "", "  ")
}

// UnmarshalBackup decodes a snapshot back into model collections. Records
// that fail validation are skipped rather than aborting the restore; the
// skipped count lets the caller report the loss.
func UnmarshalBackup(data []byte) (subjects []model.Subject, topics []model.Topic, skipped int, err error) {
	var backup Backup
	if err := json.Unmarshal(data, &backup); err != nil {
		return nil, nil, 0, fmt.Errorf("export: decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return nil, nil, 0, fmt.Errorf("export: unsupported backup version %d", backup.Version)
	}

	subjects = make([]model.Subject, 0, len(backup.Subjects))
	for _, in := range backup.Subjects {
		subject := model.Subject{
			ID:              in.ID,
			Name:            in.Name,
			Color:           in.Color,
			TotalTopics:     in.TotalTopics,
			CompletedTopics: in.CompletedTopics,
		}
		if subject.Validate() != nil {
			skipped++
			continue
		}
		subjects = append(subjects, subject)
	}

	topics = make([]model.Topic, 0, len(backup.Topics))
	for _, in := range backup.Topics {
		topic := model.Topic{
			ID:              in.ID,
			SubjectID:       in.SubjectID,
			Title:           in.Title,
			Description:     in.Description,
			Subtopics:       in.Subtopics,
			Priority:        model.Priority(in.Priority),
			ScheduledTime:   in.ScheduledTime,
			DurationMinutes: in.DurationMinutes,
			Completed:       in.Completed,
			Notes:           in.Notes,
			Resources:       in.Resources,
		}
		if in.ScheduledDate != "" {
			parsed, parseErr := time.ParseInLocation(backupDateLayout, in.ScheduledDate, time.Local)
			if parseErr != nil {
				skipped++
				continue
			}
			topic.ScheduledDate = &parsed
		}
		if topic.Validate() != nil {
			skipped++
			continue
		}
		topics = append(topics, topic)
	}
	return subjects, topics, skipped, nil
}
