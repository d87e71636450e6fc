package model

import (
	"errors"
	"strings"
)

// Subject groups topics under a name and a display color. TotalTopics and
// CompletedTopics are cached aggregates over the topics referencing this
// subject; they are maintained by the planner, never edited directly.
type Subject struct {
	ID              string
	Name            string
	Color           string
	TotalTopics     int
	CompletedTopics int
}

func (s Subject) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.New("model: subject id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return errors.New("model: subject name is required")
	}
	if s.TotalTopics < 0 || s.CompletedTopics < 0 {
		return errors.New("model: subject topic counts must not be negative")
	}
	if s.CompletedTopics > s.TotalTopics {
		return errors.New("model: subject completed count exceeds total count")
	}
	return nil
}
