package export

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"studyd/internal/model"
)

// ICalendar renders every scheduled topic as a VEVENT. Unscheduled topics
// have no instant to anchor an event on and are left out. Instants serialize
// in UTC; consumers re-localize on import.
func ICalendar(subjects []model.Subject, topics []model.Topic) string {
	names := subjectNames(subjects)

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//studyd//studyd calendar//EN")

	stamp := time.Now().UTC()
	for _, topic := range topics {
		start, ok := topic.ScheduledAt()
		if !ok {
			continue
		}
		end := start.Add(time.Duration(topic.DurationMinutes) * time.Minute)

		event := cal.AddEvent(fmt.Sprintf("study-%s@studyd.local", topic.ID))
		event.SetDtStampTime(stamp)
		event.SetStartAt(start.UTC())
		event.SetEndAt(end.UTC())
		event.SetSummary(eventSummary(topic, names[topic.SubjectID]))
		if description := eventDescription(topic); description != "" {
			event.SetDescription(description)
		}
		event.SetProperty(ical.ComponentPropertyCategories,
			"STUDY,"+strings.ToUpper(string(topic.Priority)))
		if topic.Completed {
			event.SetStatus(ical.ObjectStatusCompleted)
		} else {
			event.SetStatus(ical.ObjectStatusConfirmed)
		}
	}
	return cal.Serialize()
}

// GoogleCalendarURL builds a prefilled event-creation link for one topic.
func GoogleCalendarURL(topic model.Topic, subjects []model.Subject) (string, bool) {
	start, ok := topic.ScheduledAt()
	if !ok {
		return "", false
	}
	end := start.Add(time.Duration(topic.DurationMinutes) * time.Minute)
	const stampLayout = "20060102T150405Z"

	values := url.Values{}
	values.Set("action", "TEMPLATE")
	values.Set("text", eventSummary(topic, subjectNames(subjects)[topic.SubjectID]))
	values.Set("dates", start.UTC().Format(stampLayout)+"/"+end.UTC().Format(stampLayout))
	if description := eventDescription(topic); description != "" {
		values.Set("details", description)
	}
	return "https://calendar.google.com/calendar/render?" + values.Encode(), true
}

func eventSummary(topic model.Topic, subjectName string) string {
	if subjectName == "" {
		return topic.Title
	}
	return topic.Title + " - " + subjectName
}

func eventDescription(topic model.Topic) string {
	parts := make([]string, 0, 3)
	if topic.Description != "" {
		parts = append(parts, topic.Description)
	}
	if topic.Notes != "" {
		parts = append(parts, "Notes: "+topic.Notes)
	}
	if len(topic.Resources) > 0 {
		parts = append(parts, "Resources: "+strings.Join(topic.Resources, ", "))
	}
	return strings.Join(parts, "\n")
}

func subjectNames(subjects []model.Subject) map[string]string {
	out := make(map[string]string, len(subjects))
	for _, subject := range subjects {
		out[subject.ID] = subject.Name
	}
	return out
}
