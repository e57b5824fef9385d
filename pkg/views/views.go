// Package views computes the read-only projections the console shows. Every
// function is pure: same input, same output, inputs never modified.
package views

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openpaw/pawdeck/pkg/models"
)

// PreviewLength is the number of characters kept in a conversation preview.
const PreviewLength = 40

// FilterDocuments keeps documents whose title or content contains query,
// ignoring case. A blank query returns docs unchanged; otherwise the query is
// matched as typed, surrounding spaces included.
func FilterDocuments(docs []models.Document, query string) []models.Document {
	blank := strings.TrimSpace(query) == ""
	q := strings.ToLower(query)
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if blank || strings.Contains(strings.ToLower(d.Title), q) || strings.Contains(strings.ToLower(d.Content), q) {
			out = append(out, d)
		}
	}
	return out
}

// FilterTasks applies the status filter ("all" or empty disables it) and a
// case-insensitive substring match on title or description.
func FilterTasks(tasks []models.Task, status string, query string) []models.Task {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if status != "" && status != models.FilterAll && string(t.Status) != status {
			continue
		}
		if q != "" && !matchesTask(t, q) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesTask(t models.Task, q string) bool {
	if strings.Contains(strings.ToLower(t.Title), q) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), q)
}

// GroupBoard partitions tasks into the four status columns, keeping their
// relative order. Tasks with an unknown status land in no column.
func GroupBoard(tasks []models.Task) models.Board {
	b := models.Board{
		Pending:    []models.Task{},
		InProgress: []models.Task{},
		Completed:  []models.Task{},
		Failed:     []models.Task{},
	}
	for _, t := range tasks {
		if col := b.Column(t.Status); col != nil {
			*col = append(*col, t)
		}
	}
	return b
}

// StatCount counts tasks with status; "all" counts every task.
func StatCount(tasks []models.Task, status string) int {
	if status == models.FilterAll {
		return len(tasks)
	}
	n := 0
	for _, t := range tasks {
		if string(t.Status) == status {
			n++
		}
	}
	return n
}

func TaskStats(tasks []models.Task) models.TaskStats {
	return models.TaskStats{
		All:        len(tasks),
		Pending:    StatCount(tasks, string(models.TaskStatusPending)),
		InProgress: StatCount(tasks, string(models.TaskStatusInProgress)),
		Completed:  StatCount(tasks, string(models.TaskStatusCompleted)),
		Failed:     StatCount(tasks, string(models.TaskStatusFailed)),
	}
}

// ConversationPreview is the first PreviewLength characters of the last
// message, or "New Chat" when there are no messages.
func ConversationPreview(messages []models.Message) string {
	if len(messages) == 0 {
		return models.DefaultConversationTitle
	}
	runes := []rune(messages[len(messages)-1].Content)
	if len(runes) > PreviewLength {
		runes = runes[:PreviewLength]
	}
	return string(runes)
}

func Summary(c models.Conversation) models.ConversationSummary {
	return models.ConversationSummary{
		ID:           c.ID,
		Preview:      ConversationPreview(c.Messages),
		MessageCount: len(c.Messages),
	}
}

func Summaries(convs []models.Conversation) []models.ConversationSummary {
	out := make([]models.ConversationSummary, 0, len(convs))
	for _, c := range convs {
		out = append(out, Summary(c))
	}
	return out
}

// DocumentChunks is ceil(len(content)/ChunkSize), counted in characters.
func DocumentChunks(d models.Document) int {
	n := len([]rune(d.Content))
	return (n + models.ChunkSize - 1) / models.ChunkSize
}

func TotalChunks(docs []models.Document) int {
	total := 0
	for _, d := range docs {
		total += DocumentChunks(d)
	}
	return total
}

// builtinSkills ship with the backend.
var builtinSkills = map[string]bool{"time": true, "echo": true}

func IsBuiltinSkill(s models.Skill) bool {
	return builtinSkills[strings.ToLower(s.Manifest.Name)]
}

// PartitionSkills splits skills into built-in and custom, preserving order.
func PartitionSkills(skills []models.Skill) (builtin, custom []models.Skill) {
	builtin, custom = []models.Skill{}, []models.Skill{}
	for _, s := range skills {
		if IsBuiltinSkill(s) {
			builtin = append(builtin, s)
		} else {
			custom = append(custom, s)
		}
	}
	return builtin, custom
}

// ParseTriggers splits a comma separated trigger list, trimming entries and
// dropping empty ones.
func ParseTriggers(csv string) []string {
	out := []string{}
	for _, part := range strings.Split(csv, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FormatScheduleTime renders "HH:MM" as a 12-hour clock ("14:05" -> "2:05 PM").
// Values that don't parse are returned unchanged; empty stays empty.
func FormatScheduleTime(hhmm string) string {
	if hhmm == "" {
		return ""
	}
	parts := strings.Split(hhmm, ":")
	if len(parts) < 2 {
		return hhmm
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return hhmm
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return hhmm
	}
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour12, minute, suffix)
}

func RecurrenceLabel(r models.TaskType) string {
	switch r {
	case models.TaskTypeDaily:
		return "Every day"
	case models.TaskTypeMonthly:
		return "Every month"
	default:
		return "One time"
	}
}
