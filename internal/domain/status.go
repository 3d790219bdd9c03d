package domain

import "fmt"

// ItemStatus tracks progress of actions and overarching goals.
type ItemStatus string

const (
	NotStarted ItemStatus = "not_started"
	InProgress ItemStatus = "in_progress"
	Completed  ItemStatus = "completed"
	WontDo     ItemStatus = "wont_do"
)

var itemStatusLabels = map[ItemStatus]string{
	NotStarted: "Not Started",
	InProgress: "In Progress",
	Completed:  "Completed",
	WontDo:     "Won't Do",
}

func (s ItemStatus) Valid() bool {
	_, ok := itemStatusLabels[s]
	return ok
}

func (s ItemStatus) String() string {
	if label, ok := itemStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// ParseItemStatus accepts the wire form ("in_progress") or the enum name ("InProgress").
func ParseItemStatus(v string) (ItemStatus, error) {
	if s := ItemStatus(v); s.Valid() {
		return s, nil
	}
	switch v {
	case "NotStarted":
		return NotStarted, nil
	case "InProgress":
		return InProgress, nil
	case "Completed":
		return Completed, nil
	case "WontDo":
		return WontDo, nil
	}
	return "", fmt.Errorf("invalid item status %q", v)
}
