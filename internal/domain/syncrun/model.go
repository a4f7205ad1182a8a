package syncrun

import (
	"fmt"
	"strings"
	"time"
)

type Stage string

const (
	StageAll          Stage = "all"
	StageCompetitions Stage = "competitions"
	StageTeams        Stage = "teams"
	StageMatches      Stage = "matches"
)

func ParseStage(raw string) (Stage, error) {
	switch stage := Stage(strings.ToLower(strings.TrimSpace(raw))); stage {
	case StageAll, StageCompetitions, StageTeams, StageMatches:
		return stage, nil
	case "":
		return StageAll, nil
	default:
		return "", fmt.Errorf("unknown sync stage %q", raw)
	}
}

type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Run is the audit record of one pipeline invocation.
type Run struct {
	ID           string
	Stage        Stage
	Trigger      string
	Status       Status
	Summary      map[string]any
	ErrorMessage string
	TraceID      string
	StartedAt    time.Time
	FinishedAt   *time.Time
}
