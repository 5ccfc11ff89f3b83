package model

import "github.com/google/uuid"

type StageKind string

const (
	SourceStageKind  StageKind = "source"
	MapStageKind     StageKind = "map"
	FlatMapStageKind StageKind = "flat_map"
	FilterStageKind  StageKind = "filter"
	SinkStageKind    StageKind = "sink"
)

// StageInfo describes one stage of a pipeline chain.
type StageInfo struct {
	ID         uuid.UUID
	Kind       StageKind
	Name       string
	Concurrent int
}

// NewStageInfo creates the description of a stage with a fresh id.
func NewStageInfo(kind StageKind, name string) *StageInfo {
	return &StageInfo{
		ID:         uuid.New(),
		Kind:       kind,
		Name:       name,
		Concurrent: 1,
	}
}

var (
	StartStage = &StageInfo{Name: "start", Concurrent: 1}
	EndStage   = &StageInfo{Name: "end", Concurrent: 1}
)
