package model

import "time"

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error

	pipelineStageOption
	pipelineSinkOption

	// Finish runs after a terminal operation completes without error.
	Finish() error
}

// pipelineStageOption defines the interface for stage options at the pipeline level.
type pipelineStageOption interface {
	// PrepareStage runs when the stage is added to the chain, before anything is pulled.
	PrepareStage(parentStage, stage *StageInfo) error
	// OnStageOutput runs everytime the stage produces an item.
	OnStageOutput(parentStage, stage *StageInfo, iterationDuration, computationDuration time.Duration) error
}

// pipelineSinkOption defines the interface for terminal options at the pipeline level.
type pipelineSinkOption interface {
	// AfterSink runs once the terminal operation stops pulling, err is the failure that stopped it if any.
	AfterSink(stage *StageInfo, totalDuration time.Duration, err error) error
}
