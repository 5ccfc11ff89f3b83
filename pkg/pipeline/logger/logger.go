// Package logger provides a pipeline option writing the lifecycle of every stage to a zerolog.Logger.
//
// Stage preparation is logged at debug level, every produced item at trace level,
// terminal completion at info level and terminal failures at error level.
package logger

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

type pipelineLogger struct {
	logger zerolog.Logger
}

func (pl *pipelineLogger) New() error {
	pl.logger.Debug().Msg("pipeline created")

	return nil
}

func (pl *pipelineLogger) PrepareStage(parentStage, stage *model.StageInfo) error {
	pl.logger.Debug().
		Str("parent", parentStage.Name).
		Str("stage", stage.Name).
		Str("kind", string(stage.Kind)).
		Stringer("stage_id", stage.ID).
		Msg("stage prepared")

	return nil
}

func (pl *pipelineLogger) OnStageOutput(parentStage, stage *model.StageInfo, iterationDuration, computationDuration time.Duration) error {
	pl.logger.Trace().
		Str("parent", parentStage.Name).
		Str("stage", stage.Name).
		Dur("iteration", iterationDuration).
		Dur("computation", computationDuration).
		Msg("stage output")

	return nil
}

func (pl *pipelineLogger) AfterSink(stage *model.StageInfo, totalDuration time.Duration, err error) error {
	if err != nil {
		pl.logger.Error().
			Err(err).
			Str("stage", stage.Name).
			Stringer("stage_id", stage.ID).
			Dur("total", totalDuration).
			Msg("pipeline failed")

		return nil
	}

	pl.logger.Info().
		Str("stage", stage.Name).
		Stringer("stage_id", stage.ID).
		Dur("total", totalDuration).
		Msg("pipeline drained")

	return nil
}

func (pl *pipelineLogger) Finish() error {
	pl.logger.Debug().Msg("pipeline finished")

	return nil
}

// PipelineLogger logs the stages of a pipeline to logger.
func PipelineLogger(logger zerolog.Logger) model.PipelineOption {
	return &pipelineLogger{logger: logger.With().Str("component", "pipeline").Logger()}
}
