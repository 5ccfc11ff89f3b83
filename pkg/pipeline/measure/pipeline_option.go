package measure

import (
	"time"

	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	pm.AddMetric(model.StartStage.Name, 1)
	pm.AddMetric(model.EndStage.Name, 1)

	return nil
}

func (pm *pipelineMeasure) PrepareStage(_, stage *model.StageInfo) error {
	pm.AddMetric(stage.Name, stage.Concurrent)

	return nil
}

func (pm *pipelineMeasure) OnStageOutput(parentStage, stage *model.StageInfo, iterationDuration, computationDuration time.Duration) error {
	mt := pm.GetMetric(stage.Name)
	if mt == nil {
		return nil
	}

	mt.AddDuration(computationDuration)
	mt.AddTransportDuration(parentStage.Name, iterationDuration)

	return nil
}

func (pm *pipelineMeasure) AfterSink(stage *model.StageInfo, totalDuration time.Duration, _ error) error {
	mt := pm.GetMetric(stage.Name)
	if mt == nil {
		return nil
	}

	mt.SetTotalDuration(totalDuration)

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	return nil
}

// PipelineMeasure records the durations of every stage into measure.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
