package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-lazypipe/pkg/pipeline/measure"
	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m         measure.Measure
	startTime time.Time
}

func (pd *pipelineDrawer) New() error {
	pd.startTime = time.Now()

	err := pd.AddStage(model.StartStage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start stage to drawer")
	}

	err = pd.AddStage(model.EndStage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end stage to drawer")
	}

	return nil
}

func (pd *pipelineDrawer) PrepareStage(parentStage, stage *model.StageInfo) error {
	err := pd.AddStage(stage.Name)
	if err != nil {
		return err
	}

	err = pd.AddLink(parentStage.Name, stage.Name)
	if err != nil {
		return err
	}

	if stage.Kind == model.SinkStageKind {
		err = pd.AddLink(stage.Name, model.EndStage.Name)
		if err != nil {
			return err
		}
	}

	return nil
}

func (pd *pipelineDrawer) OnStageOutput(_, _ *model.StageInfo, _, _ time.Duration) error {
	return nil
}

func (pd *pipelineDrawer) AfterSink(_ *model.StageInfo, _ time.Duration, _ error) error {
	return nil
}

func (pd *pipelineDrawer) Finish() error {
	if pd.m != nil {
		err := pd.SetTotalTime(model.EndStage.Name, pd.startTime)
		if err != nil {
			return errors.Wrap(err, "unable to set total time")
		}

		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err := pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer draws the stages of a pipeline once a terminal operation succeeds.
// When measure is not nil, its metrics annotate the graph. It should be the measure given to measure.PipelineMeasure.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{Drawer: drawer, m: measure}
}
