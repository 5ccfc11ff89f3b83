package pipeline

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

// Pipeline is a lazy handle over a single-use Puller.
// Chain functions return new handles without pulling anything, terminal methods drain the chain.
type Pipeline[T any] struct {
	pull  Puller[T]
	stage *model.StageInfo
	rt    *runtime
	// err is a construction failure, reported by the first terminal operation.
	err error
}

// runtime is shared by every handle derived from the same source.
type runtime struct {
	opts []model.PipelineOption
	seq  atomic.Int64
}

// From creates a pipeline from a source accepted by Normalize.
func From[T any](input any, opts ...model.PipelineOption) (*Pipeline[T], error) {
	pull, err := Normalize[T](input)
	if err != nil {
		return nil, err
	}

	rt := &runtime{opts: opts}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	info := rt.newStage(model.SourceStageKind, string(model.SourceStageKind))

	err = rt.prepareStage(model.StartStage, info)
	if err != nil {
		return nil, err
	}

	if rt.observed() {
		pull = &sourceStage[T]{stage: newStage(pull, rt, model.StartStage, info)}
	}

	return &Pipeline[T]{pull: pull, stage: info, rt: rt}, nil
}

// Puller returns the pull owned by the pipeline. Pulling from it consumes the pipeline.
func (p *Pipeline[T]) Puller() Puller[T] {
	if p == nil {
		return &errPuller[T]{err: ErrPipelineMustBeSet}
	}

	if p.err != nil {
		return &errPuller[T]{err: p.err}
	}

	return p.pull
}

// Stage describes the last stage of the pipeline. It is nil for a nil pipeline.
func (p *Pipeline[T]) Stage() *model.StageInfo {
	if p == nil {
		return nil
	}

	return p.stage
}

// derive builds the handle of a new stage on top of parent.
func derive[T, U any](parent *Pipeline[T], kind model.StageKind, hasFn bool, build func(s stage[T]) Puller[U]) *Pipeline[U] {
	if parent == nil {
		return &Pipeline[U]{err: ErrPipelineMustBeSet}
	}

	if parent.err != nil {
		return &Pipeline[U]{err: parent.err, rt: parent.rt, stage: parent.stage}
	}

	if parent.pull == nil || parent.rt == nil {
		return &Pipeline[U]{err: ErrPipelineMustBeSet}
	}

	info := parent.rt.newStage(kind, string(kind))

	if !hasFn {
		return &Pipeline[U]{err: errors.Wrapf(ErrFuncMustBeSet, "stage %s", info.Name), rt: parent.rt, stage: info}
	}

	err := parent.rt.prepareStage(parent.stage, info)
	if err != nil {
		return &Pipeline[U]{err: err, rt: parent.rt, stage: info}
	}

	return &Pipeline[U]{
		pull:  build(newStage(parent.pull, parent.rt, parent.stage, info)),
		stage: info,
		rt:    parent.rt,
	}
}

func (rt *runtime) newStage(kind model.StageKind, op string) *model.StageInfo {
	return model.NewStageInfo(kind, fmt.Sprintf("%s-%d", op, rt.seq.Add(1)))
}

func (rt *runtime) observed() bool {
	return len(rt.opts) > 0
}

func (rt *runtime) prepareStage(parent, stage *model.StageInfo) error {
	for _, opt := range rt.opts {
		err := opt.PrepareStage(parent, stage)
		if err != nil {
			return errors.Wrapf(err, "unable to prepare stage %s", stage.Name)
		}
	}

	return nil
}

func (rt *runtime) onStageOutput(parent, stage *model.StageInfo, iterationDuration, computationDuration time.Duration) error {
	for _, opt := range rt.opts {
		err := opt.OnStageOutput(parent, stage, iterationDuration, computationDuration)
		if err != nil {
			return errors.Wrapf(err, "unable to run output hook of stage %s", stage.Name)
		}
	}

	return nil
}

func (rt *runtime) afterSink(stage *model.StageInfo, totalDuration time.Duration, runErr error) error {
	for _, opt := range rt.opts {
		err := opt.AfterSink(stage, totalDuration, runErr)
		if err != nil {
			return errors.Wrapf(err, "unable to run after sink hook of stage %s", stage.Name)
		}
	}

	return nil
}

func (rt *runtime) finish() error {
	for _, opt := range rt.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}
