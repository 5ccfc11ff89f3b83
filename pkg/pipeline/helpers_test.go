package pipeline_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/askiada/go-lazypipe/pkg/pipeline"
	"github.com/askiada/go-lazypipe/pkg/pipeline/model"
)

// createStepper returns a stepper producing 1..total, and a pointer to the number of Step calls.
func createStepper(t *testing.T, total int) (pipeline.StepperFunc[int], *int) {
	t.Helper()

	calls := 0
	curr := 0

	return func(_ context.Context) (pipeline.StepResult[int], error) {
		calls++
		if curr >= total {
			return pipeline.StepResult[int]{Done: true}, nil
		}

		curr++

		return pipeline.StepResult[int]{Value: curr}, nil
	}, &calls
}

func createInputChan(t *testing.T, total int) chan int {
	t.Helper()

	inputChan := make(chan int)

	go func() {
		defer close(inputChan)

		for i := range total {
			inputChan <- i
		}
	}()

	return inputChan
}

func identity[T any](_ context.Context, in T) (T, error) {
	return in, nil
}

type recordingOption struct {
	mu        sync.Mutex
	failOn    string
	news      int
	prepared  []string
	outputs   map[string]int
	parents   map[string]string
	sinkErrs  []error
	finishes  int
	hookError error
}

func newRecordingOption() *recordingOption {
	return &recordingOption{
		outputs: make(map[string]int),
		parents: make(map[string]string),
	}
}

func (ro *recordingOption) fail(hook string) error {
	if ro.failOn == hook {
		return ro.hookError
	}

	return nil
}

func (ro *recordingOption) New() error {
	ro.mu.Lock()
	defer ro.mu.Unlock()
	ro.news++

	return ro.fail("new")
}

func (ro *recordingOption) PrepareStage(parentStage, stage *model.StageInfo) error {
	ro.mu.Lock()
	defer ro.mu.Unlock()
	ro.prepared = append(ro.prepared, stage.Name)
	ro.parents[stage.Name] = parentStage.Name

	return ro.fail("prepare:" + string(stage.Kind))
}

func (ro *recordingOption) OnStageOutput(_, stage *model.StageInfo, _, _ time.Duration) error {
	ro.mu.Lock()
	defer ro.mu.Unlock()
	ro.outputs[stage.Name]++

	return ro.fail("output:" + string(stage.Kind))
}

func (ro *recordingOption) AfterSink(_ *model.StageInfo, _ time.Duration, err error) error {
	ro.mu.Lock()
	defer ro.mu.Unlock()
	ro.sinkErrs = append(ro.sinkErrs, err)

	return ro.fail("after_sink")
}

func (ro *recordingOption) Finish() error {
	ro.mu.Lock()
	defer ro.mu.Unlock()
	ro.finishes++

	return ro.fail("finish")
}

var _ model.PipelineOption = (*recordingOption)(nil)
