// Package pipeline provides lazy, composable pipelines over pull-based sequences.
//
// Any sequence-like value can be the source of a pipeline: a Puller or a channel, a slice or an iter.Seq,
// or a Stepper that reports its own end of sequence. Normalize turns all of them into a Puller, the single
// pull protocol every stage is built on.
//
// Map, FlatMap and Filter only describe work: each returns a new Pipeline whose pull wraps the previous one,
// and nothing runs until ForEach, ToSlice, Reduce or All starts pulling. Items then travel one at a time:
// an item goes through every stage, and the terminal, before the next one is requested from the source.
//
// The pipeline stops on the first error, whether it comes from the source or from a user function, and the
// terminal returns that error unchanged. A pipeline can be drained only once: a second terminal call sees an
// exhausted sequence.
//
//	src, err := pipeline.From[int]([]int{1, 2, 3, 4})
//	if err != nil {
//		return err
//	}
//	evens := src.Filter(func(_ context.Context, n int) (bool, error) { return n%2 == 0, nil })
//	squares := pipeline.Map(evens, func(_ context.Context, n int) (int, error) { return n * n, nil })
//	res, err := squares.ToSlice(ctx) // [4 16]
//
// Options from the measure, drawer and logger packages observe the stages of a pipeline while it runs.
package pipeline
