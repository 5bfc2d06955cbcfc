package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/zeromicro/go-zero/core/mr"
)

// result is the outcome of one template in a batch.
type result[T any] struct {
	path  string
	value T
	err   error
}

type indexed[T any] struct {
	index int
	result[T]
}

// runBatch applies fn to every path on up to workers goroutines and
// returns the results in input order. A failing template never stops
// the others.
func runBatch[T any](ctx context.Context, paths []string, workers int, fn func(path string) (T, error)) ([]result[T], error) {
	if workers < 1 {
		workers = 1
	}
	return mr.MapReduce(func(source chan<- int) {
		for i := range paths {
			source <- i
		}
	}, func(i int, writer mr.Writer[indexed[T]], cancel func(error)) {
		v, err := fn(paths[i])
		writer.Write(indexed[T]{index: i, result: result[T]{path: paths[i], value: v, err: err}})
	}, func(pipe <-chan indexed[T], writer mr.Writer[[]result[T]], cancel func(error)) {
		out := make([]result[T], len(paths))
		for r := range pipe {
			out[r.index] = r.result
		}
		writer.Write(out)
	}, mr.WithWorkers(workers), mr.WithContext(ctx))
}

// startSpinner shows progress on an interactive stderr and returns the
// function that stops it.
func startSpinner(w io.Writer, suffix string) func() {
	if color.NoColor || w != io.Writer(os.Stderr) {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " " + suffix
	s.Start()
	return s.Stop
}
