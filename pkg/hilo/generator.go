package hilo

import (
	"context"
	"fmt"
	"unicode"

	"golang.org/x/exp/constraints"

	"github.com/pg-sharding/batchwrite/pkg/models/bwerror"
	"github.com/pg-sharding/batchwrite/pkg/sequences"
)

// ValueGenerator hands out permanent key values of type T from a shared
// hi-lo window.
type ValueGenerator[T constraints.Integer] struct {
	state *AllocatorState
	src   sequences.Source
	char  bool
}

type ValueResult[T constraints.Integer] struct {
	Value T
	Err   error
}

func NewValueGenerator[T constraints.Integer](state *AllocatorState, src sequences.Source) *ValueGenerator[T] {
	return &ValueGenerator[T]{state: state, src: src}
}

// NewCharValueGenerator generates character codes, limited to valid code points.
func NewCharValueGenerator(state *AllocatorState, src sequences.Source) *ValueGenerator[rune] {
	return &ValueGenerator[rune]{state: state, src: src, char: true}
}

func (g *ValueGenerator[T]) State() *AllocatorState {
	return g.state
}

func (g *ValueGenerator[T]) NextValue(ctx context.Context) (T, error) {
	v, err := g.state.Next(ctx, g.src)
	if err != nil {
		return 0, err
	}
	if g.char && (v < 0 || v > unicode.MaxRune) {
		return 0, bwerror.NewRangeOverflow(v, "char")
	}
	return Convert[T](v)
}

func (g *ValueGenerator[T]) NextValueAsync(ctx context.Context) <-chan ValueResult[T] {
	ch := make(chan ValueResult[T], 1)
	go func() {
		v, err := g.NextValue(ctx)
		ch <- ValueResult[T]{Value: v, Err: err}
	}()
	return ch
}

func (g *ValueGenerator[T]) Next(ctx context.Context) (any, error) {
	v, err := g.NextValue(ctx)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (g *ValueGenerator[T]) GeneratesTemporaryValues() bool {
	return false
}

// Convert narrows v to T, failing instead of truncating.
func Convert[T constraints.Integer](v int64) (T, error) {
	t := T(v)
	if int64(t) != v || (v < 0) != (t < 0) {
		return 0, bwerror.NewRangeOverflow(v, fmt.Sprintf("%T", t))
	}
	return t, nil
}
