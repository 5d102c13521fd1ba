package channel

import (
	"context"

	"go.uber.org/atomic"
)

// SliceStream replays a fixed list of outcomes. It counts how many outcomes
// were read so callers can assert how far a consumer advanced.
type SliceStream struct {
	outcomes []StatementOutcome
	pos      int
	reads    atomic.Int64
	closed   atomic.Bool
}

var _ OutcomeStream = &SliceStream{}

func NewSliceStream(outcomes ...StatementOutcome) *SliceStream {
	return &SliceStream{outcomes: outcomes}
}

func (s *SliceStream) Next(ctx context.Context) (StatementOutcome, bool, error) {
	if err := ctx.Err(); err != nil {
		return StatementOutcome{}, false, err
	}
	if s.pos >= len(s.outcomes) {
		return StatementOutcome{}, false, nil
	}
	o := s.outcomes[s.pos]
	s.pos++
	s.reads.Inc()
	return o, true, nil
}

func (s *SliceStream) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *SliceStream) Reads() int64 {
	return s.reads.Load()
}

func (s *SliceStream) Closed() bool {
	return s.closed.Load()
}
