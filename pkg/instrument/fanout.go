package instrument

import (
	"time"

	"github.com/vango-dev/uielement/pkg/reactive"
)

type fanout []reactive.Observer

// Fanout returns an observer that forwards to every non-nil observer in obs.
func Fanout(obs ...reactive.Observer) reactive.Observer {
	out := make(fanout, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

func (f fanout) ComputedEvaluated(id uint64, start time.Time, d time.Duration, err error) {
	for _, o := range f {
		o.ComputedEvaluated(id, start, d, err)
	}
}

func (f fanout) EffectRan(id uint64, start time.Time, d time.Duration, err error) {
	for _, o := range f {
		o.EffectRan(id, start, d, err)
	}
}

func (f fanout) FlushCompleted(runs int, start time.Time, d time.Duration) {
	for _, o := range f {
		o.FlushCompleted(runs, start, d)
	}
}
