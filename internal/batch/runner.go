// Package batch executes per-record operations one at a time, isolating
// failures and accumulating counts.
//
// Operations run strictly in order and each one completes before the next
// starts, so later operations observe everything earlier ones committed. A
// failing operation is counted and logged; the batch carries on.
package batch

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Operation is a single reconciliation step against persistent state.
type Operation interface {
	// Kind names the operation type, e.g. "CreateUser".
	Kind() string
	// Key identifies the record the operation applies to.
	Key() string
	// Apply performs the operation. The returned Outcome's Kind may differ
	// from the operation's when the decision is taken at apply time.
	Apply(ctx context.Context) (Outcome, error)
}

type Outcome struct {
	Kind    string
	Key     string
	Skipped bool
}

// Observer is notified after every operation. err is nil on success.
type Observer func(outcome Outcome, err error)

type Runner struct {
	log       logrus.FieldLogger
	observers []Observer
}

type Option func(*Runner)

func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

func WithObserver(observer Observer) Option {
	return func(r *Runner) {
		if observer != nil {
			r.observers = append(r.observers, observer)
		}
	}
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run applies ops in order and returns the tally. The only error it returns
// is the context's: when ctx is done, Run stops before the next operation
// and returns what was tallied so far. Nothing already applied is undone.
func (r *Runner) Run(ctx context.Context, ops []Operation) (Tally, error) {
	tally := NewTally()

	for i, op := range ops {
		if err := ctx.Err(); err != nil {
			r.log.WithFields(logrus.Fields{
				"completed": i,
				"remaining": len(ops) - i,
			}).Warn("Batch cancelled")
			return tally, err
		}

		outcome, err := op.Apply(ctx)
		if outcome.Kind == "" {
			outcome.Kind = op.Kind()
		}
		if outcome.Key == "" {
			outcome.Key = op.Key()
		}

		if err != nil {
			tally.recordFailure(outcome, err)
			r.log.WithFields(logrus.Fields{
				"kind":  outcome.Kind,
				"key":   outcome.Key,
				"index": i,
			}).WithError(err).Warn("Batch operation failed")
		} else {
			tally.recordSuccess(outcome)
			if outcome.Skipped {
				r.log.WithFields(logrus.Fields{
					"kind": outcome.Kind,
					"key":  outcome.Key,
				}).Warn("Batch operation skipped")
			}
		}

		for _, observe := range r.observers {
			observe(outcome, err)
		}
	}

	return tally, nil
}
