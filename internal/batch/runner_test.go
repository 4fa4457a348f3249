package batch

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOp struct {
	kind    string
	key     string
	err     error
	skipped bool
	applied *[]string
	onApply func()
}

func (s stubOp) Kind() string { return s.kind }
func (s stubOp) Key() string  { return s.key }

func (s stubOp) Apply(ctx context.Context) (Outcome, error) {
	if s.applied != nil {
		*s.applied = append(*s.applied, s.key)
	}
	if s.onApply != nil {
		s.onApply()
	}
	if s.err != nil {
		return Outcome{}, s.err
	}
	return Outcome{Kind: s.kind, Key: s.key, Skipped: s.skipped}, nil
}

func quietRunner(opts ...Option) *Runner {
	log, _ := test.NewNullLogger()
	return NewRunner(append([]Option{WithLogger(log)}, opts...)...)
}

func TestRunner_AllSucceed(t *testing.T) {
	var applied []string
	ops := []Operation{
		stubOp{kind: "CreateUser", key: "a@x.com", applied: &applied},
		stubOp{kind: "UpdateSeat", key: "12A", applied: &applied},
		stubOp{kind: "CreateUser", key: "b@x.com", applied: &applied},
	}

	tally, err := quietRunner().Run(context.Background(), ops)

	require.NoError(t, err)
	assert.Equal(t, 3, tally.OK)
	assert.Equal(t, 0, tally.Fail)
	assert.Equal(t, 2, tally.ByKind["CreateUser"])
	assert.Equal(t, 1, tally.ByKind["UpdateSeat"])
	assert.Equal(t, []string{"a@x.com", "12A", "b@x.com"}, applied)
}

func TestRunner_PartialFailureIsolation(t *testing.T) {
	const k = 5
	var applied []string
	ops := make([]Operation, 0, k)
	for i := 0; i < k; i++ {
		op := stubOp{kind: "CreateReservationAtomic", key: string(rune('A' + i)), applied: &applied}
		if i == 2 {
			op.err = errors.New("seat not found")
		}
		ops = append(ops, op)
	}

	tally, err := quietRunner().Run(context.Background(), ops)

	require.NoError(t, err)
	assert.Equal(t, k-1, tally.OK)
	assert.Equal(t, 1, tally.Fail)
	assert.Len(t, applied, k, "batch must not abort after a failure")
	require.Len(t, tally.Failures, 1)
	assert.Equal(t, Failure{Kind: "CreateReservationAtomic", Key: "C", Err: "seat not found"}, tally.Failures[0])
}

func TestRunner_Skipped(t *testing.T) {
	ops := []Operation{
		stubOp{kind: "SkipSeat", key: "99Z", skipped: true},
		stubOp{kind: "UpdateSeat", key: "1A"},
	}

	tally, err := quietRunner().Run(context.Background(), ops)

	require.NoError(t, err)
	assert.Equal(t, 2, tally.OK)
	assert.Equal(t, 1, tally.Skipped)
}

func TestRunner_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var applied []string
	ops := []Operation{
		stubOp{kind: "CreateUser", key: "1", applied: &applied},
		stubOp{kind: "CreateUser", key: "2", applied: &applied, onApply: cancel},
		stubOp{kind: "CreateUser", key: "3", applied: &applied},
	}

	tally, err := quietRunner().Run(ctx, ops)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, tally.OK)
	assert.Equal(t, []string{"1", "2"}, applied)
}

func TestRunner_Observer(t *testing.T) {
	var seen []string
	var failures int
	observer := func(outcome Outcome, err error) {
		seen = append(seen, outcome.Kind+":"+outcome.Key)
		if err != nil {
			failures++
		}
	}

	ops := []Operation{
		stubOp{kind: "CreateUser", key: "a"},
		stubOp{kind: "UpdateUser", key: "b", err: errors.New("boom")},
	}

	_, err := quietRunner(WithObserver(observer)).Run(context.Background(), ops)

	require.NoError(t, err)
	assert.Equal(t, []string{"CreateUser:a", "UpdateUser:b"}, seen)
	assert.Equal(t, 1, failures)
}

func TestRunner_LogsFailures(t *testing.T) {
	log, hook := test.NewNullLogger()
	runner := NewRunner(WithLogger(log))

	_, err := runner.Run(context.Background(), []Operation{
		stubOp{kind: "UpdateSeat", key: "12A", err: errors.New("conflict")},
	})
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "12A", entry.Data["key"])
	assert.Equal(t, "UpdateSeat", entry.Data["kind"])
}

func TestRunner_Empty(t *testing.T) {
	tally, err := quietRunner().Run(context.Background(), nil)

	require.NoError(t, err)
	assert.Zero(t, tally.Total())
}

func TestTally_Add(t *testing.T) {
	a := Tally{OK: 2, Fail: 1, ByKind: map[string]int{"CreateUser": 2}, Failures: []Failure{{Key: "x"}}}
	b := Tally{OK: 1, Skipped: 1, ByKind: map[string]int{"CreateUser": 1}}

	sum := a.Add(b)

	assert.Equal(t, 3, sum.OK)
	assert.Equal(t, 1, sum.Fail)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 3, sum.ByKind["CreateUser"])
	assert.Len(t, sum.Failures, 1)
	assert.Equal(t, 2, a.ByKind["CreateUser"], "operands are not modified")
}
