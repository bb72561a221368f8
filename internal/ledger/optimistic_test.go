package ledger

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimisticApplyConfirms(t *testing.T) {
	o := NewOptimistic([]int{1, 2}, slices.Clone[[]int])

	var seenDuringRemote []int
	rolledBack, err := o.Apply(context.Background(),
		func(cur []int) ([]int, error) { return append(cur, 3), nil },
		func(context.Context) error {
			seenDuringRemote = o.Get()
			return nil
		})

	require.NoError(t, err)
	assert.False(t, rolledBack)
	assert.Equal(t, []int{1, 2, 3}, seenDuringRemote, "value is applied before the remote call")
	assert.Equal(t, []int{1, 2, 3}, o.Get())
	assert.Equal(t, uint64(1), o.Version())
}

func TestOptimisticApplyRollsBack(t *testing.T) {
	o := NewOptimistic([]int{1, 2}, slices.Clone[[]int])
	boom := errors.New("boom")

	rolledBack, err := o.Apply(context.Background(),
		func(cur []int) ([]int, error) {
			cur[0] = 100
			return cur[1:], nil
		},
		func(context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
	assert.True(t, rolledBack)
	assert.Equal(t, []int{1, 2}, o.Get())
	assert.Equal(t, uint64(2), o.Version())
}

func TestOptimisticMutateErrorSkipsRemote(t *testing.T) {
	o := NewOptimistic(5, func(v int) int { return v })
	invalid := errors.New("invalid")
	called := false

	_, err := o.Apply(context.Background(),
		func(int) (int, error) { return 0, invalid },
		func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, invalid)

	_, err = o.Apply(context.Background(),
		func(int) (int, error) { return 0, ErrUnchanged },
		func(context.Context) error { called = true; return nil })
	assert.NoError(t, err)

	assert.False(t, called)
	assert.Equal(t, 5, o.Get())
	assert.Equal(t, uint64(0), o.Version())
}

func TestOptimisticRollbackRestoresOwnSnapshot(t *testing.T) {
	o := NewOptimistic([]string{"a"}, slices.Clone[[]string])
	ctx := context.Background()

	_, err := o.Apply(ctx,
		func(cur []string) ([]string, error) { return append(cur, "b"), nil },
		func(ctx context.Context) error {
			// A second operation completes while the first is in flight.
			_, err := o.Apply(ctx,
				func(cur []string) ([]string, error) { return append(cur, "c"), nil },
				func(context.Context) error { return nil })
			require.NoError(t, err)
			return errors.New("first failed")
		})

	require.Error(t, err)
	assert.Equal(t, []string{"a"}, o.Get())
}
