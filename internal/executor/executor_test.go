package executor

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type result struct {
	name string
	ok   bool
}

func makeUnits(n int, fail func(i int) bool) []Unit[result] {
	units := make([]Unit[result], n)
	for i := 0; i < n; i++ {
		i := i
		units[i] = func(ctx context.Context) result {
			time.Sleep(time.Duration(n-i) * time.Millisecond)
			return result{name: fmt.Sprintf("u%02d", i), ok: !fail(i)}
		}
	}
	return units
}

func sorted(rs []result) []result {
	out := append([]result(nil), rs...)
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func TestRunSameMultisetForAnyParallelism(t *testing.T) {
	fail := func(i int) bool { return i%4 == 1 }
	want := sorted(Run(context.Background(), 1, makeUnits(20, fail)))
	assert.Len(t, want, 20)

	for _, p := range []int{1, 2, 8} {
		t.Run(fmt.Sprintf("p=%d", p), func(t *testing.T) {
			got := Run(context.Background(), p, makeUnits(20, fail))
			assert.Equal(t, want, sorted(got))
		})
	}
}

func TestRunSequentialKeepsInputOrder(t *testing.T) {
	got := Run(context.Background(), 0, makeUnits(5, func(int) bool { return false }))

	var names []string
	for _, r := range got {
		names = append(names, r.name)
	}
	assert.Equal(t, []string{"u00", "u01", "u02", "u03", "u04"}, names)
}

func TestRunRespectsBound(t *testing.T) {
	var running, peak int32
	units := make([]Unit[int], 16)
	for i := range units {
		units[i] = func(ctx context.Context) int {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return 1
		}
	}

	got := Run(context.Background(), 3, units)

	assert.Len(t, got, 16)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestRunFailureDoesNotStopSiblings(t *testing.T) {
	got := Run(context.Background(), 2, makeUnits(3, func(i int) bool { return i == 1 }))

	assert.ElementsMatch(t, []result{
		{name: "u00", ok: true},
		{name: "u01", ok: false},
		{name: "u02", ok: true},
	}, got)
}

func TestRunEmpty(t *testing.T) {
	assert.Empty(t, Run[int](context.Background(), 4, nil))
}
