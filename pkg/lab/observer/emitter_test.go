package observer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dattu/lab_variants/pkg/fixtures"
	"github.com/dattu/lab_variants/pkg/variant"
)

func TestOnEmit(t *testing.T) {
	e := New()
	var got []any
	e.On("login", func(args ...any) { got = append(got, args...) })

	assert.Equal(t, 1, e.Emit("login", 123))
	assert.Equal(t, 1, e.Emit("login", "forced"))
	assert.Equal(t, 0, e.Emit("logout"))
	assert.Equal(t, []any{123, "forced"}, got)
}

func TestOffRemovesOnlyThatSubscription(t *testing.T) {
	e := New()
	var a, b int
	subA := e.On("tick", func(...any) { a++ })
	e.On("tick", func(...any) { b++ })

	e.Off(subA)
	e.Off(subA)
	e.Emit("tick")
	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, 1, e.ListenerCount("tick"))
}

func TestOnceFiresOnce(t *testing.T) {
	e := New()
	calls := 0
	sub := e.Once("login", func(...any) { calls++ })
	assert.Equal(t, "login", sub.Event())

	e.Emit("login")
	e.Emit("login")
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, e.ListenerCount("login"))
}

func TestOnceConcurrentEmit(t *testing.T) {
	e := New()
	var mu sync.Mutex
	calls := 0
	e.Once("burst", func(...any) {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Emit("burst")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, calls)
}

func checkObserver(t *testing.T, f *fixtures.Fixtures) {
	t.Helper()
	events := f.EventTypes()
	counts := f.EmitCounts()
	require.Len(t, events, 4)
	require.Len(t, counts, 3)

	e := New()
	received := make(map[string]int)
	for _, ev := range events {
		ev := ev
		e.On(ev, func(...any) { received[ev]++ })
	}
	onceHits := 0
	e.Once(events[3], func(...any) { onceHits++ })

	payloads := f.TestPayloads()
	for i, n := range counts {
		for j := 0; j < n; j++ {
			e.Emit(events[i], payloads.Message, payloads.Value)
		}
	}
	for j := 0; j < 2; j++ {
		e.Emit(events[3])
	}

	for i, n := range counts {
		assert.Equal(t, n, received[events[i]], events[i])
	}
	assert.Equal(t, 2, received[events[3]])
	assert.Equal(t, 1, onceHits)
}

func TestAgainstDefaultFixtures(t *testing.T) {
	checkObserver(t, fixtures.New(variant.Default()))
}

func TestAgainstGeneratedFixtures(t *testing.T) {
	for _, id := range []string{"johndoe123", "student0", "Ωmega-学生-ID"} {
		b, err := variant.Generate(id)
		require.NoError(t, err)
		checkObserver(t, fixtures.New(b))
	}
}
