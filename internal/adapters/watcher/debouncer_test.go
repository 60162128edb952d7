package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/percolate/internal/adapters/watcher"
)

type batches struct {
	mu    sync.Mutex
	calls [][]string
}

func (b *batches) record(paths []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, paths)
}

func (b *batches) get() [][]string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func TestDebouncer_CoalescesAndSorts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var got batches
		d := watcher.NewDebouncer(100*time.Millisecond, got.record)

		d.Add("/src/b.coffee")
		d.Add("/src/a.coffee")
		d.Add("/src/b.coffee")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Len(t, got.get(), 1)
		assert.Equal(t, []string{"/src/a.coffee", "/src/b.coffee"}, got.get()[0])
	})
}

func TestDebouncer_WindowRestartsOnAdd(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var got batches
		d := watcher.NewDebouncer(100*time.Millisecond, got.record)

		d.Add("/src/a.coffee")
		time.Sleep(80 * time.Millisecond)
		d.Add("/src/b.coffee")
		time.Sleep(80 * time.Millisecond)
		synctest.Wait()

		assert.Empty(t, got.get(), "window restarts on every add")

		time.Sleep(30 * time.Millisecond)
		synctest.Wait()

		require.Len(t, got.get(), 1)
		assert.Equal(t, []string{"/src/a.coffee", "/src/b.coffee"}, got.get()[0])
	})
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var got batches
		d := watcher.NewDebouncer(50*time.Millisecond, got.record)

		d.Add("/src/a.coffee")
		time.Sleep(60 * time.Millisecond)
		d.Add("/src/b.coffee")
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, [][]string{{"/src/a.coffee"}, {"/src/b.coffee"}}, got.get())
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var got batches
		d := watcher.NewDebouncer(time.Second, got.record)

		d.Add("/src/a.coffee")
		d.Flush()

		require.Equal(t, [][]string{{"/src/a.coffee"}}, got.get())

		time.Sleep(2 * time.Second)
		synctest.Wait()
		assert.Len(t, got.get(), 1, "flushed paths are not delivered twice")

		d.Flush()
		assert.Len(t, got.get(), 1, "flushing nothing does not call back")
	})
}

func TestDebouncer_Stop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		var got batches
		d := watcher.NewDebouncer(50*time.Millisecond, got.record)

		d.Add("/src/a.coffee")
		d.Stop()

		time.Sleep(100 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, got.get())
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		d := watcher.NewDebouncer(10*time.Millisecond, nil)
		d.Add("/src/a.coffee")
		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
		d.Flush()
	})
}
