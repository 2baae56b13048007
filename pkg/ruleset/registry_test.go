package ruleset

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_CurrentAndSwap(t *testing.T) {
	r := New([]string{"a", "b"})

	value, version := r.Current()
	assert.Equal(t, []string{"a", "b"}, value)
	assert.Equal(t, 1, version)

	newVersion := r.Swap([]string{"c"})
	assert.Equal(t, 2, newVersion)

	value, version = r.Current()
	assert.Equal(t, []string{"c"}, value)
	assert.Equal(t, 2, version)
	assert.Equal(t, 2, r.Version())
}

func TestRegistry_ConcurrentReadersAndWriter(t *testing.T) {
	r := New(0)

	var wg sync.WaitGroup
	for i := 1; i <= 100; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Swap(i)
		}(i)
		go func() {
			defer wg.Done()
			value, version := r.Current()
			// A reader never observes a version without its value.
			assert.GreaterOrEqual(t, version, 1)
			assert.GreaterOrEqual(t, value, 0)
		}()
	}
	wg.Wait()

	assert.Equal(t, 101, r.Version())
}
