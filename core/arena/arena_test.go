package arena

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingCloser struct {
	name string
	log  *[]string
	err  error
}

func (r *recordingCloser) Close() error {
	*r.log = append(*r.log, r.name)
	return r.err
}

func TestStack_releaseOrder(t *testing.T) {
	var closed []string
	s := NewStack()

	s.Push()
	s.Release(&recordingCloser{name: "outer", log: &closed})
	s.Push()
	s.Release(&recordingCloser{name: "inner-1", log: &closed})
	s.Release(&recordingCloser{name: "inner-2", log: &closed, err: errors.New("ignored")})
	assert.Equal(t, 2, s.Depth())

	s.Pop()
	assert.Equal(t, []string{"inner-2", "inner-1"}, closed)

	s.Pop()
	assert.Equal(t, []string{"inner-2", "inner-1", "outer"}, closed)
	assert.Equal(t, 0, s.Depth())
}

func TestStack_releaseWithoutScope(t *testing.T) {
	var closed []string
	s := NewStack()
	s.Release(&recordingCloser{name: "now", log: &closed})
	assert.Equal(t, []string{"now"}, closed)
}

func TestStack_unbalancedPop(t *testing.T) {
	s := NewStack()
	assert.PanicsWithValue(t, ErrUnbalanced, s.Pop)
}

func TestCounter(t *testing.T) {
	var closed []string
	c := NewCounter(NewStack())

	c.Push()
	c.Push()
	c.Release(&recordingCloser{name: "pipe", log: &closed})
	assert.Equal(t, 2, c.Depth())
	c.Pop()
	assert.False(t, c.Balanced())
	c.Pop()

	assert.True(t, c.Balanced())
	assert.Equal(t, 2, c.Pushes)
	assert.Equal(t, 2, c.MaxDepth)
	assert.Equal(t, []string{"pipe"}, closed)
}

func TestCounter_nilAllocator(t *testing.T) {
	var closed []string
	c := NewCounter(nil)
	c.Push()
	c.Release(&recordingCloser{name: "kept", log: &closed})
	c.Pop()

	assert.True(t, c.Balanced())
	assert.Empty(t, closed)
}
