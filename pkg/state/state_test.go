package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManager(t *testing.T) {
	m := New(0)
	assert.Equal(t, StateNormal, m.GetState(1))

	m.SetState(1, StateAddingIngredients)
	assert.Equal(t, StateAddingIngredients, m.GetState(1))
	assert.Equal(t, StateNormal, m.GetState(2))

	m.ClearState(1)
	assert.Equal(t, StateNormal, m.GetState(1))

	m.SetState(1, StateAddingIngredients)
	m.SetState(1, StateNormal)
	assert.Equal(t, StateNormal, m.GetState(1))
}

func TestManagerExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := New(time.Minute)
	m.now = func() time.Time { return now }

	m.SetState(7, StateAddingIngredients)

	now = now.Add(50 * time.Second)
	m.Touch(7)
	now = now.Add(50 * time.Second)
	assert.Equal(t, StateAddingIngredients, m.GetState(7))

	now = now.Add(61 * time.Second)
	assert.Equal(t, StateNormal, m.GetState(7))
}

func TestManagerConcurrent(t *testing.T) {
	m := New(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			m.SetState(id, StateAddingIngredients)
			m.GetState(id)
			m.Touch(id)
			m.ClearState(id)
		}(int64(i % 5))
	}
	wg.Wait()
}
