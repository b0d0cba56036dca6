package learner

import (
	"testing"

	"github.com/GaryOcean428/qsearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func task(url string, priority int) *core.CrawlTask {
	return &core.CrawlTask{URL: url, Priority: priority}
}

func TestTaskQueueOrdering(t *testing.T) {
	var q taskQueue
	q.push(task("low", 1))
	q.push(task("high", 9))
	q.push(task("mid", 5))

	require.Equal(t, 3, q.Len())
	assert.Equal(t, "high", q.pop().URL)
	assert.Equal(t, "mid", q.pop().URL)
	assert.Equal(t, "low", q.pop().URL)
	assert.Nil(t, q.pop())
}

func TestTaskQueueEvictLowest(t *testing.T) {
	var q taskQueue
	q.push(task("a", 3))
	q.push(task("b", 1))
	q.push(task("c", 7))

	q.evictLowest()
	require.Equal(t, 2, q.Len())

	assert.Equal(t, "c", q.pop().URL)
	assert.Equal(t, "a", q.pop().URL)
}

func TestTaskQueueEvictEmpty(t *testing.T) {
	var q taskQueue
	q.evictLowest()
	assert.Equal(t, 0, q.Len())
}
