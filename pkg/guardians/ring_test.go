package guardians

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mkFinding(id string) Finding {
	return Finding{ID: id, Timestamp: time.Now()}
}

func TestFindingRingNeverExceedsCapacity(t *testing.T) {
	r := NewFindingRing(4)
	for i := 0; i < 10; i++ {
		r.Push(mkFinding(string(rune('a' + i))))
	}
	assert.Equal(t, 4, r.Len())
	assert.Equal(t, 4, r.Cap())
}

func TestFindingRingNewestFirst(t *testing.T) {
	r := NewFindingRing(3)
	r.Push(mkFinding("1"))
	r.Push(mkFinding("2"))
	r.Push(mkFinding("3"))
	all := r.All()
	assert.Equal(t, []string{"3", "2", "1"}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestFindingRingAtMostOneEvictionPerPush(t *testing.T) {
	r := NewFindingRing(2)
	r.Push(mkFinding("1"))
	r.Push(mkFinding("2"))
	assert.Equal(t, 2, r.Len())
	r.Push(mkFinding("3"))
	assert.Equal(t, 2, r.Len())
	all := r.All()
	assert.Equal(t, []string{"3", "2"}, []string{all[0].ID, all[1].ID})
}

func TestFindingRingDefaultAndCeilingCapacity(t *testing.T) {
	r := NewFindingRing(0)
	assert.Equal(t, DefaultRingCapacity, r.Cap())
	r2 := NewFindingRing(1_000_000)
	assert.Equal(t, MaxRingCapacity, r2.Cap())
}
