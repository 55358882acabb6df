package hybrid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldRetrievePastReference(t *testing.T) {
	assert.True(t, ShouldRetrieve("did we talk about this?"))
}

func TestShouldRetrieveMemoryVerb(t *testing.T) {
	assert.True(t, ShouldRetrieve("remember the config we set"))
}

func TestShouldRetrieveSearchVerb(t *testing.T) {
	assert.True(t, ShouldRetrieve("search the logs for errors"))
}

func TestShouldRetrieveLongQuery(t *testing.T) {
	assert.True(t, ShouldRetrieve("one two three four five six seven eight nine ten eleven twelve"))
}

func TestShouldRetrieveScopeTag(t *testing.T) {
	assert.True(t, ShouldRetrieve("session: what happened"))
}

func TestShouldRetrieveFalseOtherwise(t *testing.T) {
	assert.False(t, ShouldRetrieve("hello there"))
}
