package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetCode_FollowsChain(t *testing.T) {
	sentinel := NewWithCode("too_large", "file too large")
	wrapped := fmt.Errorf("clip.mp4: %w", sentinel)

	assert.True(t, Is(wrapped, sentinel))
	assert.Equal(t, "too_large", GetCode(wrapped))
	assert.Equal(t, "file too large", GetMessage(wrapped))
}

func TestGetCode_SkipsUncodedWrappers(t *testing.T) {
	inner := NewWithCode("persistence_failed", "could not save")
	outer := Wrap(inner, "persist active")

	assert.Equal(t, "persistence_failed", GetCode(outer))
	assert.Equal(t, "persist active: could not save", outer.Error())
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "noop"))
	assert.Nil(t, WrapWithCode(nil, "c", "noop"))
	assert.Equal(t, "", GetCode(nil))
}
