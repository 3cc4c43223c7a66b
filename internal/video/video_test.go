package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSupported(t *testing.T) {
	for _, name := range []string{"a.mp4", "dir/b.AVI", "c.mov", "d.MkV", "e.flv", "f.wmv", "g.mpeg"} {
		assert.True(t, IsSupported(name), name)
	}
	for _, name := range []string{"a.txt", "b.mpg", "mp4", "c.mp4.part", "README"} {
		assert.False(t, IsSupported(name), name)
	}
}
