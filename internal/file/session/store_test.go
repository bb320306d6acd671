package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "filemanager:session:abc123:news.gallery", Key("abc123", "news.gallery"))
	assert.NotEqual(t, Key("a", "x"), Key("b", "x"))
}
