package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "dev (commit: none, built: unknown)", String())
	assert.Equal(t, "tallymis/dev", UserAgent())
}
