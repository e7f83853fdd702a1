package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersion(t *testing.T) {
	assert.Equal(t, "0.1.0-alpha", Short())
	assert.Equal(t, "orchestra/0.1.0-alpha", UserAgent())
	assert.NotEmpty(t, Commit())
	assert.True(t, strings.HasPrefix(Full(), "v0.1.0-alpha ("))
	assert.True(t, strings.HasSuffix(Full(), runtime.GOOS+"/"+runtime.GOARCH))
}
