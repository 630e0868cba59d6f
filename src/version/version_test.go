//go:build unit

package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	assert.Equal(t, Version, info["version"])
	assert.Equal(t, Commit, info["commit"])
	assert.NotEmpty(t, info["go_version"])
	assert.Contains(t, String(), Version)
}
