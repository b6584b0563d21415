package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo("QOSST Plot")
	assert.True(t, strings.HasPrefix(info, "QOSST Plot version "+Version))
	assert.Contains(t, info, runtime.Version())
}

func TestGetFullVersionUsesShortCommit(t *testing.T) {
	saved := GitCommit
	t.Cleanup(func() { GitCommit = saved })

	GitCommit = "0123456789abcdef"
	assert.Equal(t, Version+"-0123456", GetFullVersion())
}
