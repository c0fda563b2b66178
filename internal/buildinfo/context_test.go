package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserAgentSuffix(t *testing.T) {
	assert.Equal(t, "sxcat-go/"+Version, UserAgentSuffix())
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, BuildDate)
}
