package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("wmoUnit:degF", "degf"))
	assert.True(t, ContainsFold("10 MPH", "km/h", "mph"))
	assert.False(t, ContainsFold("wmoUnit:km_h-1", "mph", "kt"))
	assert.False(t, ContainsFold("anything", ""))
	assert.False(t, ContainsFold("anything"))
}
