package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	assert.Equal(t, "bangalore_india", Slug("Bangalore, India"))
	assert.Equal(t, "s_o_paulo", Slug("São Paulo"))
	assert.Equal(t, "test_place", Slug("Test Place"))
	assert.Equal(t, "graph", Slug("  "))
}
