package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnquote(t *testing.T) {
	assert.Equal(t, "001", Unquote(` "001" `))
	assert.Equal(t, `a"b`, Unquote(`a"b`))
}

func TestNormalizeSpaces(t *testing.T) {
	assert.Equal(t, "Jamón serrano", NormalizeSpaces("  Jamón \t serrano\n"))
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("JAMÓN Serrano", "jamón"))
	assert.True(t, ContainsFold("x", ""))
	assert.False(t, ContainsFold("Lomo", "jamón"))
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", FirstNonEmpty("", "  ", "b", "c"))
	assert.Empty(t, FirstNonEmpty())
}
