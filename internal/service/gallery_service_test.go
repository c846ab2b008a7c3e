package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEAN(t *testing.T) {
	assert.NoError(t, validateEAN("4012345678901"))
	assert.Error(t, validateEAN("401234567890"), "too short")
	assert.Error(t, validateEAN("40123456789012"), "too long")
	assert.Error(t, validateEAN("40123456789ab"))
	assert.Error(t, validateEAN(""))
}
