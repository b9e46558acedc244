package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, VerifyPassword(hash, "hunter2hunter2"))
	assert.False(t, VerifyPassword(hash, "hunter2hunter3"))
	assert.False(t, VerifyPassword("not-a-bcrypt-hash", "hunter2hunter2"))
}

func TestPasswordHashesAreSalted(t *testing.T) {
	a, err := HashPassword("same-password", 4)
	require.NoError(t, err)
	b, err := HashPassword("same-password", 4)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
