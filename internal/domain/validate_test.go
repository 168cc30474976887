package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidName(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidName("John Doe"))
	assert.True(t, IsValidName("  John   Doe "))
	assert.True(t, IsValidName("Maria da Silva"))
	assert.True(t, IsValidName("João Conceição"))

	assert.False(t, IsValidName("John"))
	assert.False(t, IsValidName(""))
	assert.False(t, IsValidName("John D0e"))
	assert.False(t, IsValidName("John-Doe"))
}

func TestIsValidEmail(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidEmail("john.doe@gmail.com"))
	assert.True(t, IsValidEmail("john.doe0.123@gmail.com"))

	assert.False(t, IsValidEmail("john.doe"))
	assert.False(t, IsValidEmail("@gmail.com"))
	assert.False(t, IsValidEmail("john.doe@"))
	assert.False(t, IsValidEmail("john@doe@gmail.com"))
	assert.False(t, IsValidEmail("john doe@gmail.com"))
}

func TestIsValidCarPlate(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidCarPlate("AAA9999"))

	assert.False(t, IsValidCarPlate("AAA999"))
	assert.False(t, IsValidCarPlate("aaa9999"))
	assert.False(t, IsValidCarPlate("AAA99999"))
	assert.False(t, IsValidCarPlate("XAAA9999"))
	assert.False(t, IsValidCarPlate(""))
}

func TestRideStatus_IsActive(t *testing.T) {
	t.Parallel()

	assert.True(t, RideStatusRequested.IsActive())
	assert.True(t, RideStatusCancelled.IsActive())
	assert.False(t, RideStatusCompleted.IsActive())
	assert.False(t, RideStatus("unknown").IsValid())
}
