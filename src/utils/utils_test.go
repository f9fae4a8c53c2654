package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrDefault(t *testing.T) {
	assert.Equal(t, 5, OrDefault(0, 5))
	assert.Equal(t, 3, OrDefault(3, 5))
	assert.Equal(t, "default", OrDefault("", "default"))
	assert.Equal(t, "value", OrDefault("value", "default"))
}

func TestRecoverPanicAsError(t *testing.T) {
	sentinel := errors.New("oh no")

	panicky := func() (err error) {
		defer RecoverPanicAsError(&err)
		panic(sentinel)
	}
	err := panicky()
	assert.True(t, errors.Is(err, sentinel))

	panickyValue := func() (err error) {
		defer RecoverPanicAsError(&err)
		panic("just a string")
	}
	err = panickyValue()
	assert.Error(t, err)

	calm := func() (err error) {
		defer RecoverPanicAsError(&err)
		return nil
	}
	assert.NoError(t, calm())
}
