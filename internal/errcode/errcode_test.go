package errcode

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFor(t *testing.T) {
	assert.Equal(t, OK, For(nil))
	assert.Equal(t, InvalidPayload, For(fmt.Errorf("decode: %w", ErrInvalidPayload)))
	assert.Equal(t, Timeout, For(fmt.Errorf("render: %w", context.DeadlineExceeded)))
	assert.Equal(t, SystemError, For(errors.New("boom")))
}
