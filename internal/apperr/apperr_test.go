package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsMatchThroughWrapping(t *testing.T) {
	nf := fmt.Errorf("load: %w", NotFound("asset", 7))
	assert.True(t, errors.Is(nf, ErrNotFound))
	assert.False(t, errors.Is(nf, ErrPrecondition))
	assert.Equal(t, "load: asset 7 not found", nf.Error())

	var typed *NotFoundError
	assert.True(t, errors.As(nf, &typed))
	assert.Equal(t, "asset", typed.Entity)

	pc := Precondition("asset is not archived")
	assert.True(t, errors.Is(pc, ErrPrecondition))
	assert.Equal(t, "asset is not archived", pc.Error())

	inv := Invalid("limit %d out of range", 500)
	assert.True(t, errors.Is(inv, ErrInvalid))
}
