package contracts

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy_As(t *testing.T) {
	var err error = fmt.Errorf("assemble: %w", &EmptyWindowError{WindowID: 4, Slice: "val"})

	var ew *EmptyWindowError
	assert.True(t, errors.As(err, &ew))
	assert.Equal(t, 4, ew.WindowID)

	var id *InsufficientDataError
	assert.False(t, errors.As(err, &id))
}

func TestModelFitError_Unwrap(t *testing.T) {
	cause := errors.New("loss diverged")
	err := &ModelFitError{Modality: ModalityNews, Cause: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "news")
}

func TestLeakageViolationError_Message(t *testing.T) {
	err := &LeakageViolationError{
		Detail:   "label past test boundary",
		Date:     date(2024, 3, 2),
		Boundary: date(2024, 3, 1),
	}
	assert.Contains(t, err.Error(), "2024-03-02")
	assert.Contains(t, err.Error(), "2024-03-01")
}
