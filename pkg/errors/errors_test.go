package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("score: %w", NewDegenerateDistributionError("monetary"))

	assert.True(t, HasCode(err, ErrCodeDegenerateDistribution))
	assert.False(t, HasCode(err, ErrCodeUnmatchedSegment))
	assert.Equal(t, ErrCodeDegenerateDistribution, CodeOf(err))
}

func TestHasCode_PlainError(t *testing.T) {
	assert.False(t, HasCode(io.EOF, ErrCodeLoadFailed))
	assert.Equal(t, ErrorCode(""), CodeOf(io.EOF))
}

func TestStandardError_UnwrapsCause(t *testing.T) {
	err := NewLoadFailedError("flo.csv", io.ErrUnexpectedEOF)

	assert.True(t, stderrors.Is(err, io.ErrUnexpectedEOF))
	assert.Contains(t, err.Error(), "LOAD_FAILED")
	assert.Contains(t, err.Error(), "flo.csv")
}

func TestNewInvalidDateError_Metadata(t *testing.T) {
	err := NewInvalidDateError(3, "cc294636", "last_order_date", "2021-13-40")

	assert.Equal(t, ErrCodeInvalidDate, err.Code)
	assert.Equal(t, 3, err.Metadata["row"])
	assert.Equal(t, "last_order_date", err.Metadata["column"])
	assert.Contains(t, err.Details, `"2021-13-40"`)
}
