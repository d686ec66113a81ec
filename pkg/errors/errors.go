// Package errors provides the standardized fatal errors raised by the RFM pipeline.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeLoadFailed     ErrorCode = "LOAD_FAILED"
	ErrCodeSchemaMismatch ErrorCode = "SCHEMA_MISMATCH"

	ErrCodeInvalidDate         ErrorCode = "INVALID_DATE"
	ErrCodeInvalidAnalysisDate ErrorCode = "INVALID_ANALYSIS_DATE"
	ErrCodeDuplicateCustomer   ErrorCode = "DUPLICATE_CUSTOMER"

	ErrCodeInsufficientPopulation ErrorCode = "INSUFFICIENT_POPULATION"
	ErrCodeDegenerateDistribution ErrorCode = "DEGENERATE_DISTRIBUTION"
	ErrCodeUnmatchedSegment       ErrorCode = "UNMATCHED_SEGMENT"

	ErrCodeUnknownSelection ErrorCode = "UNKNOWN_SELECTION"
	ErrCodeExportFailed     ErrorCode = "EXPORT_FAILED"
	ErrCodeInvalidConfig    ErrorCode = "INVALID_CONFIG"
)

// StandardError represents a structured pipeline error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Err       error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Err
}

// HasCode reports whether err carries a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code == code
	}
	return false
}

// CodeOf returns the code of the first StandardError in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return ""
}

func newError(code ErrorCode, message, details string, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		Err:       cause,
	}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewLoadFailedError wraps an I/O or driver failure while reading purchase records.
func NewLoadFailedError(source string, err error) *StandardError {
	return newError(ErrCodeLoadFailed, "Failed to load purchase records", fmt.Sprintf("source: %s: %v", source, err), err)
}

// NewSchemaMismatchError reports an input whose columns or field types differ from the expected layout.
func NewSchemaMismatchError(details string) *StandardError {
	return newError(ErrCodeSchemaMismatch, "Input schema mismatch", details, nil)
}

// NewInvalidDateError reports an unparsable date; the whole run is aborted.
func NewInvalidDateError(row int, customerID, column, value string) *StandardError {
	e := newError(ErrCodeInvalidDate, "Unparsable date field",
		fmt.Sprintf("row %d customer %s column %s value %q", row, customerID, column, value), nil)
	e.Metadata = map[string]interface{}{
		"row":        row,
		"customerId": customerID,
		"column":     column,
	}
	return e
}

// NewInvalidAnalysisDateError reports an analysis date that precedes a purchase.
func NewInvalidAnalysisDateError(details string) *StandardError {
	return newError(ErrCodeInvalidAnalysisDate, "Analysis date precedes observed purchases", details, nil)
}

// NewDuplicateCustomerError reports a customer id seen twice under strict aggregation.
func NewDuplicateCustomerError(customerID string) *StandardError {
	return newError(ErrCodeDuplicateCustomer, "Customer appears on more than one record", fmt.Sprintf("master_id: %s", customerID), nil)
}

// NewInsufficientPopulationError reports a population too small to split into quintiles.
func NewInsufficientPopulationError(size int) *StandardError {
	return newError(ErrCodeInsufficientPopulation, "Population too small for quintile binning",
		fmt.Sprintf("customers: %d, required: 5", size), nil)
}

// NewDegenerateDistributionError reports a metric with a single distinct value.
func NewDegenerateDistributionError(metric string) *StandardError {
	return newError(ErrCodeDegenerateDistribution, "Metric has a single distinct value across the population",
		fmt.Sprintf("metric: %s", metric), nil)
}

// NewUnmatchedSegmentError reports a composite code no segment rule covers.
func NewUnmatchedSegmentError(code string) *StandardError {
	return newError(ErrCodeUnmatchedSegment, "No segment rule matches composite code", fmt.Sprintf("code: %s", code), nil)
}

// NewUnknownSelectionError reports a selection rule name that is not registered.
func NewUnknownSelectionError(name string) *StandardError {
	return newError(ErrCodeUnknownSelection, "Unknown selection rule", fmt.Sprintf("rule: %s", name), nil)
}

// NewExportFailedError wraps a sink write failure.
func NewExportFailedError(sink string, err error) *StandardError {
	return newError(ErrCodeExportFailed, "Failed to export customer ids", fmt.Sprintf("sink: %s: %v", sink, err), err)
}

// NewInvalidConfigError reports an invalid configuration value.
func NewInvalidConfigError(details string) *StandardError {
	return newError(ErrCodeInvalidConfig, "Invalid configuration", details, nil)
}
