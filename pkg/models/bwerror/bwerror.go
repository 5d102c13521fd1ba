package bwerror

import (
	"errors"
	"fmt"
)

const (
	BW_UNEXPECTED           = "BWUNX"
	BW_CONCURRENCY_CONFLICT = "BWCON"
	BW_WRITE_FAILED         = "BWWRF"
	BW_CHANNEL_ERROR        = "BWCHN"
	BW_RANGE_OVERFLOW       = "BWOVF"
	BW_PROTOCOL_VIOLATION   = "BWPCV"
	BW_SEQUENCE_ERROR       = "BWSEQ"
	BW_NO_GENERATOR         = "BWNGN"
	BW_CONFIG_ERROR         = "BWCFG"
	BW_PROPAGATION_ERROR    = "BWPRP"
	BW_BATCH_ALREADY_SEALED = "BWSLD"
	BW_INVALID_NAME         = "BWQNM"
	BW_TOO_MANY_PARAMETERS  = "BWTMP"
)

var existingErrorCodeMap = map[string]string{
	BW_CONCURRENCY_CONFLICT: "ConcurrencyConflict",
	BW_WRITE_FAILED:         "WriteFailed",
	BW_CHANNEL_ERROR:        "ChannelError",
	BW_RANGE_OVERFLOW:       "RangeOverflow",
	BW_PROTOCOL_VIOLATION:   "ProtocolContractViolation",
	BW_SEQUENCE_ERROR:       "Sequence error",
	BW_NO_GENERATOR:         "No value generator",
	BW_CONFIG_ERROR:         "Configuration error",
	BW_PROPAGATION_ERROR:    "Result propagation error",
	BW_BATCH_ALREADY_SEALED: "Batch is sealed",
	BW_INVALID_NAME:         "Invalid qualified name",
	BW_TOO_MANY_PARAMETERS:  "Too many statement parameters",
}

// GetMessageByCode returns the short name of an error code.
func GetMessageByCode(errorCode string) string {
	rep, ok := existingErrorCodeMap[errorCode]
	if ok {
		return rep
	}
	return "Unexpected error"
}

var _ error = &BwError{}

// BwError is a coded error that is not part of the typed taxonomy below.
type BwError struct {
	Err       error
	ErrorCode string
}

func New(errorCode string, errorMsg string) *BwError {
	return &BwError{
		Err:       errors.New(errorMsg),
		ErrorCode: errorCode,
	}
}

func Newf(errorCode string, format string, a ...any) *BwError {
	return &BwError{
		Err:       fmt.Errorf(format, a...),
		ErrorCode: errorCode,
	}
}

func (er *BwError) Error() string {
	return fmt.Sprintf("Code: %s. Name: %s. Description: %s.",
		er.ErrorCode, GetMessageByCode(er.ErrorCode), er.Err)
}

func (er *BwError) Unwrap() error {
	return er.Err
}

// HasCode reports whether err, or anything it wraps, carries the given code.
func HasCode(err error, code string) bool {
	for err != nil {
		switch e := err.(type) {
		case *BwError:
			if e.ErrorCode == code {
				return true
			}
		case interface{ Code() string }:
			if e.Code() == code {
				return true
			}
		}
		err = errors.Unwrap(err)
	}
	return false
}
