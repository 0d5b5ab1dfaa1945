package core

// errors.go defines the conversion error taxonomy and its mapping to
// user-facing messages.
//
// Three failure classes exist:
//
//   - SourceError: the input file is missing, unreadable, or not decodable
//     as text. Nothing has been written when this surfaces.
//   - DestError: the output path cannot be written (permissions, missing
//     parent directory, disk full). The destination must be treated as
//     invalid or absent.
//   - xlsx.ErrStringNotPooled: a writer-side contract violation that should
//     never happen with grids produced by the parser; it is surfaced as-is
//     rather than masked.
//
// No conversion failure is ever swallowed: Convert returns the first error
// encountered and performs no retries.

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mkarlsen/convertd/internal/xlsx"
)

// SourceError wraps a failure to read the conversion input.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("read source %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// DestError wraps a failure to write the conversion output.
type DestError struct {
	Path string
	Err  error
}

func (e *DestError) Error() string {
	return fmt.Sprintf("write destination %s: %v", e.Path, e.Err)
}

func (e *DestError) Unwrap() error { return e.Err }

// UserMessage is the user-facing rendering of a technical error.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Stable code for support reference
}

// errorPattern maps a case-insensitive substring of the technical error to
// a user message. The first matching pattern wins, so specific patterns
// come before general ones.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "The input file could not be found",
			Action:  "Check the file path and try again",
			Code:    "SRC001",
		},
	},
	{
		pattern: "permission denied",
		msg: UserMessage{
			Message: "The file could not be accessed",
			Action:  "Check file permissions",
			Code:    "SRC002",
		},
	},
	{
		pattern: "token too long",
		msg: UserMessage{
			Message: "The input does not look like delimited text",
			Action:  "Verify the file is a plain-text export",
			Code:    "SRC003",
		},
	},
	{
		pattern: "no space left",
		msg: UserMessage{
			Message: "The output could not be written: disk is full",
			Action:  "Free up disk space and retry",
			Code:    "DST001",
		},
	},
	{
		pattern: "shared string pool",
		msg: UserMessage{
			Message: "The converter produced inconsistent data",
			Action:  "Retry the conversion; report if it persists",
			Code:    "ENC001",
		},
	},
	{
		pattern: "too many concurrent conversions",
		msg: UserMessage{
			Message: "The server is busy converting other files",
			Action:  "Try again in a few moments",
			Code:    "BUSY001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "The conversion failed unexpectedly",
	Action:  "Retry; contact support with the error code if it persists",
	Code:    "GEN001",
}

// MapError converts a technical error to a user-friendly message.
// Substring patterns are checked first, then the typed error classes.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	var srcErr *SourceError
	if errors.As(err, &srcErr) {
		return UserMessage{
			Message: "The input file could not be read",
			Action:  "Check that the file exists and is readable",
			Code:    "SRC000",
		}
	}
	var dstErr *DestError
	if errors.As(err, &dstErr) {
		return UserMessage{
			Message: "The output file could not be written",
			Action:  "Check the destination directory and permissions",
			Code:    "DST000",
		}
	}
	if errors.Is(err, xlsx.ErrStringNotPooled) {
		return UserMessage{
			Message: "The converter produced inconsistent data",
			Action:  "Retry the conversion; report if it persists",
			Code:    "ENC001",
		}
	}

	return defaultMessage
}

// FormatUserError renders a MapError result as a single display string:
// "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
