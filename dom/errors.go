package dom

import (
	"fmt"

	"github.com/pkg/errors"
)

// ExceptionCode names the DOM exception a failed operation raises.
// https://webidl.spec.whatwg.org/#idl-DOMException-error-names
type ExceptionCode uint16

const (
	IndexSizeError ExceptionCode = iota + 1
	HierarchyRequestError
	WrongDocumentError
	InvalidStateError
	InvalidNodeTypeError
	NotFoundError
	NotSupportedError
	SyntaxError
	TypeError
)

var exceptionNames = map[ExceptionCode]string{
	IndexSizeError:        "IndexSizeError",
	HierarchyRequestError: "HierarchyRequestError",
	WrongDocumentError:    "WrongDocumentError",
	InvalidStateError:     "InvalidStateError",
	InvalidNodeTypeError:  "InvalidNodeTypeError",
	NotFoundError:         "NotFoundError",
	NotSupportedError:     "NotSupportedError",
	SyntaxError:           "SyntaxError",
	TypeError:             "TypeError",
}

func (c ExceptionCode) String() string {
	if name, ok := exceptionNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ExceptionCode(%d)", uint16(c))
}

// DOMException is the error value every fallible tree and range operation
// returns. It is always wrapped with a stack trace.
type DOMException struct {
	Code    ExceptionCode
	Message string
}

func (e *DOMException) Error() string {
	if e.Message == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Message
}

func newException(code ExceptionCode, format string, args ...interface{}) error {
	return errors.WithStack(&DOMException{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	})
}

// ExceptionCodeOf returns the exception code carried by err, or 0 when err
// is nil or not a DOM exception.
func ExceptionCodeOf(err error) ExceptionCode {
	if err == nil {
		return 0
	}
	if de, ok := errors.Cause(err).(*DOMException); ok {
		return de.Code
	}
	var de *DOMException
	if errors.As(err, &de) {
		return de.Code
	}
	return 0
}

// IsException reports whether err is a DOM exception with the given code.
func IsException(err error, code ExceptionCode) bool {
	return ExceptionCodeOf(err) == code
}

// NewException returns a DOM exception with a stack trace, for packages
// that build on the tree and must report the same error kinds.
func NewException(code ExceptionCode, format string, args ...interface{}) error {
	return newException(code, format, args...)
}
