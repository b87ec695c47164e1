package errors

import stderrors "errors"

// As and Is forward to the standard library so callers importing this
// package do not need a second alias.
func As(err error, target any) bool { return stderrors.As(err, target) }

func Is(err, target error) bool { return stderrors.Is(err, target) }

// CodeOf returns the code of the first coded error in the chain, or "".
func CodeOf(err error) ErrorCode {
	var coded Coded
	if As(err, &coded) {
		return coded.Code()
	}
	return ""
}
