package report

import "codeflow/internal/core/errors"

// UnsupportedFormatError reports an export format with no generator.
func UnsupportedFormatError(format string) error {
	return errors.AddContext(
		errors.New(errors.CodeNotSupported, "unsupported export format "+format),
		errors.CtxOperation, "export",
	)
}
