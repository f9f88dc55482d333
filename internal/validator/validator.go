package validator

import (
	"maps"

	"github.com/garrettladley/fixit/internal/xerrors"
)

type Validator interface {
	// Validate returns field -> problem, or nil when the value is valid.
	Validate() map[string]string
}

// Validate collects the field errors of every v into one 422 error.
func Validate(vs ...Validator) *xerrors.Error {
	var fields map[string]string
	for _, v := range vs {
		errs := v.Validate()
		if len(errs) == 0 {
			continue
		}
		if fields == nil {
			fields = make(map[string]string, len(errs))
		}
		maps.Copy(fields, errs)
	}
	if fields == nil {
		return nil
	}
	return xerrors.Validation(fields)
}
