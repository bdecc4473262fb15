package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is a package-level singleton; constructing a validator is
// expensive and the instance caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the definition's structural requirements (required
// metadata, parameter locations, response descriptions) before any schema
// resolution or generation happens.
func (d *Definition) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("definition validation failed: %w", err)
	}

	lines := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		lines = append(lines, fmt.Sprintf("%s: failed %q", fieldPath(fe), fe.Tag()))
	}
	return fmt.Errorf("invalid definition:\n  %s", strings.Join(lines, "\n  "))
}

// fieldPath trims the root struct name from the validator namespace so
// messages read like the file layout ("Paths[0].Method" not
// "Definition.Paths[0].Method").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
