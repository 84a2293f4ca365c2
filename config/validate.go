package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// optionsValidate checks the struct tags of Options.
var optionsValidate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every invalid field at once, wrapped in ErrInvalidOption.
//
// Stage 1: per-field ranges and enumerations (struct tags).
// Stage 2: cross-field consistency.
func (o Options) Validate() error {
	if err := optionsValidate.Struct(o); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s=%v fails %q", fe.Field(), fe.Value(), fe.ActualTag()))
			}

			return fmt.Errorf("%w: %s", ErrInvalidOption, strings.Join(msgs, "; "))
		}

		return fmt.Errorf("%w: %v", ErrInvalidOption, err)
	}

	// Archives are only filled by the archive policy and only read by the
	// archive construction mode.
	if (o.Policy == PolicyArchive) != (o.Construction == ConstructionArchive) {
		return fmt.Errorf("%w: policy %q requires construction %q and vice versa",
			ErrInvalidOption, PolicyArchive, ConstructionArchive)
	}

	return nil
}
