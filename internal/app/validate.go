package app

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"quiz-assessment-service/internal/domain"
)

var validate = validator.New()

// validateInput runs struct-tag validation and reports the failing fields as
// a domain.ErrValidation.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.Validationf("%v", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fe.Namespace()+" must satisfy "+fe.Tag()+"="+fe.Param())
			continue
		}
		msgs = append(msgs, fe.Namespace()+" is "+fe.Tag())
	}
	return domain.Validationf("%s", strings.Join(msgs, "; "))
}
