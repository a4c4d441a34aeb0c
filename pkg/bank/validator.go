package bank

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"digital.vasic.specs/pkg/version"
)

// ValidationError is one problem found in a bank file. Field is a
// path such as "groups[0].examples[2].it".
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var bankValidate *validator.Validate

func init() {
	bankValidate = validator.New()
	bankValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

// ValidateFile checks the bank at path and returns every problem
// found.
func ValidateFile(path string) []ValidationError {
	data, err := os.ReadFile(path)
	if err != nil {
		return []ValidationError{{Field: "file", Message: err.Error()}}
	}
	file, err := Decode(path, data)
	if err != nil {
		return []ValidationError{{Field: "document", Message: err.Error()}}
	}
	return validateBank(file)
}

func validateBank(file *BankFile) []ValidationError {
	var errs []ValidationError

	if err := bankValidate.Struct(file); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return []ValidationError{{Message: err.Error()}}
		}
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{
				Field:   fieldPath(fe.Namespace()),
				Message: tagMessage(fe),
			})
		}
	}

	checkGroups(file.Groups, "groups", &errs)
	return errs
}

// fieldPath drops the root type name from a validator namespace.
func fieldPath(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_without":
		return "is required unless the example is pending"
	case "min":
		return fmt.Sprintf("needs at least %s entries", fe.Param())
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}

// checkGroups reports duplicate labels and bad version ranges.
func checkGroups(groups []GroupDef, where string, errs *[]ValidationError) {
	seen := make(map[string]bool, len(groups))
	for i, g := range groups {
		at := fmt.Sprintf("%s[%d]", where, i)
		if g.Describe != "" {
			if seen[g.Describe] {
				*errs = append(*errs, ValidationError{
					Field:   at + ".describe",
					Message: fmt.Sprintf("duplicate group %q", g.Describe),
				})
			}
			seen[g.Describe] = true
		}
		checkRange(g.Version, at+".version", errs)

		examples := make(map[string]bool, len(g.Examples))
		for j, ex := range g.Examples {
			exAt := fmt.Sprintf("%s.examples[%d]", at, j)
			if ex.It != "" {
				if examples[ex.It] {
					*errs = append(*errs, ValidationError{
						Field:   exAt + ".it",
						Message: fmt.Sprintf("duplicate example %q", ex.It),
					})
				}
				examples[ex.It] = true
			}
			checkRange(ex.Version, exAt+".version", errs)
			if ex.Pending == "" && ex.Expect != nil && ex.Expect.Type == "" {
				*errs = append(*errs, ValidationError{
					Field:   exAt + ".expect.matcher",
					Message: "is required",
				})
			}
		}

		checkGroups(g.Groups, at+".groups", errs)
	}
}

func checkRange(expr, field string, errs *[]ValidationError) {
	if expr == "" {
		return
	}
	if _, err := version.ParseRange(expr); err != nil {
		*errs = append(*errs, ValidationError{Field: field, Message: err.Error()})
	}
}

func joinErrors(errs []ValidationError) string {
	parts := make([]string, len(errs))
	for i, e := range errs {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}
