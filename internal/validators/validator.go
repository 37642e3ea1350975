// Package validators wires go-playground/validator into echo and renders
// every failed rule as a readable message.
package validators

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/anonto42/inkwell/backend/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Lookup reports whether a record identified by value exists in the store.
type Lookup func(ctx context.Context, value interface{}) (bool, error)

// Normalizer is implemented by requests that trim or canonicalize input
// before the rules run.
type Normalizer interface {
	Normalize()
}

type Option func(cv *CustomValidator) error

// CustomValidator implements echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
	messages  map[string]string
}

var lookupTags = []string{"unique_username", "unique_email", "user_exists", "reaction_exists", "topic_exists"}

type lookupState struct {
	err error
}

type stateKey struct{}

var defaultMessages = map[string]string{
	"required":        "%s must not be empty",
	"email":           "%s must be a valid email",
	"url":             "%s must be a valid URL",
	"eqfield":         "%s must match %s",
	"oneof":           "%s must be one of: %s",
	"json_present":    "%s must not be empty",
	"unique_username": "Username already exists",
	"unique_email":    "Email already exists",
	"user_exists":     "User does not exist",
	"reaction_exists": "Reaction type does not exist",
	"topic_exists":    "Topic does not exist",
	"unique":          "%s must not contain duplicates",
}

// NewValidator builds the validator and applies opts. A rule that cannot be
// registered is a programming error and fails construction.
func NewValidator(opts ...Option) (*CustomValidator, error) {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})
	if err := v.RegisterValidation("json_present", validateJSONPresent); err != nil {
		return nil, errors.Wrap(err, "register json_present")
	}
	// lookup rules pass until a store-backed lookup is supplied
	for _, tag := range lookupTags {
		if err := v.RegisterValidation(tag, func(validator.FieldLevel) bool { return true }); err != nil {
			return nil, errors.Wrapf(err, "register %s", tag)
		}
	}

	cv := &CustomValidator{validator: v, messages: make(map[string]string, len(defaultMessages))}
	for tag, msg := range defaultMessages {
		cv.messages[tag] = msg
	}
	for _, opt := range opts {
		if err := opt(cv); err != nil {
			return nil, err
		}
	}
	return cv, nil
}

// WithUnique registers tag as failing when lookup finds an existing record.
func WithUnique(tag string, lookup Lookup) Option {
	return func(cv *CustomValidator) error {
		return errors.Wrapf(cv.validator.RegisterValidationCtx(tag, lookupRule(lookup, false)), "register %s", tag)
	}
}

// WithExists registers tag as failing when lookup finds nothing.
func WithExists(tag string, lookup Lookup) Option {
	return func(cv *CustomValidator) error {
		return errors.Wrapf(cv.validator.RegisterValidationCtx(tag, lookupRule(lookup, true)), "register %s", tag)
	}
}

// WithMessage overrides the message format for tag. The format receives the
// field name and, when present, the tag parameter.
func WithMessage(tag, format string) Option {
	return func(cv *CustomValidator) error {
		cv.messages[tag] = format
		return nil
	}
}

func lookupRule(lookup Lookup, wantExists bool) validator.FuncCtx {
	return func(ctx context.Context, fl validator.FieldLevel) bool {
		exists, err := lookup(ctx, fl.Field().Interface())
		if err != nil {
			// a store failure is reported once validation finishes
			if st, ok := ctx.Value(stateKey{}).(*lookupState); ok && st.err == nil {
				st.err = err
			}
			return true
		}
		return exists == wantExists
	}
}

func validateJSONPresent(fl validator.FieldLevel) bool {
	if fl.Field().Kind() != reflect.Slice {
		return false
	}
	raw := bytes.TrimSpace(fl.Field().Bytes())
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null")) && !bytes.Equal(raw, []byte(`""`))
}

// Validate runs the rules without a request context.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.ValidateCtx(context.Background(), i)
}

// ValidateCtx normalizes i and runs every rule, returning all failures in
// field order as a single validation error.
func (cv *CustomValidator) ValidateCtx(ctx context.Context, i interface{}) error {
	if n, ok := i.(Normalizer); ok {
		n.Normalize()
	}

	st := &lookupState{}
	err := cv.validator.StructCtx(context.WithValue(ctx, stateKey{}, st), i)
	if st.err != nil {
		return errs.Internal(errors.Wrap(st.err, "validation lookup"))
	}
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(err, "validate")
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, cv.message(fe))
	}
	return errs.Validation(msgs...)
}

func (cv *CustomValidator) message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "min", "max":
		return boundMessage(fe)
	case "eqfield":
		return fmt.Sprintf(cv.messages["eqfield"], field, lowerFirst(fe.Param()))
	}
	if format, ok := cv.messages[fe.Tag()]; ok {
		if strings.Count(format, "%s") == 2 {
			return fmt.Sprintf(format, field, fe.Param())
		}
		if strings.Contains(format, "%s") {
			return fmt.Sprintf(format, field)
		}
		return format
	}
	return fmt.Sprintf("%s is invalid", field)
}

func boundMessage(fe validator.FieldError) string {
	word := "at least"
	if fe.Tag() == "max" {
		word = "at most"
	}
	switch fe.Kind() {
	case reflect.String:
		return fmt.Sprintf("%s must be %s %s characters", fe.Field(), word, fe.Param())
	case reflect.Slice, reflect.Array, reflect.Map:
		return fmt.Sprintf("%s must contain %s %s items", fe.Field(), word, fe.Param())
	default:
		return fmt.Sprintf("%s must be %s %s", fe.Field(), word, fe.Param())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
