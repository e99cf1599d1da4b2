package forms

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/ajg/form"
	"github.com/go-playground/validator/v10"
)

const maxBodySize = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// Report errors by 'form' tag name, the same name inputs have in templates
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		// skip if tag key says it should be ignored
		if name == "-" {
			return ""
		}
		return name
	})

	// Postgres rejects text that is not valid UTF-8
	_ = validate.RegisterValidation("utf8", func(fl validator.FieldLevel) bool {
		return utf8.ValidString(fl.Field().String())
	})
}

// Validation messages by input name
type Errors map[string]string

func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

type RegisterForm struct {
	Name     string `form:"name" validate:"utf8,min=1,max=50"`
	Email    string `form:"email" validate:"utf8,min=6,max=50"`
	Username string `form:"username" validate:"utf8,min=4,max=25"`
	Password string `form:"password" validate:"required,utf8,eqfield=Confirm"`
	Confirm  string `form:"confirm"`
}

type LoginForm struct {
	Username string `form:"username" validate:"utf8"`
	Password string `form:"password" validate:"utf8"`
}

type ArticleForm struct {
	Title string `form:"title" validate:"utf8,min=1,max=200"`
	Body  string `form:"body" validate:"utf8,min=30"`
}

// Decode urlencoded body into form and validate it
// Keys the form does not declare (submit buttons and alike) are skipped
// Returned error means the body is malformed, validation failures are reported with Errors only
func Bind[T any](w http.ResponseWriter, r *http.Request) (T, Errors, error) {
	var dst T

	decoder := form.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	decoder.IgnoreUnknownKeys(true)
	if err := decoder.Decode(&dst); err != nil {
		return dst, nil, fmt.Errorf("can't decode form. Err: %w", err)
	}

	return dst, Validate(dst), nil
}

// Validate form struct, nil if it is valid
func Validate(form any) Errors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return Errors{"": err.Error()}
	}

	result := make(Errors, len(errs))
	for _, fieldError := range errs {
		// First failed rule wins, like validator itself stops on it
		if result.Has(fieldError.Field()) {
			continue
		}
		result[fieldError.Field()] = message(fieldError)
	}

	return result
}

func message(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "This field is required."
	case "min":
		return fmt.Sprintf("Field must be at least %s characters long.", fieldError.Param())
	case "max":
		return fmt.Sprintf("Field cannot be longer than %s characters.", fieldError.Param())
	case "eqfield":
		return "Passwords do not match"
	case "utf8":
		return "Field contains invalid characters."
	default:
		return "Invalid value."
	}
}
