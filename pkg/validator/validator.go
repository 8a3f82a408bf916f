package validator

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

// Validator provides validation functionality
type Validator interface {
	Validate(interface{}) error
}

type validator struct {
	v *playground.Validate
}

// New returns a validator reading the same "binding" tags gin uses, with the
// custom rules from Register installed.
func New() Validator {
	v := playground.New()
	v.SetTagName("binding")
	Register(v)
	return &validator{v: v}
}

func (v *validator) Validate(obj interface{}) error {
	if err := v.v.Struct(obj); err != nil {
		return Humanize(err)
	}
	return nil
}

// Register installs the custom rules:
//
//	notblank  string with at least one non-space character
//	isodate   empty or YYYY-MM-DD
func Register(v *playground.Validate) {
	_ = v.RegisterValidation("notblank", func(fl playground.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("isodate", func(fl playground.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := time.Parse(dateLayout, s)
		return err == nil
	})
}

var ginOnce sync.Once

// RegisterGin installs the custom rules on gin's binding validator so
// ShouldBind understands them. Safe to call more than once.
func RegisterGin() {
	ginOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*playground.Validate); ok {
			Register(v)
		}
	})
}

// Humanize turns validation errors into one readable message. Other errors
// are returned unchanged.
func Humanize(err error) error {
	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe playground.FieldError) string {
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required", "notblank":
		return fmt.Sprintf("%s is required", field)
	case "isodate":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "max":
		return fmt.Sprintf("%s must not exceed %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
