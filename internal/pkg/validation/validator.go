package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/Azechum30/npresec-app/internal/pkg/auth"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags
	notBlankTag       = "notblank"
	deptCodeTag       = "deptcode"
	phoneTag          = "phone"
	strongPasswordTag = "strongpassword"

	deptCodePattern = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9]{9,15}$`)
	phoneSeparators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")

	installOnce sync.Once
)

func init() {
	Validate = validator.New()
	Validate.SetTagName("binding")

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = Validate.RegisterValidation(notBlankTag, notBlankValidation)
	_ = Validate.RegisterValidation(deptCodeTag, deptCodeValidation)
	_ = Validate.RegisterValidation(phoneTag, phoneValidation)
	_ = Validate.RegisterValidation(strongPasswordTag, strongPasswordValidation)

	registerCustomValidationsTranslations(notBlankTag, deptCodeTag, phoneTag, strongPasswordTag)
}

// registerCustomValidationsTranslations registers error messages for the custom tags.
// The default translations are already registered, so a noop register func is passed.
func registerCustomValidationsTranslations(tags ...string) {
	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range tags {
		_ = Validate.RegisterTranslation(tag, Translator, registerFn, translateCustomValidationErrs)
	}
}

func translateCustomValidationErrs(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return fe.Field() + " cannot be blank"
	case deptCodeTag:
		return fe.Field() + " must be 2-10 uppercase letters or digits"
	case phoneTag:
		return fe.Field() + " must be a valid phone number"
	case strongPasswordTag:
		return fe.Field() + strings.TrimPrefix(auth.PasswordPolicyMessage, "password")
	default:
		return ""
	}
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

func deptCodeValidation(fl validator.FieldLevel) bool {
	return deptCodePattern.MatchString(fl.Field().String())
}

func phoneValidation(fl validator.FieldLevel) bool {
	return IsPhone(fl.Field().String())
}

func strongPasswordValidation(fl validator.FieldLevel) bool {
	return auth.PasswordMeetsPolicy(fl.Field().String())
}

// IsPhone accepts 9-15 digits with an optional leading +, ignoring spaces, dashes and parentheses
func IsPhone(s string) bool {
	return phonePattern.MatchString(phoneSeparators.Replace(strings.TrimSpace(s)))
}

// Struct validates s against its binding tags
func Struct(s interface{}) error {
	return Validate.Struct(s)
}

// TranslateErrors turns validator errors into field => message.
// ok is false when err carries no field errors.
func TranslateErrors(err error) (fields map[string]string, ok bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	fields = make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Translate(Translator)
	}
	return fields, true
}

type ginValidator struct{}

// ValidateStruct mirrors gin's default validator for pointers, structs and slices
func (ginValidator) ValidateStruct(obj interface{}) error {
	if obj == nil {
		return nil
	}

	value := reflect.ValueOf(obj)
	switch value.Kind() {
	case reflect.Ptr:
		if value.IsNil() {
			return nil
		}
		return ginValidator{}.ValidateStruct(value.Elem().Interface())
	case reflect.Struct:
		return Validate.Struct(obj)
	case reflect.Slice, reflect.Array:
		for i := 0; i < value.Len(); i++ {
			if err := (ginValidator{}).ValidateStruct(value.Index(i).Interface()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (ginValidator) Engine() interface{} {
	return Validate
}

// InstallGinValidator makes gin's ShouldBind* use this package's validator
func InstallGinValidator() {
	installOnce.Do(func() {
		binding.Validator = ginValidator{}
	})
}
