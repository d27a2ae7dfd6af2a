package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// lookupFunc resolves one environment variable
type lookupFunc func(key string) (string, bool)

// envTag is a parsed `env:"NAME[,duration]"` struct tag
type envTag struct {
	name     string
	duration bool
}

func parseEnvTag(tag string) envTag {
	name, opts, _ := strings.Cut(tag, ",")
	return envTag{name: strings.TrimSpace(name), duration: strings.TrimSpace(opts) == "duration"}
}

// applyEnv overrides tagged fields of cfg from the process environment
func applyEnv(cfg *Config) error {
	return overrideFromEnv(reflect.ValueOf(cfg).Elem(), os.LookupEnv)
}

// overrideFromEnv walks nested structs and sets every field whose env var is present.
// All malformed variables are reported together, each by name.
func overrideFromEnv(val reflect.Value, lookup lookupFunc) error {
	var errs []error
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if field.Kind() == reflect.Struct {
			if err := overrideFromEnv(field, lookup); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		tag := parseEnvTag(typ.Field(i).Tag.Get("env"))
		if tag.name == "" {
			continue
		}
		raw, ok := lookup(tag.name)
		if !ok {
			continue
		}
		if err := setFromEnv(field, tag, strings.TrimSpace(raw)); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", tag.name, err))
		}
	}
	return errors.Join(errs...)
}

func setFromEnv(field reflect.Value, tag envTag, value string) error {
	switch field.Kind() {
	case reflect.String:
		if tag.duration {
			if _, err := time.ParseDuration(value); err != nil {
				return fmt.Errorf("%q is not a duration such as 30s or 1h", value)
			}
		}
		field.SetString(value)
	case reflect.Int, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("%q is not an integer", value)
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%q is not a boolean", value)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", field.Kind())
	}
	return nil
}
