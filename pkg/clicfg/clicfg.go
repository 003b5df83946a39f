// Package clicfg copies cli flag values into a config struct by `flag`
// tags, so commands deal with one typed struct instead of string lookups.
package clicfg

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/urfave/cli/v3"
)

var ErrCannotParseFlags = errors.New("cannot parse flags")

// ParseFlags fills s (a pointer to struct) from c. Fields without a
// `flag:"..."` tag are skipped.
func ParseFlags(c *cli.Command, s any) error {
	v := reflect.ValueOf(s)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: expected pointer to struct, got %T", ErrCannotParseFlags, s)
	}
	v = v.Elem()

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !fieldValue.CanSet() {
			continue
		}

		flagName := field.Tag.Get("flag")
		if flagName == "" {
			continue
		}

		switch field.Type.Kind() {
		case reflect.String:
			fieldValue.SetString(c.String(flagName))
		case reflect.Bool:
			fieldValue.SetBool(c.Bool(flagName))
		case reflect.Int, reflect.Int64:
			fieldValue.SetInt(int64(c.Int(flagName)))
		default:
			return fmt.Errorf("%w: unsupported field type %s for flag %q", ErrCannotParseFlags, field.Type.Kind(), flagName)
		}
	}

	return nil
}
