// Package config loads typed configuration structs from the environment,
// backed by Viper. Loaded configs are plain values, ready to be registered as
// services in an inject.Registry.
package config

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/bvaillant/stunt/option"
	"github.com/spf13/viper"
)

type (
	// Options holds the loading options.
	Options struct {
		prefix string
	}

	// WithDefault lets a config struct fill in defaults for fields the
	// environment left unset.
	WithDefault interface {
		ApplyDefault()
	}
)

// WithEnvPrefix prefixes every environment variable lookup, e.g. a prefix
// "APP" binds field Port to APP_PORT.
func WithEnvPrefix(prefix string) option.Option[Options] {
	return func(opts *Options) {
		opts.prefix = prefix
	}
}

// Load builds a T from environment variables. Nested structs map to
// underscore-joined variable names, field names are converted to
// SCREAMING_SNAKE_CASE. Nil struct pointers are allocated, and every struct
// implementing WithDefault gets ApplyDefault called after unmarshalling.
func Load[T any](opts ...option.Option[Options]) (*T, error) {
	options := option.Build(&Options{}, opts...)

	v := viper.New()
	v.SetEnvPrefix(options.prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg T
	bindEnvs(v, options.prefix, reflect.TypeOf(cfg))

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}

	applyDefaults(reflect.ValueOf(&cfg))

	return &cfg, nil
}

func bindEnvs(v *viper.Viper, envPrefix string, typ reflect.Type, parts ...string) {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name, tagged := field.Tag.Lookup("mapstructure")
		if !tagged {
			name = field.Name
		}

		switch field.Type.Kind() {
		case reflect.Struct:
			bindEnvs(v, envPrefix, field.Type, append(parts, name)...)
		case reflect.Pointer:
			if field.Type.Elem().Kind() == reflect.Struct {
				bindEnvs(v, envPrefix, field.Type.Elem(), append(parts, name)...)
			}
		default:
			key := strings.Join(append(parts, name), ".")
			envSuffix := strings.Join(append(parts, toScreamingSnakeCase(name)), "_")
			_ = v.BindEnv(key, mergeWithEnvPrefix(envPrefix, envSuffix))
		}
	}
}

func mergeWithEnvPrefix(envPrefix string, in string) string {
	if envPrefix != "" {
		return strings.ToUpper(envPrefix + "_" + in)
	}
	return strings.ToUpper(in)
}

// applyDefaults walks the struct depth-first, allocating nil struct pointers
// and calling ApplyDefault on every addressable struct implementing WithDefault.
func applyDefaults(val reflect.Value) {
	if val.Kind() != reflect.Pointer || val.Elem().Kind() != reflect.Struct {
		return
	}

	elem := val.Elem()
	for i := 0; i < elem.NumField(); i++ {
		field := elem.Field(i)
		switch field.Kind() {
		case reflect.Struct:
			if field.CanAddr() {
				applyDefaults(field.Addr())
			}
		case reflect.Pointer:
			if field.Type().Elem().Kind() == reflect.Struct && field.CanSet() {
				if field.IsNil() {
					field.Set(reflect.New(field.Type().Elem()))
				}
				applyDefaults(field)
			}
		}
	}

	if withDefault, ok := val.Interface().(WithDefault); ok {
		withDefault.ApplyDefault()
	}
}

func toScreamingSnakeCase(in string) string {
	var b strings.Builder
	for i, r := range in {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteRune('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
