package config

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// AttributeMap is a loosely typed set of configuration values, as read from a JSON or YAML document.
type AttributeMap map[string]interface{}

// Has returns whether the key is present.
func (am AttributeMap) Has(name string) bool {
	_, has := am[name]
	return has
}

// Bool returns a boolean value, or def if the key is missing. It panics if the value isn't a boolean.
func (am AttributeMap) Bool(name string, def bool) bool {
	x, has := am[name]
	if !has {
		return def
	}
	if v, ok := x.(bool); ok {
		return v
	}
	panic(fmt.Errorf("wanted a bool for (%s) but got (%v) %T", name, x, x))
}

// Float64 returns a float value, or def if the key is missing. Integers are converted. It panics for
// any other type.
func (am AttributeMap) Float64(name string, def float64) float64 {
	x, has := am[name]
	if !has {
		return def
	}
	switch v := x.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		panic(fmt.Errorf("wanted a float64 for (%s) but got (%v) %T", name, x, x))
	}
}

// Int returns an integer value, or def if the key is missing. It panics for non integer values.
func (am AttributeMap) Int(name string, def int) int {
	x, has := am[name]
	if !has {
		return def
	}
	switch v := x.(type) {
	case int:
		return v
	case float64:
		// json numbers decode as float64
		if v == float64(int(v)) {
			return int(v)
		}
	}
	panic(fmt.Errorf("wanted an int for (%s) but got (%v) %T", name, x, x))
}

// String returns a string value or the empty string if the key is missing.
func (am AttributeMap) String(name string) string {
	x := am[name]
	if x == nil {
		return ""
	}
	if s, ok := x.(string); ok {
		return s
	}
	panic(fmt.Errorf("wanted a string for (%s) but got (%v) %T", name, x, x))
}

// TransformAttributeMap decodes an attribute map into a typed configuration. Fields are matched by
// their json tag. Keys the type doesn't know about are returned as unused.
func TransformAttributeMap[T any](attributes AttributeMap) (*T, []string, error) {
	out := new(T)
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := decoder.Decode(map[string]interface{}(attributes)); err != nil {
		return nil, nil, err
	}
	return out, md.Unused, nil
}
