package lib

import "fmt"
import "strings"

// Settings map of configuration parameters. Keys are dotted names like
// "log.level", values are one of bool, string or a numeric type.
type Settings map[string]interface{}

// Section return a new settings object with parameters starting with
// `prefix`.
func (setts Settings) Section(prefix string) Settings {
	section := make(Settings)
	for key, value := range setts {
		if strings.HasPrefix(key, prefix) {
			section[key] = value
		}
	}
	return section
}

// Trim `prefix` from every parameter name.
func (setts Settings) Trim(prefix string) Settings {
	trimmed := make(Settings)
	for key, value := range setts {
		trimmed[strings.TrimPrefix(key, prefix)] = value
	}
	return trimmed
}

// Mixin override parameters in `setts` with each of `settings`, applied
// in order. Arguments can be Settings or map[string]interface{}, others
// are ignored.
func (setts Settings) Mixin(settings ...interface{}) Settings {
	for _, arg := range settings {
		var m map[string]interface{}
		switch cnf := arg.(type) {
		case Settings:
			m = cnf
		case map[string]interface{}:
			m = cnf
		}
		for key, value := range m {
			setts[key] = value
		}
	}
	return setts
}

// Bool return the boolean value for key.
func (setts Settings) Bool(key string) bool {
	value := setts.lookup(key)
	val, ok := value.(bool)
	if !ok {
		panicerr("settings %q not a bool: %T", key, value)
	}
	return val
}

// Int64 return the numeric value for key as int64.
func (setts Settings) Int64(key string) int64 {
	switch val := setts.lookup(key).(type) {
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int64:
		return val
	case uint:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		return int64(val)
	case float32:
		return int64(val)
	case float64:
		return int64(val)
	}
	panicerr("settings %q not a number: %T", key, setts[key])
	return 0
}

// Uint64 return the numeric value for key as uint64.
func (setts Settings) Uint64(key string) uint64 {
	n := setts.Int64(key)
	if n < 0 {
		panicerr("settings %q is negative: %v", key, n)
	}
	return uint64(n)
}

// String return the string value for key.
func (setts Settings) String(key string) string {
	value := setts.lookup(key)
	val, ok := value.(string)
	if !ok {
		panicerr("settings %q not a string: %T", key, value)
	}
	return val
}

func (setts Settings) lookup(key string) interface{} {
	value, ok := setts[key]
	if !ok {
		panicerr("missing settings %q", key)
	}
	return value
}

func panicerr(fmsg string, args ...interface{}) {
	panic(fmt.Errorf(fmsg, args...))
}
