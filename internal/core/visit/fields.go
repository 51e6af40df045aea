package visit

import (
	"bytes"
	"encoding/json"

	perr "gaexport/internal/platform/errors"
)

// join builds dotted input paths for error messages, e.g. hits[0].page.hostname
func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// field returns obj[key] or a missing field error naming the full path
func field(obj Input, path, key string) (json.RawMessage, error) {
	v, ok := obj[key]
	if !ok {
		p := join(path, key)
		return nil, perr.MissingFieldf(p, "missing key %q", p)
	}
	return v, nil
}

// nested reads obj[parent][key], requiring parent to be an object
func nested(obj Input, path, parent, key string) (json.RawMessage, error) {
	raw, err := field(obj, path, parent)
	if err != nil {
		return nil, err
	}
	pp := join(path, parent)
	inner, err := object(raw, pp)
	if err != nil {
		return nil, err
	}
	return field(inner, pp, key)
}

func intField(obj Input, path, key string) (int64, error) {
	raw, err := field(obj, path, key)
	if err != nil {
		return 0, err
	}
	return Int(raw, join(path, key))
}

func object(raw json.RawMessage, path string) (Input, error) {
	if kind(raw) != '{' {
		return nil, perr.MissingFieldf(path, "%s: expected an object, got %s", path, describe(raw))
	}
	var obj Input
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, perr.WithField(perr.Wrapf(err, perr.ErrorCodeJSON, "%s: decode object", path), path)
	}
	return obj, nil
}

func array(raw json.RawMessage, path string) ([]json.RawMessage, error) {
	if kind(raw) != '[' {
		return nil, perr.MissingFieldf(path, "%s: expected an array, got %s", path, describe(raw))
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, perr.WithField(perr.Wrapf(err, perr.ErrorCodeJSON, "%s: decode array", path), path)
	}
	return items, nil
}

// kind returns the first significant byte of a raw JSON value
func kind(raw json.RawMessage) byte {
	t := bytes.TrimLeft(raw, " \t\r\n")
	if len(t) == 0 {
		return 0
	}
	return t[0]
}

func describe(raw json.RawMessage) string {
	switch k := kind(raw); {
	case k == '{':
		return "object"
	case k == '[':
		return "array"
	case k == '"':
		return "string"
	case k == 't' || k == 'f':
		return "boolean"
	case k == 'n':
		return "null"
	case k == '-' || (k >= '0' && k <= '9'):
		return "number"
	default:
		return "nothing"
	}
}
