package draft

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownField is returned by Patch for a field the form does not have.
var ErrUnknownField = errors.New("unknown form field")

// Patch sets the dotted JSON field `field` (e.g. "father.name") of the struct
// pointed to by `v`. String fields take the first of `values` (or ""), string
// list fields take all of them. Nested objects cannot be replaced wholesale.
func Patch(v interface{}, field string, values []string) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "marshalling form")
	}
	var doc map[string]interface{}
	if err = json.Unmarshal(raw, &doc); err != nil {
		return errors.Wrap(err, "unmarshalling form")
	}

	parts := strings.Split(field, ".")
	node := doc
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]interface{})
		if !ok {
			return errors.Wrap(ErrUnknownField, field)
		}
		node = child
	}

	leaf := parts[len(parts)-1]
	switch node[leaf].(type) {
	case string:
		var val string
		if len(values) > 0 {
			val = values[0]
		}
		node[leaf] = val
	case []interface{}, nil:
		if _, exists := node[leaf]; !exists {
			return errors.Wrap(ErrUnknownField, field)
		}
		list := make([]string, 0, len(values))
		for _, val := range values {
			if val != "" {
				list = append(list, val)
			}
		}
		node[leaf] = list
	default:
		return errors.Wrap(ErrUnknownField, field)
	}

	if raw, err = json.Marshal(doc); err != nil {
		return errors.Wrap(err, "marshalling patched form")
	}
	return errors.Wrap(json.Unmarshal(raw, v), "applying patch")
}
