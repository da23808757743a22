package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errNotList = errors.New("expected a JSON array")

// encodeJSON renders v the way every artifact is written: four-space
// indentation and no HTML escaping
func encodeJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeList reads a JSON array of arbitrary elements. Valid JSON of any
// other shape, null included, returns errNotList; anything else is a syntax
// error.
func decodeList(data []byte) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, errNotList
		}
		return nil, err
	}
	if items == nil {
		return nil, errNotList
	}
	return items, nil
}
