// Package shape serializes plain structured values to JSON text and
// rehydrates typed values from it.
//
// Deserialize is driven by a shape descriptor: any value whose dynamic type
// describes the wanted result. The text is parsed into a fresh value of that
// type, so the result carries the type's full method set without copying any
// data from the descriptor itself. Object complements the two with a JSON
// object that keeps key insertion order on both paths.
package shape

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// Serialize returns the canonical JSON text for v. Struct fields keep their
// declaration order; plain map keys get the encoder's sorted form — use
// Object where document order matters.
func Serialize(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("unable to serialize value: %w", err)
	}
	return string(data), nil
}

// Deserialize parses text into a fresh value of proto's dynamic type and
// returns it. Only the type of proto is consulted; its data fields are never
// read. A pointer descriptor yields a pointer result, a value descriptor a
// value result, so a typed nil like (*T)(nil) works as a descriptor.
func Deserialize(proto any, text string) (any, error) {
	t := reflect.TypeOf(proto)
	if t == nil {
		return nil, errors.New("nil shape descriptor")
	}
	wantPtr := t.Kind() == reflect.Pointer
	if wantPtr {
		t = t.Elem()
	}
	out := reflect.New(t)
	if err := json.Unmarshal([]byte(text), out.Interface()); err != nil {
		return nil, fmt.Errorf("unable to deserialize %s: %w", t, err)
	}
	if wantPtr {
		return out.Interface(), nil
	}
	return out.Elem().Interface(), nil
}
