package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

type Serializer interface {
	// ToPayload returns the JSON object for model, or nil when the model
	// has nothing to send.
	ToPayload(model any) (map[string]any, error)
	// FromJSON decodes data into target, which must be a non-nil pointer.
	FromJSON(data []byte, target any) error
}

// DeserializationError reports a response body that is not valid JSON or
// does not fit the expected shape.
type DeserializationError struct {
	Target string
	Body   []byte
	Err    error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("deserialize %s: %v", e.Target, e.Err)
}

func (e *DeserializationError) Unwrap() error {
	return e.Err
}

type jsonSerializer struct {
	validate *validator.Validate
}

func New() Serializer {
	return &jsonSerializer{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (s *jsonSerializer) ToPayload(model any) (map[string]any, error) {
	if model == nil {
		return nil, nil
	}

	raw, err := json.Marshal(model)
	if err != nil {
		return nil, errors.Wrapf(err, "marshal %T", model)
	}

	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var payload map[string]any
	if err := decoder.Decode(&payload); err != nil {
		return nil, errors.Wrapf(err, "%T does not serialize to a JSON object", model)
	}
	if len(payload) == 0 {
		return nil, nil
	}

	return payload, nil
}

func (s *jsonSerializer) FromJSON(data []byte, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.Errorf("decode target must be a non-nil pointer, got %T", target)
	}
	name := rv.Elem().Type().String()

	if err := json.Unmarshal(data, target); err != nil {
		return &DeserializationError{Target: name, Body: data, Err: err}
	}

	if err := s.check(rv.Elem()); err != nil {
		return &DeserializationError{Target: name, Body: data, Err: err}
	}

	return nil
}

// check runs the required-field rules on a decoded struct, or on every
// element of a decoded slice.
func (s *jsonSerializer) check(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		return s.validate.Struct(v.Interface())
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := s.check(v.Index(i)); err != nil {
				return errors.Wrapf(err, "element %d", i)
			}
		}
	case reflect.Pointer:
		if !v.IsNil() {
			return s.check(v.Elem())
		}
	}
	return nil
}

// Decode is FromJSON with the target type picked by the caller.
func Decode[T any](s Serializer, data []byte) (T, error) {
	var out T
	if err := s.FromJSON(data, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
