// Package patch applies JSON Patch (RFC 6902) style documents to records with
// a fixed set of named fields.
//
// Paths are resolved through a whitelist built once per record type, so a
// document can only ever touch fields that were registered on its Schema.
// Application is all-or-nothing: operations run in order against a clone and
// the caller only sees the result when every operation succeeded.
package patch

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// OpKind names a patch operation.
type OpKind string

const (
	OpAdd     OpKind = "add"
	OpRemove  OpKind = "remove"
	OpReplace OpKind = "replace"
	OpMove    OpKind = "move"
	OpCopy    OpKind = "copy"
	OpTest    OpKind = "test"
)

var (
	// ErrInvalidPatch is the root of every application failure.
	ErrInvalidPatch = errors.New("invalid patch")

	ErrUnknownOp    = fmt.Errorf("%w: unknown operation", ErrInvalidPatch)
	ErrInvalidPath  = fmt.Errorf("%w: invalid path", ErrInvalidPatch)
	ErrMissingValue = fmt.Errorf("%w: missing value", ErrInvalidPatch)
	ErrTypeMismatch = fmt.Errorf("%w: type mismatch", ErrInvalidPatch)
	ErrTestFailed   = fmt.Errorf("%w: test failed", ErrInvalidPatch)
)

// Operation is a single step of a patch document.
type Operation struct {
	Op    OpKind          `json:"op"`
	Path  string          `json:"path"`
	From  string          `json:"from,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Document is an ordered list of operations.
type Document []Operation

// Error reports which operation of a document failed.
type Error struct {
	Index int
	Op    OpKind
	Path  string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("patch operation %d (%s %s): %v", e.Index, e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Schema holds the field whitelist for records of type T.
type Schema[T any] struct {
	fields map[string]Field[T]
	clone  func(T) T
}

// NewSchema builds a schema from the given fields. clone must return a copy of
// the record that shares no mutable state with the original; nil means T is
// safe to copy by value.
func NewSchema[T any](clone func(T) T, fields ...Field[T]) *Schema[T] {
	if clone == nil {
		clone = func(v T) T { return v }
	}
	s := &Schema[T]{fields: make(map[string]Field[T], len(fields)), clone: clone}
	for _, f := range fields {
		s.fields[strings.ToLower(f.name)] = f
	}
	return s
}

// Apply runs doc against a copy of rec. On success the patched copy is
// returned; on failure rec is untouched and the error wraps ErrInvalidPatch.
func (s *Schema[T]) Apply(doc Document, rec T) (T, error) {
	work := s.clone(rec)
	for i, op := range doc {
		if err := s.applyOne(&work, op); err != nil {
			var zero T
			return zero, &Error{Index: i, Op: op.Op, Path: op.Path, Err: err}
		}
	}
	return work, nil
}

func (s *Schema[T]) applyOne(rec *T, op Operation) error {
	target, err := s.resolve(op.Path)
	if err != nil {
		return err
	}

	switch op.Op {
	case OpAdd, OpReplace:
		if len(op.Value) == 0 {
			return ErrMissingValue
		}
		return target.set(rec, op.Value)

	case OpRemove:
		target.clear(rec)
		return nil

	case OpMove, OpCopy:
		source, err := s.resolve(op.From)
		if err != nil {
			return fmt.Errorf("from: %w", err)
		}
		val, err := source.get(rec)
		if err != nil {
			return err
		}
		if op.Op == OpMove {
			source.clear(rec)
		}
		return target.set(rec, val)

	case OpTest:
		if len(op.Value) == 0 {
			return ErrMissingValue
		}
		ok, err := target.equal(rec, op.Value)
		if err != nil {
			return err
		}
		if !ok {
			return ErrTestFailed
		}
		return nil

	default:
		return fmt.Errorf("%w %q", ErrUnknownOp, op.Op)
	}
}

// resolve maps a single-segment JSON pointer such as "/Name" onto a field.
func (s *Schema[T]) resolve(path string) (Field[T], error) {
	if !strings.HasPrefix(path, "/") {
		return Field[T]{}, fmt.Errorf("%w %q", ErrInvalidPath, path)
	}
	seg := path[1:]
	if seg == "" || strings.Contains(seg, "/") {
		return Field[T]{}, fmt.Errorf("%w %q", ErrInvalidPath, path)
	}
	seg = strings.NewReplacer("~1", "/", "~0", "~").Replace(seg)

	f, ok := s.fields[strings.ToLower(seg)]
	if !ok {
		return Field[T]{}, fmt.Errorf("%w %q", ErrInvalidPath, path)
	}
	return f, nil
}
