package node

import (
	"errors"
	"fmt"
)

// ErrUnsupportedNodeType is returned when a node is wrapped by the object
// of another node type.
var ErrUnsupportedNodeType = errors.New("node: unsupported node type")

// UnsupportedNodeTypeError represents a node whose type does not match the
// node type object it was passed to.
type UnsupportedNodeTypeError struct {
	Actual   string
	Expected string
}

// Error returns the error string.
func (e *UnsupportedNodeTypeError) Error() string {
	return fmt.Sprintf("node: unsupported node type %q, expected %q", e.Actual, e.Expected)
}

// Is reports whether the target error matches UnsupportedNodeTypeError.
// This allows errors.Is(err, ErrUnsupportedNodeType) to return true.
func (e *UnsupportedNodeTypeError) Is(err error) bool {
	return err == ErrUnsupportedNodeType
}

// NewUnsupportedNodeTypeError returns a new UnsupportedNodeTypeError.
func NewUnsupportedNodeTypeError(actual, expected string) *UnsupportedNodeTypeError {
	return &UnsupportedNodeTypeError{Actual: actual, Expected: expected}
}

// IsUnsupportedNodeType returns true if the error is an UnsupportedNodeTypeError.
func IsUnsupportedNodeType(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedNodeTypeError
	return errors.As(err, &e) || errors.Is(err, ErrUnsupportedNodeType)
}

// Check returns an UnsupportedNodeTypeError unless n has the expected type.
func Check(n Node, expected string) error {
	if n == nil {
		return NewUnsupportedNodeTypeError("", expected)
	}
	if actual := n.NodeTypeName(); actual != expected {
		return NewUnsupportedNodeTypeError(actual, expected)
	}
	return nil
}
