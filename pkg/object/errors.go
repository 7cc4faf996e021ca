package object

import (
	"fmt"
	"strings"
)

// HierarchyError reports an inconsistent base ordering during linearization.
// It is fatal to the class-definition statement that triggered it.
type HierarchyError struct {
	Class string
	Bases []string
}

func (e *HierarchyError) Error() string {
	return fmt.Sprintf("cannot linearize class %s: inconsistent hierarchy among bases (%s)",
		e.Class, strings.Join(e.Bases, ", "))
}

// AttributeError reports a failed attribute read, write, or removal. Receiver
// names the value the access was attempted on, Name the failing attribute.
type AttributeError struct {
	Receiver string
	Name     string
}

func (e *AttributeError) Error() string {
	return fmt.Sprintf("%s has no attribute '%s'", e.Receiver, e.Name)
}

func newAttributeError(receiver, name string) error {
	return &AttributeError{Receiver: receiver, Name: name}
}

// UnsupportedOperationError reports that neither operand's protocol member
// accepted an operation. Right is empty for unary and protocol operations.
type UnsupportedOperationError struct {
	Op    string
	Left  string
	Right string
}

func (e *UnsupportedOperationError) Error() string {
	if e.Right == "" {
		return fmt.Sprintf("unsupported operation '%s' for %s", e.Op, e.Left)
	}
	return fmt.Sprintf("unsupported operand classes for '%s': %s and %s", e.Op, e.Left, e.Right)
}

func newUnsupportedOperation(op, left, right string) error {
	return &UnsupportedOperationError{Op: op, Left: left, Right: right}
}

// MetatypeConflictError reports that no single candidate metatype is a
// subclass of every other candidate.
type MetatypeConflictError struct {
	Class string
	Metas []string
}

func (e *MetatypeConflictError) Error() string {
	return fmt.Sprintf("metatype conflict defining class %s: no most-derived metatype among %s",
		e.Class, strings.Join(e.Metas, ", "))
}
