package history

import "fmt"

// OpKind identifies the type of a buffer operation.
type OpKind uint8

// Operation kinds. The zero value marks an empty (no-op) Operation.
const (
	OpNone OpKind = iota
	OpInsert
	OpDelete
	OpOverwrite
)

// String returns a human-readable kind name.
func (k OpKind) String() string {
	switch k {
	case OpNone:
		return "none"
	case OpInsert:
		return "insert"
	case OpDelete:
		return "delete"
	case OpOverwrite:
		return "overwrite"
	default:
		return fmt.Sprintf("opkind(%d)", k)
	}
}

// Operation is one primitive buffer mutation with enough payload to
// construct its exact inverse. Operations are immutable once recorded;
// the byte slices are owned by the operation and must not be modified.
//
//   - OpInsert: Data was inserted at Offset.
//   - OpDelete: Data was removed at Offset.
//   - OpOverwrite: Old at Offset was replaced by Data. Lengths may
//     differ when an overwrite ran past the end of the buffer.
type Operation struct {
	Kind   OpKind
	Offset int64
	Data   []byte
	Old    []byte // OpOverwrite only
}

// NewInsert records an insertion of data at off.
func NewInsert(off int64, data []byte) Operation {
	return Operation{Kind: OpInsert, Offset: off, Data: data}
}

// NewDelete records a removal of the given bytes at off.
func NewDelete(off int64, removed []byte) Operation {
	return Operation{Kind: OpDelete, Offset: off, Data: removed}
}

// NewOverwrite records a replacement of old by data at off.
func NewOverwrite(off int64, old, data []byte) Operation {
	return Operation{Kind: OpOverwrite, Offset: off, Data: data, Old: old}
}

// IsZero reports whether the operation is empty and records nothing.
func (op Operation) IsZero() bool { return op.Kind == OpNone }

// Inverted returns the operation that exactly undoes op.
func (op Operation) Inverted() Operation {
	switch op.Kind {
	case OpInsert:
		return Operation{Kind: OpDelete, Offset: op.Offset, Data: op.Data}
	case OpDelete:
		return Operation{Kind: OpInsert, Offset: op.Offset, Data: op.Data}
	case OpOverwrite:
		return Operation{Kind: OpOverwrite, Offset: op.Offset, Data: op.Old, Old: op.Data}
	default:
		return op
	}
}

// Removed returns the bytes the operation removes from the buffer, nil
// for a pure insertion.
func (op Operation) Removed() []byte {
	switch op.Kind {
	case OpDelete:
		return op.Data
	case OpOverwrite:
		return op.Old
	default:
		return nil
	}
}

// Inserted returns the bytes the operation adds to the buffer, nil for
// a pure deletion.
func (op Operation) Inserted() []byte {
	switch op.Kind {
	case OpInsert, OpOverwrite:
		return op.Data
	default:
		return nil
	}
}

// LengthDelta returns the net change in buffer length the operation
// causes when applied.
func (op Operation) LengthDelta() int64 {
	return int64(len(op.Inserted())) - int64(len(op.Removed()))
}

// String describes the operation for logs.
func (op Operation) String() string {
	switch op.Kind {
	case OpOverwrite:
		return fmt.Sprintf("overwrite@%d -%d+%d", op.Offset, len(op.Old), len(op.Data))
	case OpNone:
		return "none"
	default:
		return fmt.Sprintf("%s@%d %d bytes", op.Kind, op.Offset, len(op.Data))
	}
}
