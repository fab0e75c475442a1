package types

// ChangeOp identifies the kind of mutation a record store applied.
type ChangeOp string

// Change operations published by the record store.
const (
	ChangeInsert ChangeOp = "insert"
	ChangeDelete ChangeOp = "delete"
)

// Change describes rows the record store committed. Contacts holds exactly
// the rows affected, in ascending ID order.
type Change struct {
	Op       ChangeOp
	Contacts []Contact
}
