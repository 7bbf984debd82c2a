package directory

// Cloner allows types to provide copy logic.
// Models used with Conceal must implement it.
//
// For flat structs of strings and integers Clone can simply return the
// receiver value:
//
//	func (f Freelancer) Clone() Freelancer { return f }
type Cloner[T any] interface {
	Clone() T
}
