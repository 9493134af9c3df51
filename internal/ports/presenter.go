package ports

// Flag is a named presentation state toggled on a row
type Flag string

const (
	FlagCollapsed  Flag = "is-collapsed"
	FlagActive     Flag = "is-active"
	FlagUnresolved Flag = "is-unresolved" // potential note
	FlagLeaf       Flag = "is-leaf"
)

// Click is delivered to a row's click listener. Modifier distinguishes the
// "open the note" action from a plain expand/collapse click.
type Click struct {
	Modifier bool
}

// Container holds an ordered list of rows
type Container interface {
	CreateRow() Row

	// Reorder arranges the container's rows in the given order. Rows not
	// listed keep their relative order after the listed ones.
	Reorder(rows []Row)

	Clear()
}

// Row is the presentation handle of one tree entry
type Row interface {
	SetText(text string)
	SetCount(count int)
	SetFlag(flag Flag, on bool)
	OnClick(fn func(Click))

	// SetChildrenVisible shows or hides the child container
	SetChildrenVisible(visible bool)
	Children() Container

	// Remove detaches the row, and everything below it, from its container
	Remove()
}
