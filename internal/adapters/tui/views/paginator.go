package views

// Paginator keeps a cursor inside a scrolling window over a list. The
// window follows the cursor one line at a time.
type Paginator struct {
	pageSize   int
	pageOffset int
	cursor     int
	totalItems int
}

// NewPaginator creates a new paginator with the given page size
func NewPaginator(pageSize int) *Paginator {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Paginator{
		pageSize: pageSize,
	}
}

// SetPageSize changes the number of visible lines, e.g. after a resize
func (p *Paginator) SetPageSize(size int) {
	if size <= 0 {
		size = 1
	}
	p.pageSize = size
	p.clamp()
}

// PageSize returns the number of visible lines
func (p *Paginator) PageSize() int {
	return p.pageSize
}

// SetTotal sets the total number of items
func (p *Paginator) SetTotal(total int) {
	p.totalItems = total
	p.clamp()
}

// Total returns the number of items
func (p *Paginator) Total() int {
	return p.totalItems
}

// Cursor returns the current cursor position (absolute index)
func (p *Paginator) Cursor() int {
	return p.cursor
}

// SetCursor sets the cursor position
func (p *Paginator) SetCursor(pos int) {
	p.cursor = pos
	p.clamp()
}

// CursorUp moves the cursor up by one
func (p *Paginator) CursorUp() bool {
	if p.cursor > 0 {
		p.cursor--
		p.clamp()
		return true
	}
	return false
}

// CursorDown moves the cursor down by one
func (p *Paginator) CursorDown() bool {
	if p.cursor < p.totalItems-1 {
		p.cursor++
		p.clamp()
		return true
	}
	return false
}

// PageDown moves the cursor one page down
func (p *Paginator) PageDown() bool {
	if p.cursor >= p.totalItems-1 {
		return false
	}
	p.cursor += p.pageSize
	p.clamp()
	return true
}

// PageUp moves the cursor one page up
func (p *Paginator) PageUp() bool {
	if p.cursor == 0 {
		return false
	}
	p.cursor -= p.pageSize
	p.clamp()
	return true
}

// PageOffset returns the index of the first visible item
func (p *Paginator) PageOffset() int {
	return p.pageOffset
}

// VisibleRange returns the start and end indices of the window
func (p *Paginator) VisibleRange() (start, end int) {
	start = p.pageOffset
	end = min(p.pageOffset+p.pageSize, p.totalItems)
	return
}

// CursorInPage returns the cursor position relative to the window
func (p *Paginator) CursorInPage() int {
	return p.cursor - p.pageOffset
}

// Reset resets the paginator to its initial state
func (p *Paginator) Reset() {
	p.cursor = 0
	p.pageOffset = 0
	p.totalItems = 0
}

// clamp keeps the cursor on an item and the window around the cursor
func (p *Paginator) clamp() {
	if p.cursor >= p.totalItems {
		p.cursor = p.totalItems - 1
	}
	if p.cursor < 0 {
		p.cursor = 0
	}

	if p.cursor < p.pageOffset {
		p.pageOffset = p.cursor
	} else if p.cursor >= p.pageOffset+p.pageSize {
		p.pageOffset = p.cursor - p.pageSize + 1
	}
	if maxOffset := p.totalItems - p.pageSize; p.pageOffset > maxOffset {
		p.pageOffset = max(maxOffset, 0)
	}
}
