package layout

import "sync"

// WidthSource reports the current viewport width and notifies on change.
type WidthSource interface {
	CurrentWidth() int
	OnChange(fn func(width int)) (unsubscribe func())
}

// Broadcaster is a WidthSource fed by Set.
type Broadcaster struct {
	mu        sync.Mutex
	width     int
	listeners map[int]func(int)
	next      int
}

func NewBroadcaster(initial int) *Broadcaster {
	return &Broadcaster{width: initial, listeners: make(map[int]func(int))}
}

func (b *Broadcaster) CurrentWidth() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width
}

// Set records a new width and notifies listeners if it changed.
func (b *Broadcaster) Set(width int) {
	b.mu.Lock()
	if width == b.width {
		b.mu.Unlock()
		return
	}
	b.width = width
	fns := make([]func(int), 0, len(b.listeners))
	for i := 0; i < b.next; i++ {
		if fn, ok := b.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(width)
	}
}

func (b *Broadcaster) OnChange(fn func(int)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.listeners[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Listeners returns the number of live subscriptions.
func (b *Broadcaster) Listeners() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}

// CellSource converts terminal columns into pixel widths before publishing
// them.
type CellSource struct {
	*Broadcaster

	mu        sync.Mutex
	cellWidth int
	cols      int
}

// DefaultCellWidth is the assumed pixel width of one terminal column.
const DefaultCellWidth = 8

func NewCellSource(cellWidth int) *CellSource {
	if cellWidth <= 0 {
		cellWidth = DefaultCellWidth
	}
	return &CellSource{Broadcaster: NewBroadcaster(0), cellWidth: cellWidth}
}

// SetColumns publishes a terminal width measured in columns.
func (c *CellSource) SetColumns(cols int) {
	c.mu.Lock()
	c.cols = cols
	px := cols * c.cellWidth
	c.mu.Unlock()
	c.Set(px)
}

// SetCellWidth changes the column to pixel ratio and republishes the last
// known width.
func (c *CellSource) SetCellWidth(px int) {
	if px <= 0 {
		px = DefaultCellWidth
	}
	c.mu.Lock()
	c.cellWidth = px
	width := c.cols * px
	c.mu.Unlock()
	c.Set(width)
}

// Columns returns the last published terminal width in columns.
func (c *CellSource) Columns() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cols
}

func (c *CellSource) CellWidth() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cellWidth
}

var (
	_ WidthSource = (*Broadcaster)(nil)
	_ WidthSource = (*CellSource)(nil)
)
