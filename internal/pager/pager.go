package pager

import "fmt"

// Sizes offered by the page size selector.
var Sizes = []int{5, 10, 20, 50}

const DefaultSize = 10

// Pager tracks a 0-based page index over a filtered total.
type Pager struct {
	index int
	size  int
	total int
}

func New(size int) *Pager {
	if size < 1 {
		size = DefaultSize
	}
	return &Pager{size: size}
}

func (p *Pager) Index() int { return p.index }
func (p *Pager) Size() int  { return p.size }
func (p *Pager) Total() int { return p.total }

// MaxPage is the last valid index: max(0, ceil(total/size)-1).
func (p *Pager) MaxPage() int {
	if p.total <= 0 {
		return 0
	}
	return (p.total+p.size-1)/p.size - 1
}

// SetPageSize changes the page size and returns to the first page.
func (p *Pager) SetPageSize(n int) {
	if n < 1 {
		return
	}
	p.size = n
	p.index = 0
}

// CycleSize steps to the next entry of Sizes.
func (p *Pager) CycleSize() {
	next := Sizes[0]
	for i, s := range Sizes {
		if s == p.size && i+1 < len(Sizes) {
			next = Sizes[i+1]
			break
		}
	}
	p.SetPageSize(next)
}

func (p *Pager) Next() {
	if p.index < p.MaxPage() {
		p.index++
	}
}

func (p *Pager) Prev() {
	if p.index > 0 {
		p.index--
	}
}

func (p *Pager) Reset() { p.index = 0 }

// SetTotal records a new filtered count and clamps the index.
func (p *Pager) SetTotal(total int) {
	if total < 0 {
		total = 0
	}
	p.total = total
	if last := p.MaxPage(); p.index > last {
		p.index = last
	}
}

// Bounds returns the half-open slice bounds of the current page.
func (p *Pager) Bounds() (start, end int) {
	start = p.index * p.size
	if start > p.total {
		start = p.total
	}
	end = start + p.size
	if end > p.total {
		end = p.total
	}
	return start, end
}

// Range returns 1-based inclusive bounds for display; 0,0 when empty.
func (p *Pager) Range() (from, to int) {
	if p.total == 0 {
		return 0, 0
	}
	from = p.index*p.size + 1
	to = (p.index + 1) * p.size
	if to > p.total {
		to = p.total
	}
	return from, to
}

func (p *Pager) Label() string {
	from, to := p.Range()
	return fmt.Sprintf("%d – %d of %d", from, to, p.total)
}

// Slice returns the current page of seq. seq is expected to hold Total items.
func Slice[T any](p *Pager, seq []T) []T {
	start, end := p.Bounds()
	if end > len(seq) {
		end = len(seq)
	}
	if start > end {
		start = end
	}
	return seq[start:end]
}
