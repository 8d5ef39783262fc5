package core

// pool hands out stubs from fixed-size segments so the sweep phase can
// enumerate every stub ever allocated without chasing a separate
// registry. Freed stubs go on a free list threaded through their next
// pointers.
type pool struct {
	segments    [][]Stub
	segmentSize int
	freeHead    *Stub
	live        int
}

func newPool(segmentSize int) *pool {
	if segmentSize <= 0 {
		segmentSize = 1
	}
	return &pool{segmentSize: segmentSize}
}

// get returns a zeroed stub of the given flavor.
func (p *pool) get(flavor Flavor) *Stub {
	s := p.freeHead
	if s != nil {
		p.freeHead = s.next
		*s = Stub{}
	} else {
		s = p.grow()
	}
	s.flavor = flavor
	p.live++
	return s
}

func (p *pool) grow() *Stub {
	last := len(p.segments) - 1
	if last < 0 || len(p.segments[last]) == cap(p.segments[last]) {
		p.segments = append(p.segments, make([]Stub, 0, p.segmentSize))
		last++
	}
	p.segments[last] = append(p.segments[last], Stub{})
	seg := p.segments[last]
	return &seg[len(seg)-1]
}

// put returns a stub to the free list, dropping its storage so the Go
// heap can reclaim the backing slices immediately.
func (p *pool) put(s *Stub) {
	*s = Stub{}
	s.next = p.freeHead
	p.freeHead = s
	p.live--
}

// each calls fn for every allocated (non-free) stub.
func (p *pool) each(fn func(*Stub)) {
	for _, seg := range p.segments {
		for i := range seg {
			if seg[i].flavor != FlavorFree {
				fn(&seg[i])
			}
		}
	}
}
