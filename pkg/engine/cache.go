package engine

import (
	"slices"

	"github.com/oisee/i8080/pkg/translate"
)

const numPages = 1 << (16 - translate.PageBits)

// entry is a cached block plus the links used for chaining.
type entry struct {
	*translate.Block
	valid bool
	links [2]*entry // fallthrough, target
}

// Cache maps guest addresses to translated blocks. Each Engine owns one;
// it is never shared, so there is no locking.
type Cache struct {
	blocks map[uint16]*entry
	pages  [numPages][]*entry
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{blocks: make(map[uint16]*entry)}
}

// Lookup returns the valid block starting at pc, or nil.
func (c *Cache) Lookup(pc uint16) *entry {
	return c.blocks[pc]
}

// Insert adds a block, replacing any block at the same address.
func (c *Cache) Insert(b *translate.Block) *entry {
	e := c.Track(b)
	if old := c.blocks[b.PC]; old != nil {
		c.Untrack(old)
	}
	c.blocks[b.PC] = e
	return e
}

// Track registers a block for invalidation without making it findable
// by Lookup.
func (c *Cache) Track(b *translate.Block) *entry {
	e := &entry{Block: b, valid: true}
	first, last := b.Pages()
	c.pages[first] = append(c.pages[first], e)
	if last != first {
		c.pages[last] = append(c.pages[last], e)
	}
	return e
}

// Untrack invalidates a block and removes it from the page index.
func (c *Cache) Untrack(e *entry) {
	e.valid = false
	first, last := e.Pages()
	c.pages[first] = remove(c.pages[first], e)
	if last != first {
		c.pages[last] = remove(c.pages[last], e)
	}
	if c.blocks[e.PC] == e {
		delete(c.blocks, e.PC)
	}
}

func remove(list []*entry, e *entry) []*entry {
	if i := slices.Index(list, e); i >= 0 {
		return slices.Delete(list, i, i+1)
	}
	return list
}

// HasCode reports whether any block was built from the page of addr.
func (c *Cache) HasCode(addr uint16) bool {
	return len(c.pages[translate.Page(addr)]) > 0
}

// Invalidate drops every block built from the byte at addr and returns how
// many were dropped.
func (c *Cache) Invalidate(addr uint16) int {
	page := translate.Page(addr)
	list := c.pages[page]
	kept := list[:0]
	n := 0
	for _, e := range list {
		if !e.valid {
			continue
		}
		if e.Covers(addr) {
			e.valid = false
			if c.blocks[e.PC] == e {
				delete(c.blocks, e.PC)
			}
			n++
			continue
		}
		kept = append(kept, e)
	}
	clear(list[len(kept):])
	c.pages[page] = kept
	return n
}

// Flush drops every block.
func (c *Cache) Flush() {
	for _, e := range c.blocks {
		e.valid = false
	}
	for i := range c.pages {
		for _, e := range c.pages[i] {
			e.valid = false
		}
		c.pages[i] = nil
	}
	clear(c.blocks)
}

// Len returns the number of blocks findable by Lookup.
func (c *Cache) Len() int {
	return len(c.blocks)
}
