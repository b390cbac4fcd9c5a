// Package conversation keeps the bounded transcript a loop sends to the model.
package conversation

import (
	"sync"

	"github.com/xkilldash9x/webpilot/api/schemas"
)

// DefaultRetention is the number of images kept in the model-facing transcript.
const DefaultRetention = 5

// Window is an append-only transcript that keeps at most a fixed number of
// images across the entries the model sees. Pruning only drops image blocks;
// entries and text blocks are never removed.
//
// Entries with a LinkID are kept for export and never projected to the model.
// They do not count toward the retention limit and are not pruned.
type Window struct {
	mu        sync.Mutex
	retention int
	entries   []schemas.Entry
	export    []schemas.Entry
	images    int
}

// NewWindow creates a window keeping retention images. A non-positive value
// uses DefaultRetention.
func NewWindow(retention int) *Window {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Window{retention: retention}
}

// Retention returns the image limit.
func (w *Window) Retention() int { return w.retention }

// Append adds an entry and prunes the oldest images beyond the limit.
func (w *Window) Append(e schemas.Entry) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.export = append(w.export, cloneEntry(e))
	w.entries = append(w.entries, cloneEntry(e))
	if e.LinkID != "" {
		return
	}
	w.images += e.ImageCount()
	if w.images > w.retention {
		w.prune(w.images - w.retention)
	}
}

// prune removes the n oldest projected images.
func (w *Window) prune(n int) {
	for i := range w.entries {
		if n == 0 {
			break
		}
		if w.entries[i].LinkID != "" {
			continue
		}
		var removed int
		w.entries[i].Blocks, removed = dropImages(w.entries[i].Blocks, n)
		n -= removed
		w.images -= removed
	}
}

// dropImages removes up to n images from blocks, oldest first, descending into
// tool results. It returns the filtered blocks and the number removed.
func dropImages(blocks []schemas.ContentBlock, n int) ([]schemas.ContentBlock, int) {
	removed := 0
	out := blocks[:0]
	for _, b := range blocks {
		if removed < n && b.Type == schemas.BlockImage {
			removed++
			continue
		}
		if removed < n && len(b.Content) > 0 {
			var r int
			b.Content, r = dropImages(b.Content, n-removed)
			removed += r
		}
		out = append(out, b)
	}
	return out, removed
}

// Projection returns the entries sent to the model, in order.
func (w *Window) Projection() []schemas.Entry {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]schemas.Entry, 0, len(w.entries))
	for _, e := range w.entries {
		if e.LinkID != "" {
			continue
		}
		out = append(out, cloneEntry(e))
	}
	return out
}

// Transcript returns every entry, including linked ones, with pruning applied.
func (w *Window) Transcript() []schemas.Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneEntries(w.entries)
}

// Export returns every entry as appended, before any pruning.
func (w *Window) Export() []schemas.Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return cloneEntries(w.export)
}

// Len returns the number of appended entries.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// ImageCount returns the number of images currently visible to the model.
func (w *Window) ImageCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.images
}

func cloneEntries(entries []schemas.Entry) []schemas.Entry {
	out := make([]schemas.Entry, len(entries))
	for i, e := range entries {
		out[i] = cloneEntry(e)
	}
	return out
}

// cloneEntry copies the block slices so pruning never mutates a caller's entry.
// Image bytes are shared.
func cloneEntry(e schemas.Entry) schemas.Entry {
	e.Blocks = cloneBlocks(e.Blocks)
	return e
}

func cloneBlocks(blocks []schemas.ContentBlock) []schemas.ContentBlock {
	if blocks == nil {
		return nil
	}
	out := make([]schemas.ContentBlock, len(blocks))
	for i, b := range blocks {
		b.Content = cloneBlocks(b.Content)
		out[i] = b
	}
	return out
}
