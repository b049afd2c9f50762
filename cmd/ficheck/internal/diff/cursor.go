package diff

import "pkg.jsn.cam/ficheck/cmd/ficheck/pkg/data"

// SliceCursor is a Cursor over records held in memory
type SliceCursor struct {
	records []data.Record
	pos     int
}

// NewSliceCursor returns a cursor over records
func NewSliceCursor(records ...data.Record) *SliceCursor {
	return &SliceCursor{records: records}
}

func (c *SliceCursor) Next() (data.Record, bool) {
	if c.pos >= len(c.records) {
		return data.Record{}, false
	}
	r := c.records[c.pos]
	c.pos++
	return r, true
}
