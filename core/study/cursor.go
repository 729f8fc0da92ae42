package study

import "context"

const cursorPageSize = 50

// Cursor walks a student's activities newest first, one page at a time.
// Nothing is read before the first call to Next, and Reset starts the walk over.
//
//	cur := svc.List(studentID, filter)
//	for cur.Next(ctx) {
//		act := cur.Activity()
//	}
//	if err := cur.Err(); err != nil { ... }
type Cursor struct {
	repo      Repository
	studentID string
	filter    Filter
	pageSize  int

	page    []Activity
	pos     int
	offset  int
	yielded int
	done    bool
	err     error
}

func newCursor(repo Repository, studentID string, filter Filter) *Cursor {
	return &Cursor{repo: repo, studentID: studentID, filter: filter, pageSize: cursorPageSize}
}

// Next advances the cursor. It returns false when the sequence is exhausted or an error occurred.
func (c *Cursor) Next(ctx context.Context) bool {
	if c.err != nil {
		return false
	}
	if c.filter.Limit > 0 && c.yielded >= c.filter.Limit {
		return false
	}
	if c.pos+1 < len(c.page) {
		c.pos++
		c.yielded++
		return true
	}
	if c.done {
		return false
	}

	size := c.pageSize
	if c.filter.Limit > 0 && c.filter.Limit-c.yielded < size {
		size = c.filter.Limit - c.yielded
	}
	page, err := c.repo.QueryActivities(ctx, c.studentID, c.filter, c.offset, size)
	if err != nil {
		c.err = err
		return false
	}
	c.offset += len(page)
	c.done = len(page) < size
	c.page, c.pos = page, 0
	if len(page) == 0 {
		return false
	}
	c.yielded++
	return true
}

// Activity returns the activity at the current position.
func (c *Cursor) Activity() Activity {
	if c.pos < len(c.page) {
		return c.page[c.pos]
	}
	return Activity{}
}

func (c *Cursor) Err() error { return c.err }

// Reset rewinds the cursor to the newest activity.
func (c *Cursor) Reset() {
	c.page, c.pos, c.offset, c.yielded, c.done, c.err = nil, 0, 0, 0, false, nil
}

// All rewinds the cursor and collects the whole sequence.
func (c *Cursor) All(ctx context.Context) ([]Activity, error) {
	c.Reset()
	acts := make([]Activity, 0)
	for c.Next(ctx) {
		acts = append(acts, c.Activity())
	}
	return acts, c.Err()
}
