// Package model contains the flat record type the engine operates on.
package model

import (
	"strings"
	"time"

	"treedrag/internal/tree"
)

// Record is one externally-owned row of the hierarchy. The engine never
// mutates records; it reads them through the accessor bundle from Funcs.
type Record struct {
	ID        string    `json:"id"`
	ParentID  *string   `json:"parent_id,omitempty"`
	Order     *float64  `json:"order,omitempty"`
	Text      string    `json:"text"`
	Collapsed bool      `json:"collapsed,omitempty"`
	Created   time.Time `json:"created"`
	Modified  time.Time `json:"modified"`
}

// Document is the persisted form: a title plus the flat record list.
type Document struct {
	Title   string    `json:"title"`
	Records []*Record `json:"records"`
}

// NewRecord creates a record with a generated ID and no order key; the
// build assigns one and reports it for persistence.
func NewRecord(text string) *Record {
	now := time.Now()
	return &Record{
		ID:       generateID(),
		Text:     text,
		Created:  now,
		Modified: now,
	}
}

// NewDocument creates an empty document.
func NewDocument(title string) *Document {
	return &Document{Title: title, Records: make([]*Record, 0)}
}

// Find returns the record with the given id, or nil.
func (d *Document) Find(id string) *Record {
	for _, r := range d.Records {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// Funcs returns the accessor bundle for records. filteredOut may be nil;
// when set it hides non-matching records from the built tree.
func Funcs(filteredOut func(*Record) bool) tree.Funcs[*Record] {
	return tree.Funcs[*Record]{
		ID:       func(r *Record) string { return r.ID },
		ParentID: func(r *Record) *string { return r.ParentID },
		Order: func(r *Record) (float64, bool) {
			if r.Order == nil {
				return 0, false
			}
			return *r.Order, true
		},
		// Tiebreak for records that have no order key yet: by text,
		// then by id so the result is a total order.
		Compare: func(a, b *Record) int {
			if c := strings.Compare(a.Text, b.Text); c != 0 {
				return c
			}
			return strings.Compare(a.ID, b.ID)
		},
		Collapsed:   func(r *Record) bool { return r.Collapsed },
		FilteredOut: filteredOut,
	}
}

func generateID() string {
	return "rec_" + time.Now().Format("20060102150405") + "_" + randomString(8)
}

func randomString(length int) string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		result[i] = chars[int(time.Now().UnixNano()+int64(i))%len(chars)]
	}
	return string(result)
}
