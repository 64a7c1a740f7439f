// Package todo holds the to-do list domain type. A List is an immutable
// value: every operation returns a new List and never mutates the
// receiver, so Lists can be held and exchanged without copying concerns.
package todo

import (
	"encoding/json"
	"time"
)

// Date is a calendar day in ISO format (YYYY-MM-DD).
type Date string

// DateOf returns the Date of t in its location.
func DateOf(t time.Time) Date {
	return Date(t.Format("2006-01-02"))
}

// Entry is a single to-do item. IDs are assigned by List.Add, starting at
// 1 and increasing by insertion order.
type Entry struct {
	ID    int    `json:"id"`
	Date  Date   `json:"date"`
	Title string `json:"title"`
}

// List is an append-ordered collection of entries with auto-incrementing
// IDs. The zero value is an empty list.
type List struct {
	nextID  int
	entries []Entry
}

// Empty returns an empty list.
func Empty() List { return List{} }

// Len returns the number of entries.
func (l List) Len() int { return len(l.entries) }

// Entries returns all entries in insertion order. The returned slice is a
// copy; the caller may keep or modify it freely.
func (l List) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Add returns a new list with e appended. Any ID on e is ignored; the list
// assigns the next free one.
func (l List) Add(e Entry) List {
	id := l.nextID
	if id == 0 {
		id = 1
	}
	e.ID = id

	entries := make([]Entry, len(l.entries), len(l.entries)+1)
	copy(entries, l.entries)
	return List{
		nextID:  id + 1,
		entries: append(entries, e),
	}
}

// Update returns a new list with the entry identified by id replaced by
// fn's result. The entry's ID is preserved regardless of what fn returns.
// If no entry has that id, the list is returned unchanged.
func (l List) Update(id int, fn func(Entry) Entry) List {
	idx := l.index(id)
	if idx < 0 {
		return l
	}

	entries := make([]Entry, len(l.entries))
	copy(entries, l.entries)
	updated := fn(entries[idx])
	updated.ID = id
	entries[idx] = updated

	return List{nextID: l.nextID, entries: entries}
}

// Delete returns a new list without the entry identified by id. If no
// entry has that id, the list is returned unchanged.
func (l List) Delete(id int) List {
	idx := l.index(id)
	if idx < 0 {
		return l
	}

	entries := make([]Entry, 0, len(l.entries)-1)
	entries = append(entries, l.entries[:idx]...)
	entries = append(entries, l.entries[idx+1:]...)

	return List{nextID: l.nextID, entries: entries}
}

// DueOn returns the entries scheduled for date, in insertion order.
func (l List) DueOn(date Date) []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out
}

func (l List) index(id int) int {
	for i, e := range l.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// listJSON is the wire form of a List.
type listJSON struct {
	NextID  int     `json:"next_id"`
	Entries []Entry `json:"entries"`
}

// MarshalJSON implements json.Marshaler.
func (l List) MarshalJSON() ([]byte, error) {
	return json.Marshal(listJSON{NextID: l.nextID, Entries: l.entries})
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *List) UnmarshalJSON(data []byte) error {
	var w listJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	l.nextID = w.NextID
	l.entries = w.Entries
	return nil
}
