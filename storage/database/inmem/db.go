// Package inmemdb is the process-wide store of the API: one mutex-guarded table per entity.
// Every test opens its own DB.
package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/coursehub/core/calendar"
	"github.com/trezcool/coursehub/core/chat"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/enrollment"
	"github.com/trezcool/coursehub/core/grade"
	"github.com/trezcool/coursehub/core/user"
)

type (
	DB struct {
		user       *table[user.User]
		course     *table[course.Course]
		material   *table[course.Material]
		test       *table[course.Test]
		enrollment *table[enrollment.Enrollment]
		event      *table[calendar.Event]
		chat       *table[chat.Chat]
		message    *table[chat.Message]
		grade      *table[grade.Grade]
	}

	// table keeps rows by id along with their insertion order.
	// Callers hold the lock.
	table[T any] struct {
		sync.RWMutex
		rows map[string]T
		ids  []string
	}
)

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

func (t *table[T]) get(id string) (T, bool) {
	row, ok := t.rows[id]
	return row, ok
}

func (t *table[T]) insert(id string, row T) {
	if _, ok := t.rows[id]; !ok {
		t.ids = append(t.ids, id)
	}
	t.rows[id] = row
}

// update replaces an existing row, reporting whether it existed.
func (t *table[T]) update(id string, row T) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	t.rows[id] = row
	return true
}

func (t *table[T]) delete(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, rid := range t.ids {
		if rid == id {
			t.ids = append(t.ids[:i], t.ids[i+1:]...)
			break
		}
	}
	return true
}

// all returns the rows matching keep (every row when keep is nil) in insertion order.
func (t *table[T]) all(keep func(T) bool) []T {
	rows := make([]T, 0, len(t.ids))
	for _, id := range t.ids {
		row := t.rows[id]
		if keep == nil || keep(row) {
			rows = append(rows, row)
		}
	}
	return rows
}

func (t *table[T]) reset() {
	t.Lock()
	defer t.Unlock()
	t.rows = make(map[string]T)
	t.ids = nil
}

func Open() (*DB, error) {
	db := &DB{
		user:       newTable[user.User](),
		course:     newTable[course.Course](),
		material:   newTable[course.Material](),
		test:       newTable[course.Test](),
		enrollment: newTable[enrollment.Enrollment](),
		event:      newTable[calendar.Event](),
		chat:       newTable[chat.Chat](),
		message:    newTable[chat.Message](),
		grade:      newTable[grade.Grade](),
	}
	return db, nil
}

// Reset empties every table.
func (db *DB) Reset() {
	db.user.reset()
	db.course.reset()
	db.material.reset()
	db.test.reset()
	db.enrollment.reset()
	db.event.reset()
	db.chat.reset()
	db.message.reset()
	db.grade.reset()
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}
