package inmemdb

import (
	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/storage/fixtures"
)

// Seed resets the DB then loads f into it. Course enrolled counts are derived from f.Enrollments.
func (db *DB) Seed(f *fixtures.Fixtures) error {
	db.Reset()
	if f == nil {
		return nil
	}

	db.user.Lock()
	for _, fu := range f.Users {
		usr, err := fu.Record()
		if err != nil {
			db.user.Unlock()
			return errors.Wrap(err, "seeding users")
		}
		usr.ID = newID(usr.ID)
		db.user.insert(usr.ID, usr)
	}
	db.user.Unlock()

	enrolled := make(map[string]int)
	db.enrollment.Lock()
	for _, enr := range f.Enrollments {
		enr.ID = newID(enr.ID)
		enr.SetProgress(enr.Progress)
		db.enrollment.insert(enr.ID, enr)
		enrolled[enr.CourseID]++
	}
	db.enrollment.Unlock()

	db.course.Lock()
	for _, crs := range f.Courses {
		crs.ID = newID(crs.ID)
		crs.Enrolled = enrolled[crs.ID]
		db.course.insert(crs.ID, crs)
	}
	db.course.Unlock()

	db.material.Lock()
	for _, mat := range f.Materials {
		mat.ID = newID(mat.ID)
		db.material.insert(mat.ID, mat)
	}
	db.material.Unlock()

	db.test.Lock()
	for _, tst := range f.Tests {
		tst.ID = newID(tst.ID)
		tst.Questions = cloneQuestions(tst.Questions)
		db.test.insert(tst.ID, tst)
	}
	db.test.Unlock()

	db.event.Lock()
	for _, evt := range f.Events {
		evt.ID = newID(evt.ID)
		db.event.insert(evt.ID, evt)
	}
	db.event.Unlock()

	db.chat.Lock()
	for _, ch := range f.Chats {
		ch.ID = newID(ch.ID)
		db.chat.insert(ch.ID, cloneChat(ch))
	}
	db.chat.Unlock()

	db.message.Lock()
	for _, msg := range f.Messages {
		msg.ID = newID(msg.ID)
		db.message.insert(msg.ID, msg)
	}
	db.message.Unlock()

	db.grade.Lock()
	for _, grd := range f.Grades {
		grd.ID = newID(grd.ID)
		db.grade.insert(grd.ID, grd)
	}
	db.grade.Unlock()
	return nil
}
