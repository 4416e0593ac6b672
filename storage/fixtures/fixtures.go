// Package fixtures reads & writes the JSON documents the in-memory store is seeded from.
package fixtures

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/trezcool/coursehub/core/calendar"
	"github.com/trezcool/coursehub/core/chat"
	"github.com/trezcool/coursehub/core/course"
	"github.com/trezcool/coursehub/core/enrollment"
	"github.com/trezcool/coursehub/core/grade"
	"github.com/trezcool/coursehub/core/user"
)

//go:embed default.json
var defaultFixtures []byte

type (
	Fixtures struct {
		Users       []User                  `json:"users"`
		Courses     []course.Course         `json:"courses"`
		Materials   []course.Material       `json:"materials"`
		Tests       []course.Test           `json:"tests"`
		Enrollments []enrollment.Enrollment `json:"enrollments"`
		Events      []calendar.Event        `json:"events"`
		Chats       []chat.Chat             `json:"chats"`
		Messages    []chat.Message          `json:"messages"`
		Grades      []grade.Grade           `json:"grades"`
	}

	// User is a user.User along with its credentials: either a plaintext Password,
	// hashed when seeding, or a bcrypt PasswordHash.
	User struct {
		user.User
		Password     string `json:"password,omitempty"`
		PasswordHash string `json:"password_hash,omitempty"`
	}
)

// Record returns the user.User described by the fixture, hashing its plaintext password if any.
func (u User) Record() (user.User, error) {
	usr := u.User
	switch {
	case u.PasswordHash != "":
		usr.PasswordHash = []byte(u.PasswordHash)
	case u.Password != "":
		if err := usr.SetPassword(u.Password); err != nil {
			return user.User{}, errors.Wrapf(err, "hashing password of %s", u.Email)
		}
	}
	return usr, nil
}

// SetPassword replaces the credentials of the fixture with the hash of pwd.
func (u *User) SetPassword(pwd string) error {
	usr := u.User
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	u.Password = ""
	u.PasswordHash = string(usr.PasswordHash)
	return nil
}

// FindUser returns the index of the user with email, or -1.
func (f *Fixtures) FindUser(email string) int {
	for i, u := range f.Users {
		if u.Email == email {
			return i
		}
	}
	return -1
}

func decode(data []byte) (*Fixtures, error) {
	f := new(Fixtures)
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(f); err != nil {
		return nil, errors.Wrap(err, "decoding fixtures")
	}
	return f, nil
}

// Default returns the fixtures shipped with the binary.
func Default() (*Fixtures, error) {
	return decode(defaultFixtures)
}

// Load reads fixtures from the JSON file at path, or returns Default when path is empty.
func Load(path string) (*Fixtures, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading fixtures")
	}
	return decode(data)
}

// Save writes f as indented JSON to path, replacing the file atomically.
func (f *Fixtures) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding fixtures")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".fixtures-*.json")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing fixtures")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "writing fixtures")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "saving fixtures")
}
