package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/coursehub/core"
	"github.com/trezcool/coursehub/core/user"
)

var userComparators = map[string]core.Comparator[user.User]{
	"name":       func(a, b user.User) int { return core.CompareStrings(a.Name, b.Name) },
	"email":      func(a, b user.User) int { return core.CompareStrings(a.Email, b.Email) },
	"role":       func(a, b user.User) int { return core.CompareNumbers(user.RolePriority(a.Role), user.RolePriority(b.Role)) },
	"is_active":  func(a, b user.User) int { return core.CompareBools(a.IsActive, b.IsActive) },
	"created_at": func(a, b user.User) int { return core.CompareTimes(a.CreatedAt, b.CreatedAt) },
	"last_login": func(a, b user.User) int { return core.CompareTimes(a.LastLogin, b.LastLogin) },
}

type userRepository struct {
	db *table[user.User]
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.all(nil) {
		if usr.Email == email && !isExcluded(usr, excludedUsers) {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, u := range repo.db.all(nil) {
		if u.Email == usr.Email {
			return user.User{}, user.ErrEmailExists
		}
	}
	usr.ID = uuid.New().String()
	repo.db.insert(usr.ID, usr)
	return usr, nil
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, ordering []core.Ordering) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter == nil {
		filter = new(user.QueryFilter)
	}
	users := repo.db.all(func(usr user.User) bool {
		if filter.Search != "" && !(core.ContainsFold(usr.Name, filter.Search) || core.ContainsFold(usr.Email, filter.Search)) {
			return false
		}
		if len(filter.Roles) > 0 && !hasRole(filter.Roles, usr.Role) {
			return false
		}
		if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
			return false
		}
		return true
	})
	core.SortBy(users, ordering, userComparators)
	return users, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.get(id); ok {
		return usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.db.all(nil) {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, u := range repo.db.all(nil) {
		if u.Email == usr.Email && u.ID != usr.ID {
			return user.User{}, user.ErrEmailExists
		}
	}
	if !repo.db.update(usr.ID, usr) {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var deleted int
	for _, id := range ids {
		if repo.db.delete(id) {
			deleted++
		}
	}
	return deleted, nil
}

func isExcluded(usr user.User, excludedUsers []user.User) bool {
	for _, excl := range excludedUsers {
		if excl.ID == usr.ID {
			return true
		}
	}
	return false
}

func hasRole(roles []user.Role, role user.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
