package fakeuserrepo

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/jrsteele09/go-case-portal/internal/errors"
	"github.com/jrsteele09/go-case-portal/users"
)

var _ users.UserRepo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users  map[string]*users.User
	nextID int
	lock   sync.RWMutex
}

func NewFakeUserRepo() *FakeUserRepo {
	return &FakeUserRepo{
		users: make(map[string]*users.User),
	}
}

// Upsert stores user, assigning the next numeric id when it has none.
// Identifiers must stay unique across users.
func (ur *FakeUserRepo) Upsert(user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	for _, id := range user.Identifiers() {
		if existing := ur.findLocked(id); existing != nil && existing.ID != user.ID {
			return errors.Wrapf(errors.ErrInvalidRequest, "identifier %q already in use", id)
		}
	}
	if user.ID == "" {
		ur.nextID++
		user.ID = strconv.Itoa(ur.nextID)
	}
	ur.users[user.ID] = user
	return nil
}

func (ur *FakeUserRepo) GetByID(id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return u, nil
}

func (ur *FakeUserRepo) GetByIdentifier(identifier string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	if u := ur.findLocked(identifier); u != nil {
		return u, nil
	}
	return nil, errors.ErrNotFound
}

func (ur *FakeUserRepo) List(offset, limit int) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0, len(ur.users))
	for _, u := range ur.users {
		userList = append(userList, u)
	}
	sort.Slice(userList, func(i, j int) bool {
		a, _ := strconv.Atoi(userList[i].ID)
		b, _ := strconv.Atoi(userList[j].ID)
		return a < b
	})

	if offset >= len(userList) {
		return []*users.User{}, nil
	}
	end := len(userList)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return userList[offset:end], nil
}

func (ur *FakeUserRepo) SetBlocked(id string, blocked bool) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return errors.ErrNotFound
	}
	u.Blocked = blocked
	return nil
}

func (ur *FakeUserRepo) findLocked(identifier string) *users.User {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil
	}
	for _, u := range ur.users {
		for _, id := range u.Identifiers() {
			if strings.EqualFold(id, identifier) {
				return u
			}
		}
	}
	return nil
}
