package users

type UserRepo interface {
	Upsert(user *User) error
	GetByID(id string) (*User, error)
	// GetByIdentifier matches username, email, phone or national id.
	GetByIdentifier(identifier string) (*User, error)
	List(offset, limit int) ([]*User, error)
	SetBlocked(id string, blocked bool) error
}
