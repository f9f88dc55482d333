package devserver

import (
	"crypto/subtle"
	"strings"

	"github.com/garrettladley/fixit/internal/notification"
)

const devPassword = "password"

type User struct {
	ID       notification.ID   `json:"id"`
	Name     string            `json:"name"`
	Email    string            `json:"email"`
	Role     notification.Role `json:"role"`
	Password string            `json:"-"`
}

// DefaultUsers seeds one account per role, all sharing the same password.
func DefaultUsers() []User {
	return []User{
		{ID: "1", Name: "Ada Admin", Email: "admin@fixit.dev", Role: notification.RoleAdmin, Password: devPassword},
		{ID: "2", Name: "Pat Provider", Email: "provider@fixit.dev", Role: notification.RoleProvider, Password: devPassword},
		{ID: "3", Name: "Casey Customer", Email: "customer@fixit.dev", Role: notification.RoleCustomer, Password: devPassword},
	}
}

type Directory struct {
	byEmail map[string]User
	byID    map[notification.ID]User
}

func NewDirectory(users []User) *Directory {
	d := &Directory{
		byEmail: make(map[string]User, len(users)),
		byID:    make(map[notification.ID]User, len(users)),
	}
	for _, u := range users {
		d.byEmail[strings.ToLower(u.Email)] = u
		d.byID[u.ID] = u
	}
	return d
}

func (d *Directory) Authenticate(email string, password string) (User, bool) {
	u, ok := d.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return User{}, false
	}
	if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
		return User{}, false
	}
	return u, true
}

func (d *Directory) Get(id notification.ID) (User, bool) {
	u, ok := d.byID[id]
	return u, ok
}
