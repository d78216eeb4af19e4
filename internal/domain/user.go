package domain

import "time"

type Role string

const (
	RoleStandard Role = "standard"
	RoleRedactor Role = "redactor"
)

func (r Role) Valid() bool {
	return r == RoleStandard || r == RoleRedactor
}

type User struct {
	ID        int64
	Username  string
	Role      Role
	Staff     bool
	CreatedAt time.Time
}

// Identity is the authenticated caller, threaded explicitly through every
// core call.
type Identity struct {
	UserID int64
	Role   Role
	Staff  bool
}

func (i Identity) IsRedactor() bool {
	return i.Role == RoleRedactor
}

// UserView is the public shape of a user. Redactors carry their assigned
// tags; standard users never expose the field.
type UserView struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Role         Role   `json:"role"`
	AssignedTags []Tag  `json:"assigned_tags,omitempty"`
}

func StandardView(u *User) UserView {
	return UserView{ID: u.ID, Username: u.Username, Role: u.Role}
}

func RedactorView(u *User, tags []Tag) UserView {
	v := StandardView(u)
	v.AssignedTags = tags
	if v.AssignedTags == nil {
		v.AssignedTags = []Tag{}
	}
	return v
}
