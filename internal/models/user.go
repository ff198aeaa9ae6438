package models

// Role - роль пользователя в системе
type Role string

const (
	RoleOperator Role = "operator"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleOperator || r == RoleAdmin
}

// User - учетная запись оператора или администратора
type User struct {
	ID             int64  `db:"id" json:"id"`
	Email          string `db:"email" json:"email"`
	Name           string `db:"name" json:"name"`
	Role           Role   `db:"role" json:"role"`
	HashedPassword string `db:"hashed_password" json:"-"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserSummary - краткая информация об авторе инцидента
type UserSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}
