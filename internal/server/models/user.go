// Серверные доменные модели: пользователь, встреча, временной интервал
package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Summary — краткие данные владельца для вложения во встречу.
func (u User) Summary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

type UserSummary struct {
	ID    uuid.UUID
	Name  string
	Email string
}
