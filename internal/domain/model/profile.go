// Пакет model — доменные модели Portal Module.
package model

import "time"

// Profile — профиль пользователя платформы.
// Хранится в таблице profiles внешнего хранилища; аккаунт (credentials)
// принадлежит внешнему auth-сервису и здесь не хранится.
type Profile struct {
	// ID — идентификатор пользователя в auth-сервисе (sub).
	ID string
	// FirstName — имя.
	FirstName string
	// LastName — фамилия.
	LastName string
	// Email — адрес электронной почты.
	Email string
	// AvatarURL — ссылка на аватар (может быть пустой).
	AvatarURL string
	// UserType — роль пользователя (participant, organizer, admin).
	// Авторитетный источник роли: эта колонка, не claim токена.
	UserType string
	// Status — статус аккаунта (active, suspended, pending).
	Status string
	// CreatedAt — время создания профиля.
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time
}

// FullName возвращает полное имя пользователя.
func (p *Profile) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	default:
		return p.FirstName + " " + p.LastName
	}
}
