// errors.go — сентинельные ошибки сервисного слоя.
package service

import "errors"

// Обработчики сопоставляют эти ошибки с HTTP-ответами:
// ErrNotFound — 404, ErrConflict — 409, ошибки валидации — 400.
// Детали добавляются через fmt.Errorf("%w: ...", ErrValidation).
var (
	ErrNotFound           = errors.New("запись не найдена")
	ErrConflict           = errors.New("запись уже существует")
	ErrValidation         = errors.New("некорректные входные данные")
	ErrInvalidRole        = errors.New("неизвестная роль пользователя")
	ErrInvalidStatus      = errors.New("неизвестный статус аккаунта")
	ErrInvalidEventStatus = errors.New("неизвестный статус мероприятия")
)
