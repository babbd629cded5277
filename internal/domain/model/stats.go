package model

import "time"

// PlatformStats — агрегированная статистика платформы для админской панели.
// Вычисляется по запросу, никогда не сохраняется. Агрегат строится по
// принципу «всё или ничего»: частично заполненная статистика не отдаётся.
type PlatformStats struct {
	// TotalUsers — всего зарегистрированных пользователей.
	TotalUsers int
	// TotalEvents — всего событий.
	TotalEvents int
	// ActiveEvents — событий в статусе active.
	ActiveEvents int
	// PendingEvents — событий, ожидающих модерации.
	PendingEvents int
	// TotalTeams — всего команд.
	TotalTeams int
	// TotalSubmissions — всего сабмитов проектов.
	TotalSubmissions int
}

// PlatformSettings — настройки платформы, управляемые из админской панели.
// Хранятся одной строкой в таблице platform_settings.
type PlatformSettings struct {
	// RegistrationOpen — открыта ли регистрация новых пользователей.
	RegistrationOpen bool
	// FeaturedLimit — сколько продвигаемых событий показывать на главной.
	FeaturedLimit int
	// MaintenanceMessage — сообщение о техработах (пустое — не показывается).
	MaintenanceMessage string
	// UpdatedAt — время последнего изменения настроек.
	UpdatedAt time.Time
}
