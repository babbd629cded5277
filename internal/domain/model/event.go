package model

import "time"

// Статусы события. Жизненный цикл: draft → pending → published → active →
// completed. Модератор может перевести pending в rejected, любое
// незавершённое — в cancelled.
const (
	EventStatusDraft     = "draft"
	EventStatusPending   = "pending"
	EventStatusPublished = "published"
	EventStatusActive    = "active"
	EventStatusRejected  = "rejected"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
)

// IsValidEventStatus проверяет, является ли строка допустимым статусом события.
func IsValidEventStatus(status string) bool {
	switch status {
	case EventStatusDraft, EventStatusPending, EventStatusPublished,
		EventStatusActive, EventStatusRejected, EventStatusCompleted,
		EventStatusCancelled:
		return true
	}
	return false
}

// Типы событий.
const (
	EventTypeHackathon  = "hackathon"
	EventTypeIdeathon   = "ideathon"
	EventTypeWorkshop   = "workshop"
	EventTypeConference = "conference"
	EventTypeMeetup     = "meetup"
)

// Форматы проведения.
const (
	EventFormatPresential = "presential"
	EventFormatOnline     = "online"
	EventFormatHybrid     = "hybrid"
)

// Event — событие платформы (хакатон, идеатон, воркшоп).
// Хранится в таблице events; категории — many-to-many через event_categories,
// денормализуются в Categories при чтении.
type Event struct {
	// ID — UUID события.
	ID string
	// OrganizerID — идентификатор организатора (profiles.id).
	OrganizerID string
	// Name — название события.
	Name string
	// Description — описание.
	Description string
	// EventType — тип (hackathon, ideathon, workshop, conference, meetup).
	EventType string
	// Format — формат проведения (presential, online, hybrid).
	Format string
	// Location — место проведения (для presential/hybrid).
	Location string
	// OnlineURL — ссылка на трансляцию (для online/hybrid).
	OnlineURL string
	// StartDate — начало события.
	StartDate time.Time
	// EndDate — окончание события.
	EndDate time.Time
	// CoverImageURL — обложка (может быть пустой).
	CoverImageURL string
	// MaxParticipants — лимит участников (0 — без лимита).
	MaxParticipants int
	// MaxTeamSize — максимальный размер команды (0 — без лимита).
	MaxTeamSize int
	// IsFeatured — событие продвигается на главной странице.
	IsFeatured bool
	// Status — статус события.
	Status string
	// Categories — денормализованный список имён категорий.
	Categories []string
	// CreatedAt — время создания записи.
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time
}

// Category — категория событий (таблица categories).
type Category struct {
	// ID — UUID категории.
	ID string
	// Name — имя категории.
	Name string
}
