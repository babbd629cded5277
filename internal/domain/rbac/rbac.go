// Пакет rbac — логика ролей пользователей платформы HackingTorch.
// Три роли в порядке возрастания привилегий: participant, organizer, admin.
// participant — обычный участник событий, organizer — создатель событий,
// admin — полный доступ к административной панели.
package rbac

// Роли в порядке возрастания привилегий.
const (
	RoleParticipant = "participant"
	RoleOrganizer   = "organizer"
	RoleAdmin       = "admin"
)

// roleWeight — вес роли для сравнения.
// Чем выше вес, тем больше привилегий.
var roleWeight = map[string]int{
	RoleParticipant: 1,
	RoleOrganizer:   2,
	RoleAdmin:       3,
}

// IsValidRole проверяет, является ли строка допустимой ролью.
func IsValidRole(role string) bool {
	_, ok := roleWeight[role]
	return ok
}

// IsAdmin проверяет, даёт ли роль доступ к административной панели.
// Только роль admin: organizer НЕ получает доступ к /admin.
func IsAdmin(role string) bool {
	return role == RoleAdmin
}

// HighestRole возвращает максимальную роль из набора.
// Неизвестные роли имеют вес 0 и никогда не выигрывают у известных.
// Если набор пуст — возвращает пустую строку.
func HighestRole(roles []string) string {
	if len(roles) == 0 {
		return ""
	}
	highest := roles[0]
	for _, r := range roles[1:] {
		highest = maxRole(highest, r)
	}
	return highest
}

// maxRole возвращает роль с максимальными привилегиями из двух.
func maxRole(a, b string) string {
	if roleWeight[a] >= roleWeight[b] {
		return a
	}
	return b
}

// Статусы аккаунта пользователя.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusPending   = "pending"
)

// IsValidStatus проверяет, является ли строка допустимым статусом аккаунта.
func IsValidStatus(status string) bool {
	switch status {
	case StatusActive, StatusSuspended, StatusPending:
		return true
	}
	return false
}
