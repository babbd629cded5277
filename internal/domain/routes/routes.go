// Пакет routes — статическая классификация маршрутов портала.
// Каждому префиксу пути соответствует требуемый уровень доступа.
// Таблица неизменяема во время работы: изменение набора защищённых
// маршрутов требует пересборки и редеплоя.
package routes

import "strings"

// Level — требуемый уровень доступа для маршрута.
type Level int

const (
	// LevelPublic — открытый маршрут, доступен всем.
	LevelPublic Level = iota
	// LevelAuthEntry — страницы входа/регистрации.
	// Аутентифицированные пользователи перенаправляются на /dashboard.
	LevelAuthEntry
	// LevelAuthenticated — требуется активная сессия.
	LevelAuthenticated
	// LevelAdmin — требуется сессия И роль admin.
	LevelAdmin
)

// String возвращает человекочитаемое имя уровня (для логов).
func (l Level) String() string {
	switch l {
	case LevelAuthEntry:
		return "auth-entry"
	case LevelAuthenticated:
		return "authenticated"
	case LevelAdmin:
		return "admin"
	default:
		return "public"
	}
}

// rule — одно правило классификации: префикс пути → уровень.
type rule struct {
	prefix string
	level  Level
}

// rules — упорядоченная таблица правил. Выигрывает первое совпадение,
// поэтому более специфичные префиксы стоят раньше общих.
// Набор защищённых путей зафиксирован контрактом платформы.
var rules = []rule{
	{"/admin", LevelAdmin},
	{"/auth/login", LevelAuthEntry},
	{"/auth/register", LevelAuthEntry},
	{"/dashboard", LevelAuthenticated},
	{"/profile", LevelAuthenticated},
	{"/settings", LevelAuthenticated},
	{"/event/team", LevelAuthenticated},
	{"/event/submission", LevelAuthenticated},
	{"/event/certificate", LevelAuthenticated},
}

// Classify возвращает требуемый уровень доступа для пути.
// Путь сравнивается по префиксу; отсутствие совпадения — LevelPublic.
func Classify(path string) Level {
	for _, r := range rules {
		if strings.HasPrefix(path, r.prefix) {
			return r.level
		}
	}
	return LevelPublic
}
