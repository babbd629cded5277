// Пакет static — статические ресурсы портала, встроенные в бинарник.
package static

import (
	"embed"
	"net/http"
)

//go:embed css/*.css js/*.js
var assets embed.FS

// FileSystem возвращает файловую систему ассетов для раздачи
// по маршруту /static/* (css/portal.css, js/htmx.min.js).
func FileSystem() http.FileSystem {
	return http.FS(assets)
}
