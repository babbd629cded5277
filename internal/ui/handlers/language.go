// language.go — переключение языка интерфейса.
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/bigkaa/hackingtorch/portal-module/internal/ui/i18n"
)

const langCookieMaxAge = 365 * 24 * time.Hour

// HandleSetLanguage обрабатывает POST /set-language: сохраняет выбранный
// язык в cookie и возвращает посетителя на страницу, с которой он пришёл.
// Неизвестный код языка заменяется языком по умолчанию.
func HandleSetLanguage(w http.ResponseWriter, r *http.Request) {
	lang := r.FormValue("lang")
	if !i18n.IsSupported(lang) {
		lang = i18n.DefaultLang
	}

	http.SetCookie(w, &http.Cookie{
		Name:  i18n.LangCookieName,
		Value: lang,
		Path:  "/",
		// HttpOnly не ставим: переключатель в шапке подсвечивает
		// текущий язык на клиенте
		MaxAge:   int(langCookieMaxAge.Seconds()),
		Expires:  time.Now().Add(langCookieMaxAge),
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, returnPath(r), http.StatusSeeOther)
}

// returnPath — локальный путь возврата после смены языка.
// Внешние Referer не принимаются, чтобы не стать open redirect.
func returnPath(r *http.Request) string {
	ref := r.Header.Get("Referer")
	if u, err := r.URL.Parse(ref); err == nil && ref != "" {
		if u.Host == "" || u.Host == r.Host {
			if strings.HasPrefix(u.Path, "/") {
				target := u.Path
				if u.RawQuery != "" {
					target += "?" + u.RawQuery
				}
				return target
			}
		}
	}
	return "/"
}
