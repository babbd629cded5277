// middleware.go — определение языка запроса.
package i18n

import "net/http"

// LangCookieName — cookie с явно выбранным пользователем языком.
const LangCookieName = "lang"

// Middleware кладёт язык запроса в контекст.
// Приоритет: cookie → Accept-Language → DefaultLang.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithLang(r.Context(), requestLang(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestLang(r *http.Request) string {
	if c, err := r.Cookie(LangCookieName); err == nil && IsSupported(c.Value) {
		return c.Value
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		return MatchLanguage(accept)
	}
	return DefaultLang
}
