// Пакет i18n — переводы интерфейса портала.
// Каталоги сообщений (плоский JSON key→строка) встроены в бинарник
// и загружаются при старте; язык запроса кладётся в контекст
// middleware'ом и читается компонентами через T/Tf.
// Платформа двуязычная: английский и португальский (бразильская
// аудитория оригинала).
package i18n

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/text/language"
)

// DefaultLang — язык по умолчанию и язык fallback-переводов.
const DefaultLang = "en"

// langCodes — коды поддерживаемых языков. Порядок согласован
// с supportedTags: индекс matcher'а указывает в этот срез.
var langCodes = []string{"en", "pt"}

var supportedTags = []language.Tag{
	language.English,
	language.Portuguese,
}

var matcher = language.NewMatcher(supportedTags)

// IsSupported сообщает, поддерживается ли код языка.
func IsSupported(code string) bool {
	for _, c := range langCodes {
		if c == code {
			return true
		}
	}
	return false
}

// MatchLanguage выбирает поддерживаемый язык по заголовку Accept-Language.
func MatchLanguage(acceptLanguage string) string {
	_, idx := language.MatchStrings(matcher, acceptLanguage)
	return langCodes[idx]
}

type langKey struct{}

// WithLang кладёт код языка в контекст запроса.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFromContext возвращает язык запроса либо DefaultLang.
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(langKey{}).(string); ok && lang != "" {
		return lang
	}
	return DefaultLang
}

// Bundle — каталоги переводов всех языков.
// Заполняется при старте приложения, далее только читается.
type Bundle struct {
	mu     sync.RWMutex
	byLang map[string]map[string]string
	logger *slog.Logger
}

// NewBundle создаёт Bundle без каталогов.
func NewBundle(logger *slog.Logger) *Bundle {
	return &Bundle{
		byLang: make(map[string]map[string]string),
		logger: logger,
	}
}

// LoadMessages разбирает плоский JSON-каталог и регистрирует его
// под указанным кодом языка, заменяя прежний каталог целиком.
func (b *Bundle) LoadMessages(lang string, data []byte) error {
	var msgs map[string]string
	if err := json.Unmarshal(data, &msgs); err != nil {
		return fmt.Errorf("i18n: каталог %s: %w", lang, err)
	}

	b.mu.Lock()
	b.byLang[lang] = msgs
	b.mu.Unlock()

	if b.logger != nil {
		b.logger.Info("i18n каталог загружен",
			slog.String("lang", lang),
			slog.Int("keys", len(msgs)),
		)
	}
	return nil
}

func (b *Bundle) lookup(lang, key string) (string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	msg, ok := b.byLang[lang][key]
	return msg, ok
}

// Translate возвращает перевод ключа для языка. Отсутствующий ключ
// ищется в каталоге DefaultLang; если его нет и там — возвращается
// сам ключ, чтобы дыра в каталоге была видна на странице.
func (b *Bundle) Translate(lang, key string) string {
	if msg, ok := b.lookup(lang, key); ok {
		return msg
	}
	if lang != DefaultLang {
		if msg, ok := b.lookup(DefaultLang, key); ok {
			return msg
		}
	}
	return key
}

// Translatef — Translate с подстановкой аргументов.
// Формат-строки живут в JSON-каталогах, статической printf-проверке
// они недоступны, поэтому Sprintf вызывается через переменную.
func (b *Bundle) Translatef(lang, key string, args ...any) string {
	msg := b.Translate(lang, key)
	if len(args) == 0 {
		return msg
	}
	return sprintf(msg, args...)
}

var sprintf = fmt.Sprintf

// --- Глобальный Bundle ---

var (
	global     *Bundle
	globalOnce sync.Once
)

// Init создаёт глобальный Bundle (однократно) и возвращает его.
func Init(logger *slog.Logger) *Bundle {
	globalOnce.Do(func() {
		global = NewBundle(logger)
	})
	return global
}

// GetBundle возвращает глобальный Bundle; nil до вызова Init.
func GetBundle() *Bundle {
	return global
}

// T — перевод ключа для языка из контекста.
// Основной вход для компонентов страниц.
func T(ctx context.Context, key string) string {
	if global == nil {
		return key
	}
	return global.Translate(LangFromContext(ctx), key)
}

// Tf — T с аргументами формата.
func Tf(ctx context.Context, key string, args ...any) string {
	if global == nil {
		if len(args) == 0 {
			return key
		}
		return sprintf(key, args...)
	}
	return global.Translatef(LangFromContext(ctx), key, args...)
}
