// models.go — структуры запросов и ответов auth-сервиса.
package authsvc

// TokenResponse — ответ на успешную аутентификацию или обновление токена.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user,omitempty"`
}

// User — представление пользователя в auth-сервисе.
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
	CreatedAt    string         `json:"created_at"`
}

// signUpRequest — тело запроса регистрации.
type signUpRequest struct {
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Data     map[string]any `json:"data,omitempty"`
}

// passwordGrantRequest — тело запроса аутентификации по паролю.
type passwordGrantRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// refreshGrantRequest — тело запроса обновления токена.
type refreshGrantRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// recoverRequest — тело запроса восстановления пароля.
type recoverRequest struct {
	Email string `json:"email"`
}

// apiError — тело ошибки auth-сервиса.
type apiError struct {
	Code      int    `json:"code"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"msg"`
}
