// dephealth_test.go — unit-тесты хелперов мониторинга зависимостей.
package service

import "testing"

// TestAuthHealthPath проверяет извлечение health path из JWKS URL.
func TestAuthHealthPath(t *testing.T) {
	tests := []struct {
		name     string
		jwksURL  string
		expected string
	}{
		{
			name:     "стандартный JWKS endpoint",
			jwksURL:  "https://auth.hackingtorch.lan/auth/v1/.well-known/jwks.json",
			expected: "/auth/v1/.well-known/jwks.json",
		},
		{
			name:     "JWKS в корне",
			jwksURL:  "https://auth.test/jwks",
			expected: "/jwks",
		},
		{
			name:     "URL без path — дефолтный /health",
			jwksURL:  "https://auth.test",
			expected: "/health",
		},
		{
			name:     "пустая строка — дефолтный /health",
			jwksURL:  "",
			expected: "/health",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := authHealthPath(tt.jwksURL)
			if got != tt.expected {
				t.Errorf("authHealthPath(%q) = %q, ожидалось %q", tt.jwksURL, got, tt.expected)
			}
		})
	}
}
