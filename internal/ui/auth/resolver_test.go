package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// testKeyID — идентификатор ключа для тестов.
const testKeyID = "test-key-ht"

const testIssuer = "https://auth.test/auth/v1"

// generateTestKey генерирует RSA ключ для тестов.
func generateTestKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

// buildJWKSetJSON строит JWKS JSON из RSA публичного ключа.
func buildJWKSetJSON(pub *rsa.PublicKey, kid string) json.RawMessage {
	nB64 := base64.RawURLEncoding.EncodeToString(pub.N.Bytes())
	eB64 := base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes())

	jwks := map[string]any{
		"keys": []map[string]any{
			{
				"kty": "RSA",
				"kid": kid,
				"use": "sig",
				"alg": "RS256",
				"n":   nB64,
				"e":   eB64,
			},
		},
	}

	data, _ := json.Marshal(jwks)
	return data
}

// testLogger создаёт logger для тестов.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestResolver создаёт резолвер с mock JWKS.
func newTestResolver(t *testing.T, key *rsa.PrivateKey) *Resolver {
	t.Helper()
	jwksJSON := buildJWKSetJSON(&key.PublicKey, testKeyID)
	kf, err := keyfunc.NewJWKSetJSON(jwksJSON)
	if err != nil {
		t.Fatalf("не удалось создать keyfunc: %v", err)
	}

	return NewResolverWithKeyfunc(kf, testIssuer, testLogger())
}

// generateToken генерирует JWT auth-сервиса для тестов.
func generateToken(t *testing.T, key *rsa.PrivateKey, sub, email, role string, expired bool) string {
	t.Helper()

	exp := time.Now().Add(time.Hour)
	if expired {
		exp = time.Now().Add(-time.Hour)
	}

	claims := jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"iss":   testIssuer,
		"exp":   jwt.NewNumericDate(exp),
		"nbf":   jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		"iat":   jwt.NewNumericDate(time.Now()),
	}
	if role != "" {
		claims["user_metadata"] = map[string]any{
			"user_type": role,
		}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKeyID
	tokenStr, err := token.SignedString(key)
	if err != nil {
		t.Fatal(err)
	}
	return tokenStr
}

// TestResolveValidToken проверяет извлечение личности из валидного токена.
func TestResolveValidToken(t *testing.T) {
	key := generateTestKey(t)
	rs := newTestResolver(t, key)

	session := &SessionData{
		AccessToken: generateToken(t, key, "user-1", "maria@example.com", "organizer", false),
	}

	identity := rs.Resolve(context.Background(), session)
	if identity == nil {
		t.Fatal("Ожидалась личность, получен nil")
	}
	if identity.Subject != "user-1" {
		t.Errorf("Subject = %q, хотели user-1", identity.Subject)
	}
	if identity.Email != "maria@example.com" {
		t.Errorf("Email = %q, хотели maria@example.com", identity.Email)
	}
	if identity.Role != "organizer" {
		t.Errorf("Role = %q, хотели organizer", identity.Role)
	}
}

// TestResolveExpiredToken проверяет fail closed для истёкшего токена.
func TestResolveExpiredToken(t *testing.T) {
	key := generateTestKey(t)
	rs := newTestResolver(t, key)

	session := &SessionData{
		AccessToken: generateToken(t, key, "user-1", "maria@example.com", "participant", true),
	}

	if identity := rs.Resolve(context.Background(), session); identity != nil {
		t.Errorf("Ожидался nil для истёкшего токена, получено: %+v", identity)
	}
}

// TestResolveWrongSignature проверяет fail closed для чужой подписи.
func TestResolveWrongSignature(t *testing.T) {
	key := generateTestKey(t)
	otherKey := generateTestKey(t)
	rs := newTestResolver(t, key)

	// Токен подписан другим ключом
	session := &SessionData{
		AccessToken: generateToken(t, otherKey, "user-1", "maria@example.com", "admin", false),
	}

	if identity := rs.Resolve(context.Background(), session); identity != nil {
		t.Errorf("Ожидался nil для токена с чужой подписью, получено: %+v", identity)
	}
}

// TestResolveWrongIssuer проверяет fail closed для чужого issuer.
func TestResolveWrongIssuer(t *testing.T) {
	key := generateTestKey(t)
	jwksJSON := buildJWKSetJSON(&key.PublicKey, testKeyID)
	kf, err := keyfunc.NewJWKSetJSON(jwksJSON)
	if err != nil {
		t.Fatalf("не удалось создать keyfunc: %v", err)
	}
	rs := NewResolverWithKeyfunc(kf, "https://other-issuer.test", testLogger())

	session := &SessionData{
		AccessToken: generateToken(t, key, "user-1", "maria@example.com", "participant", false),
	}

	if identity := rs.Resolve(context.Background(), session); identity != nil {
		t.Errorf("Ожидался nil для токена с чужим issuer, получено: %+v", identity)
	}
}

// TestResolveNilSession проверяет анонимный запрос.
func TestResolveNilSession(t *testing.T) {
	key := generateTestKey(t)
	rs := newTestResolver(t, key)

	if identity := rs.Resolve(context.Background(), nil); identity != nil {
		t.Error("Ожидался nil для отсутствующей сессии")
	}
	if identity := rs.Resolve(context.Background(), &SessionData{}); identity != nil {
		t.Error("Ожидался nil для сессии без токена")
	}
}

// TestResolveGarbageToken проверяет fail closed для мусорного токена.
func TestResolveGarbageToken(t *testing.T) {
	key := generateTestKey(t)
	rs := newTestResolver(t, key)

	session := &SessionData{AccessToken: "not-a-jwt-at-all"}
	if identity := rs.Resolve(context.Background(), session); identity != nil {
		t.Error("Ожидался nil для мусорного токена")
	}
}

// TestResolveWithoutRole проверяет токен без user_metadata.
func TestResolveWithoutRole(t *testing.T) {
	key := generateTestKey(t)
	rs := newTestResolver(t, key)

	session := &SessionData{
		AccessToken: generateToken(t, key, "user-2", "joao@example.com", "", false),
	}

	identity := rs.Resolve(context.Background(), session)
	if identity == nil {
		t.Fatal("Ожидалась личность, получен nil")
	}
	if identity.Role != "" {
		t.Errorf("Role = %q, хотели пустую строку", identity.Role)
	}
}
