// profile_test.go — unit-тесты сервиса профилей.
package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bigkaa/hackingtorch/portal-module/internal/domain/rbac"
)

// TestRegisterDefaults проверяет, что новый профиль получает роль
// participant и статус active.
func TestRegisterDefaults(t *testing.T) {
	repo := newFakeProfileRepo()
	svc := NewProfileService(repo, testLogger())

	p, err := svc.Register(context.Background(), "sub-1", "Ana", "Silva", "ana@test.lan")
	if err != nil {
		t.Fatalf("Register вернул ошибку: %v", err)
	}
	if p.UserType != rbac.RoleParticipant {
		t.Errorf("роль = %q, ожидалась participant", p.UserType)
	}
	if p.Status != rbac.StatusActive {
		t.Errorf("статус = %q, ожидался active", p.Status)
	}
}

// TestRegisterValidation проверяет обязательные поля.
func TestRegisterValidation(t *testing.T) {
	svc := NewProfileService(newFakeProfileRepo(), testLogger())

	tests := []struct {
		name      string
		id        string
		firstName string
		email     string
	}{
		{"пустой email", "sub-1", "Ana", ""},
		{"пустое имя", "sub-1", "  ", "ana@test.lan"},
		{"пустой subject", "", "Ana", "ana@test.lan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.id, tt.firstName, "Silva", tt.email)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("ожидалась ErrValidation, получено: %v", err)
			}
		})
	}
}

// TestRegisterDuplicateEmail проверяет конфликт при повторной регистрации.
func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewProfileService(newFakeProfileRepo(), testLogger())

	if _, err := svc.Register(context.Background(), "sub-1", "Ana", "Silva", "ana@test.lan"); err != nil {
		t.Fatalf("первая регистрация: %v", err)
	}
	if _, err := svc.Register(context.Background(), "sub-2", "Ana", "Souza", "ana@test.lan"); !errors.Is(err, ErrConflict) {
		t.Errorf("ожидалась ErrConflict, получено: %v", err)
	}
}

// TestUserRole проверяет чтение роли из хранилища профилей.
func TestUserRole(t *testing.T) {
	repo := newFakeProfileRepo(adminProfile("u1", "u1@test.lan", rbac.RoleAdmin))
	svc := NewProfileService(repo, testLogger())

	role, err := svc.UserRole(context.Background(), "u1")
	if err != nil {
		t.Fatalf("UserRole вернул ошибку: %v", err)
	}
	if role != rbac.RoleAdmin {
		t.Errorf("роль = %q, ожидалась admin", role)
	}

	if _, err := svc.UserRole(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ожидалась ErrNotFound, получено: %v", err)
	}

	// Ошибка хранилища пробрасывается наверх: guard трактует её как отказ.
	repo.err = errors.New("connection reset")
	if _, err := svc.UserRole(context.Background(), "u1"); err == nil {
		t.Error("ожидалась ошибка при недоступном хранилище")
	}
}
