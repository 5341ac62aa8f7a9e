//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestLogin_Success(t *testing.T) {
	resp := doPost(t, "/api/auth/login", map[string]string{
		"username": adminUsername,
		"password": adminPassword,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	lr := decodeJSON[loginResponse](t, resp)
	if lr.Access == "" {
		t.Error("access token is empty")
	}
	if lr.User.Username != adminUsername {
		t.Errorf("username: got %q, want %q", lr.User.Username, adminUsername)
	}
	if lr.User.Role != "admin" {
		t.Errorf("role: got %q, want admin", lr.User.Role)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	resp := doPost(t, "/api/auth/login", map[string]string{
		"username": adminUsername,
		"password": "not-the-password",
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	er := decodeJSON[errorResponse](t, resp)
	if er.Error.Code != "unauthorized" {
		t.Errorf("error code: got %q, want unauthorized", er.Error.Code)
	}
}

func TestProtectedRoute_NoToken(t *testing.T) {
	resp := doGet(t, "/api/products", "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestProtectedRoute_GarbageToken(t *testing.T) {
	resp := doGet(t, "/api/products", "not.a.jwt")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAdminStats(t *testing.T) {
	resp := doGet(t, "/api/admin/stats", adminToken(t))
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	stats := decodeJSON[statsResponse](t, resp)
	if stats.TotalOrganizations < 2 {
		t.Errorf("total_organizations: got %d, want >= 2", stats.TotalOrganizations)
	}
	if stats.TotalContacts < 3 {
		t.Errorf("total_contacts: got %d, want >= 3", stats.TotalContacts)
	}
	if stats.TotalProducts < 4 {
		t.Errorf("total_products: got %d, want >= 4", stats.TotalProducts)
	}
}
