package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTokenRoundtrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if _, err := loadToken(); err == nil {
		t.Fatal("expected error before any login")
	}

	exp := time.Now().Add(time.Hour)
	if err := saveToken("tok-abc", exp); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := loadToken()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "tok-abc" {
		t.Fatalf("token want tok-abc, got %q", got)
	}
}

func TestTokenExpired(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := saveToken("stale", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := loadToken(); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestListQuery(t *testing.T) {
	tests := []struct {
		status, seller, want string
	}{
		{"", "", ""},
		{"active", "", "?status=active"},
		{"", "core1abc", "?seller=core1abc"},
		{"ended", "core1abc", "?status=ended&seller=core1abc"},
	}
	for _, tt := range tests {
		if got := listQuery(tt.status, tt.seller); got != tt.want {
			t.Errorf("listQuery(%q, %q) = %q, want %q", tt.status, tt.seller, got, tt.want)
		}
	}
}

func TestClientDo(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if err := saveToken("tok-xyz", time.Now().Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte(`{"fine":true}`))
		case "/fail":
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"already ended"}`))
		}
	}))
	defer srv.Close()

	c := newClient(srv.URL)

	raw, err := c.do(http.MethodGet, "/ok", nil, true)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if string(raw) != `{"fine":true}` {
		t.Fatalf("unexpected body %s", raw)
	}
	if gotAuth != "Bearer tok-xyz" {
		t.Fatalf("authorization header %q", gotAuth)
	}

	_, err = c.do(http.MethodPost, "/fail", map[string]int{"x": 1}, false)
	if err == nil {
		t.Fatal("expected error on 409")
	}
	if want := "already ended"; !strings.Contains(err.Error(), want) {
		t.Fatalf("error %q does not mention %q", err, want)
	}
}
