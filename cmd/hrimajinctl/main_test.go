package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("UPLOAD_DIR", t.TempDir())

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSeedAndListDefaultCards(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cli.db")

	out, err := runCLI(t, "--driver", "sqlite", "--db", dbPath, "seed")
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if !strings.Contains(out, "seeded 4 of 4 cards") {
		t.Fatalf("unexpected seed output %q", out)
	}

	out, err = runCLI(t, "--driver", "sqlite", "--db", dbPath, "seed")
	if err != nil {
		t.Fatalf("reseed failed: %v", err)
	}
	if !strings.Contains(out, "seeded 0 of 4 cards") {
		t.Fatalf("expected reseed to skip existing cards, got %q", out)
	}

	out, err = runCLI(t, "--driver", "sqlite", "--db", dbPath, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, title := range []string{"Tentang Kami", "Layanan", "Portfolio", "Kontak"} {
		if !strings.Contains(out, title) {
			t.Fatalf("expected %q in list output:\n%s", title, out)
		}
	}
}

func TestSeedFileAndCheckPath(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cli.db")
	seedPath := filepath.Join(dir, "cards.yaml")
	content := `cards:
  - title: Promo
    link: https://shop.example/promo
    image_url: https://images.example/promo.jpg
    direct_path: Promo
    direct_link_enabled: true
`
	if err := os.WriteFile(seedPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}

	if _, err := runCLI(t, "--driver", "sqlite", "--db", dbPath, "seed", "--file", seedPath); err != nil {
		t.Fatalf("seed from file failed: %v", err)
	}

	tests := []struct {
		slug string
		want string
	}{
		{slug: "promo", want: "promo: unavailable (taken)"},
		{slug: "/fresh", want: "fresh: available"},
		{slug: "login", want: "login: unavailable (reserved)"},
		{slug: "a", want: "a: unavailable (invalid)"},
	}
	for _, tt := range tests {
		out, err := runCLI(t, "--driver", "sqlite", "--db", dbPath, "check-path", tt.slug)
		if err != nil {
			t.Fatalf("check-path %s failed: %v", tt.slug, err)
		}
		if !strings.Contains(out, tt.want) {
			t.Fatalf("expected %q, got %q", tt.want, out)
		}
	}
}

func TestLoadSeedFileRejectsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("cards: []\n"), 0o644); err != nil {
		t.Fatalf("failed to write seed file: %v", err)
	}
	if _, err := loadSeedFile(path); err == nil {
		t.Fatal("expected error for empty seed file")
	}
}

func TestHashPasswordCommand(t *testing.T) {
	out, err := runCLI(t, "hash-password", "rahasia")
	if err != nil {
		t.Fatalf("hash-password failed: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "$2a$") {
		t.Fatalf("expected bcrypt hash, got %q", out)
	}
}
