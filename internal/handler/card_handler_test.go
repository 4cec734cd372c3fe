package handler

import (
	"net/http"
	"strings"
	"testing"
)

func TestCardCRUDFlow(t *testing.T) {
	s, cleanup := setupTestServer(t, false)
	defer cleanup()

	w := s.do(t, http.MethodPost, "/api/cards", map[string]interface{}{
		"title":        "Tentang Kami",
		"link":         "/about",
		"description":  "Kenali **kami**",
		"imageDataUrl": pngDataURL(t, 6, 4),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	var created cardResponse
	decode(t, w, &created)
	if created.Card.ID == "" || created.Card.Title != "Tentang Kami" {
		t.Fatalf("unexpected created card %+v", created.Card)
	}
	if !strings.HasPrefix(created.Card.ImageSrc, "/uploads/cards/") {
		t.Fatalf("expected bucket image url, got %q", created.Card.ImageSrc)
	}
	if created.Card.ImageWidth != 6 || created.Card.ImageHeight != 4 {
		t.Fatalf("expected 6x4 image, got %dx%d", created.Card.ImageWidth, created.Card.ImageHeight)
	}
	if !strings.Contains(string(created.Card.DescriptionHTML), "<strong>kami</strong>") {
		t.Fatalf("expected rendered markdown, got %q", created.Card.DescriptionHTML)
	}
	if created.Card.DirectPath != nil {
		t.Fatalf("expected null direct path, got %v", *created.Card.DirectPath)
	}

	w = s.do(t, http.MethodGet, "/api/cards", nil)
	var list cardListResponse
	decode(t, w, &list)
	if w.Code != http.StatusOK || len(list.Cards) != 1 {
		t.Fatalf("expected one card, got %d (%d)", len(list.Cards), w.Code)
	}

	w = s.do(t, http.MethodPut, "/api/cards/"+created.Card.ID, map[string]interface{}{
		"title":        "Tentang Kami Baru",
		"link":         "https://hrimajin.id/about",
		"imageDataUrl": created.Card.ImageSrc,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated cardResponse
	decode(t, w, &updated)
	if updated.Card.Title != "Tentang Kami Baru" || updated.Card.ImageSrc != created.Card.ImageSrc {
		t.Fatalf("expected title updated and image kept, got %+v", updated.Card)
	}

	w = s.do(t, http.MethodPut, "/api/cards", map[string]interface{}{
		"id":                created.Card.ID,
		"title":             "Promo",
		"link":              "/promo",
		"directLinkEnabled": true,
		"directPath":        "/promo",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected body id update to succeed, got %d: %s", w.Code, w.Body.String())
	}
	decode(t, w, &updated)
	if updated.Card.DirectPath == nil || *updated.Card.DirectPath != "promo" {
		t.Fatalf("expected sanitized direct path, got %+v", updated.Card.DirectPath)
	}

	w = s.do(t, http.MethodDelete, "/api/cards", map[string]string{"id": created.Card.ID})
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"success":true`) {
		t.Fatalf("expected delete success, got %d: %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodDelete, "/api/cards/"+created.Card.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing card, got %d", w.Code)
	}
}

func TestCreateCardValidation(t *testing.T) {
	s, cleanup := setupTestServer(t, false)
	defer cleanup()

	image := pngDataURL(t, 2, 2)
	if w := s.do(t, http.MethodPost, "/api/cards", map[string]interface{}{
		"title": "Promo", "link": "/promo", "imageDataUrl": image,
		"directLinkEnabled": true, "directPath": "promo",
	}); w.Code != http.StatusCreated {
		t.Fatalf("failed to create seed card: %d %s", w.Code, w.Body.String())
	}

	tests := []struct {
		name    string
		body    map[string]interface{}
		status  int
		message string
	}{
		{
			name:    "missing image",
			body:    map[string]interface{}{"title": "A", "link": "/a"},
			status:  http.StatusBadRequest,
			message: createRequiredMessage,
		},
		{
			name:    "missing title",
			body:    map[string]interface{}{"link": "/a", "imageDataUrl": image},
			status:  http.StatusBadRequest,
			message: createRequiredMessage,
		},
		{
			name:    "invalid link",
			body:    map[string]interface{}{"title": "A", "link": "ftp://files", "imageDataUrl": image},
			status:  http.StatusBadRequest,
			message: linkInvalidMessage,
		},
		{
			name:    "invalid data url",
			body:    map[string]interface{}{"title": "A", "link": "/a", "imageDataUrl": "data:image/png;base64,bm9wZQ=="},
			status:  http.StatusBadRequest,
			message: imageInvalidMessage,
		},
		{
			name: "reserved path",
			body: map[string]interface{}{
				"title": "A", "link": "/a", "imageDataUrl": image,
				"directLinkEnabled": true, "directPath": "Dashboard",
			},
			status:  http.StatusBadRequest,
			message: "Path ini ter-reserve sistem.",
		},
		{
			name: "taken path",
			body: map[string]interface{}{
				"title": "B", "link": "/b", "imageDataUrl": image,
				"directLinkEnabled": true, "directPath": "PROMO",
			},
			status:  http.StatusConflict,
			message: pathTakenMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/cards", tt.body)
			if w.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if got := errorMessage(t, w); got != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, got)
			}
		})
	}
}

func TestUpdateAndDeleteRequireID(t *testing.T) {
	s, cleanup := setupTestServer(t, false)
	defer cleanup()

	w := s.do(t, http.MethodPut, "/api/cards", map[string]interface{}{"title": "A", "link": "/a"})
	if w.Code != http.StatusBadRequest || errorMessage(t, w) != updateRequiredMessage {
		t.Fatalf("expected missing id error, got %d: %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodPut, "/api/cards/unknown", map[string]interface{}{"title": "A", "link": "/a"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown card, got %d", w.Code)
	}

	w = s.do(t, http.MethodDelete, "/api/cards", nil)
	if w.Code != http.StatusBadRequest || errorMessage(t, w) != deleteRequiredMessage {
		t.Fatalf("expected missing id error, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListCardsDegradesOnDatabaseError(t *testing.T) {
	s, cleanup := setupTestServer(t, false)
	defer cleanup()

	sqlDB, err := s.gdb.DB()
	if err != nil {
		t.Fatalf("failed to access sql db: %v", err)
	}
	sqlDB.Close()

	w := s.do(t, http.MethodGet, "/api/cards", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != `{"cards":[]}` {
		t.Fatalf("expected empty card list, got %s", w.Body.String())
	}
}
