package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"sitepages/internal/domain"
	"sitepages/internal/render"
	"sitepages/internal/service"
)

func newPageService(store *memoryStore, emitter service.EventEmitter) *service.PageService {
	reg := testRegistry()
	r := render.New(reg, render.Options{Logger: zerolog.Nop()})
	return service.NewPageService(store, r, service.PageServiceOptions{
		Defaults: map[string]domain.SEODefaults{
			"home_page": {Title: "Home", Description: "Welcome"},
		},
		Lang:    "en",
		Emitter: emitter,
		Logger:  zerolog.Nop(),
	})
}

func TestPageService_DocumentAppliesDefaults(t *testing.T) {
	store := newMemoryStore()
	store.docs["home_page"] = domain.PageDocument{
		Blocks:   []domain.BlockInstance{{ID: "a", Type: "note", Data: domain.BlockData{"text": "x"}}},
		SEOTitle: "Custom",
	}
	svc := newPageService(store, &service.MockEmitter{})

	doc, err := svc.Document(context.Background(), "home_page")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.SEOTitle != "Custom" {
		t.Errorf("stored title overridden: %q", doc.SEOTitle)
	}
	if doc.SEODescription != "Welcome" {
		t.Errorf("description default not applied: %q", doc.SEODescription)
	}
	if store.docs["home_page"].SEODescription != "" {
		t.Error("defaults must not be written back to the store")
	}
}

func TestPageService_KnownPageNeverSaved(t *testing.T) {
	svc := newPageService(newMemoryStore(), &service.MockEmitter{})

	doc, err := svc.Document(context.Background(), "home_page")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if len(doc.Blocks) != 0 || doc.Blocks == nil {
		t.Errorf("expected empty non-nil block list, got %#v", doc.Blocks)
	}
	if doc.SEOTitle != "Home" {
		t.Errorf("SEOTitle = %q, want Home", doc.SEOTitle)
	}
}

func TestPageService_UnknownPage(t *testing.T) {
	svc := newPageService(newMemoryStore(), &service.MockEmitter{})

	doc, err := svc.Document(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.Blocks == nil || len(doc.Blocks) != 0 || doc.SEOTitle != "" {
		t.Errorf("expected empty document, got %#v", doc)
	}

	page, err := svc.Render(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if page.Found {
		t.Error("unknown page reported as found")
	}

	_, err = svc.RenderHTML(context.Background(), "nowhere")
	if !errors.Is(err, service.ErrPageNotFound) {
		t.Fatalf("err = %v, want ErrPageNotFound", err)
	}
}

func TestPageService_SetDefaults(t *testing.T) {
	emitter := &service.MockEmitter{}
	svc := newPageService(newMemoryStore(), emitter)

	svc.SetDefaults(map[string]domain.SEODefaults{"pricing_page": {Title: "Pricing"}})

	if _, ok := svc.Defaults("home_page"); ok {
		t.Error("old defaults should be replaced")
	}
	doc, err := svc.Document(context.Background(), "pricing_page")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc.SEOTitle != "Pricing" {
		t.Errorf("SEOTitle = %q", doc.SEOTitle)
	}
	if emitter.Count(service.EventDefaultsReloaded) != 1 {
		t.Error("expected defaults reload event")
	}
}

func TestPageService_RenderHTML(t *testing.T) {
	store := newMemoryStore()
	store.docs["home_page"] = domain.PageDocument{Blocks: []domain.BlockInstance{
		{ID: "a", Type: "note", Data: domain.BlockData{"text": "first"}},
		{ID: "b", Type: "gone", Data: domain.BlockData{}},
		{ID: "c", Type: "note", Data: domain.BlockData{"text": "second"}},
	}}
	svc := newPageService(store, &service.MockEmitter{})

	page, err := svc.Render(context.Background(), "home_page")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(page.Result.Blocks) != 2 || len(page.Result.Diagnostics) != 1 {
		t.Fatalf("blocks=%d diagnostics=%d", len(page.Result.Blocks), len(page.Result.Diagnostics))
	}

	html, err := svc.RenderHTML(context.Background(), "home_page")
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	out := string(html)
	for _, want := range []string{"<title>Home</title>", `content="Welcome"`, "<p>first</p>", "<p>second</p>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Index(out, "first") > strings.Index(out, "second") {
		t.Error("blocks out of order")
	}
}

func TestPageService_List(t *testing.T) {
	store := newMemoryStore()
	store.docs["about_page"] = domain.PageDocument{Blocks: []domain.BlockInstance{}}
	svc := newPageService(store, &service.MockEmitter{})

	pages, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(pages) != 1 || pages[0].PageKey != "about_page" {
		t.Errorf("pages = %#v", pages)
	}
}
