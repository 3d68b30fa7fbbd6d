package service_test

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"filesorter-ai/internal/service"
	"filesorter-ai/internal/storage"
)

func TestHintHistory_Record(t *testing.T) {
	h := service.NewHintHistory()
	sig := "FILE:.pdf"

	for _, p := range []storage.CategoryPair{
		{Category: "A", Subcategory: "1"},
		{Category: "B", Subcategory: "2"},
		{Category: "C", Subcategory: "3"},
		{Category: "D", Subcategory: "4"},
		{Category: "E", Subcategory: "5"},
		{Category: "F", Subcategory: "6"},
		{Category: "C", Subcategory: "3"},
		{Category: " ", Subcategory: "ignored"},
	} {
		h.Record(sig, p)
	}

	got := h.Get(sig)
	want := []storage.CategoryPair{
		{Category: "C", Subcategory: "3"},
		{Category: "F", Subcategory: "6"},
		{Category: "E", Subcategory: "5"},
		{Category: "D", Subcategory: "4"},
		{Category: "B", Subcategory: "2"},
	}
	if len(got) != len(want) {
		t.Fatalf("Get() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Get()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if other := h.Get("DIR:<none>"); len(other) != 0 {
		t.Errorf("Get(other signature) = %v, want empty", other)
	}
}

func TestHintHistory_BlankSubcategoryTakesCategory(t *testing.T) {
	h := service.NewHintHistory()
	h.Record("FILE:.txt", storage.CategoryPair{Category: "Notes"})

	got := h.Get("FILE:.txt")
	if len(got) != 1 || got[0] != (storage.CategoryPair{Category: "Notes", Subcategory: "Notes"}) {
		t.Errorf("Get() = %v, want [Notes/Notes]", got)
	}
}

func TestOrchestrator_HintsFromSessionAndStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t)
	ctx := context.Background()

	// An older record for the same extension in another directory.
	if err := f.files.Upsert(ctx, &storage.FileRecord{
		DirPath: "/archive", FileName: "old.PDF", FileType: storage.FileTypeFile,
		Category: "Finance", Subcategory: "Invoices",
	}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	var prompts []string
	provider := localProvider(ctrl)
	provider.EXPECT().CategorizeFile(gomock.Any(), gomock.Any(), gomock.Any(), false, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ bool, hints string) (string, error) {
			prompts = append(prompts, hints)
			return "Documents : Reports", nil
		}).
		Times(2)

	orch := service.NewOrchestrator(provider, f.resolver, f.files, service.OrchestratorConfig{Hints: true})
	history := service.NewHintHistory()
	items := []service.Item{{Dir: "/d", Name: "a.pdf"}, {Dir: "/d", Name: "b.pdf"}}

	if _, err := orch.CategorizeAll(ctx, items, history, service.BatchOptions{}); err != nil {
		t.Fatalf("CategorizeAll() error = %v", err)
	}
	if len(prompts) != 2 {
		t.Fatalf("prompts = %d, want 2", len(prompts))
	}

	if !strings.Contains(prompts[0], "- Finance : Invoices") {
		t.Errorf("first prompt = %q, want the stored hint", prompts[0])
	}
	if strings.Contains(prompts[0], "Documents : Reports") {
		t.Errorf("first prompt = %q, want no session hint yet", prompts[0])
	}

	// The session assignment comes first, then the stored one.
	session := strings.Index(prompts[1], "- Documents : Reports")
	stored := strings.Index(prompts[1], "- Finance : Invoices")
	if session < 0 || stored < 0 || session > stored {
		t.Errorf("second prompt = %q, want session hint before stored hint", prompts[1])
	}
	if strings.Count(prompts[1], "Documents : Reports") != 1 {
		t.Errorf("second prompt = %q, want hints deduplicated", prompts[1])
	}
	if !strings.HasPrefix(prompts[1], "Recent assignments for similar items:") {
		t.Errorf("second prompt = %q, want the hint block header", prompts[1])
	}

	if got := history.Get("FILE:.pdf"); len(got) != 1 {
		t.Errorf("history = %v, want one pair", got)
	}
}

func TestOrchestrator_PromptContextOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t)

	var got string
	provider := localProvider(ctrl)
	provider.EXPECT().CategorizeFile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, _ bool, hints string) (string, error) {
			got = hints
			return "Documents : Reports", nil
		})

	history := service.NewHintHistory()
	history.Record("DIR:<none>", storage.CategoryPair{Category: "Projects", Subcategory: "Code"})

	orch := service.NewOrchestrator(provider, f.resolver, f.files, service.OrchestratorConfig{
		Hints:     true,
		Language:  "French",
		Whitelist: &service.Whitelist{Categories: []string{"Documents", "Projects"}},
	})
	orch.Categorize(context.Background(), service.Item{Dir: "/d", Name: "src", IsDir: true}, history, nil)

	lang := strings.Index(got, "Use French for both")
	wl := strings.Index(got, "Allowed main categories")
	anySub := strings.Index(got, "Allowed subcategories: any")
	hints := strings.Index(got, "- Projects : Code")
	if lang != 0 || wl < 0 || anySub < 0 || hints < 0 {
		t.Fatalf("context = %q, missing a block", got)
	}
	if !(lang < wl && wl < hints) {
		t.Errorf("context = %q, want language, whitelist, hints in that order", got)
	}
	if !strings.Contains(got, "1) Documents\n2) Projects") {
		t.Errorf("context = %q, want a numbered category list", got)
	}
}

func TestOrchestrator_EnglishAddsNoLanguageBlock(t *testing.T) {
	ctrl := gomock.NewController(t)
	f := newFixture(t)

	provider := localProvider(ctrl)
	provider.EXPECT().CategorizeFile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), "").
		Return("Documents : Reports", nil)

	orch := service.NewOrchestrator(provider, f.resolver, f.files, service.OrchestratorConfig{Language: "English"})
	if res := orch.Categorize(context.Background(), service.Item{Dir: "/d", Name: "a.txt"}, nil, nil); !res.OK() {
		t.Fatalf("Categorize() err = %v", res.Err)
	}
}
