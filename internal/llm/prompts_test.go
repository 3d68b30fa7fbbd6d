package llm

import (
	"strings"
	"testing"
)

func TestSanitizeCategoryLine(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Images : Photos", want: "Images : Photos"},
		{name: "surrounding whitespace", in: "  \n Images : Photos \n", want: "Images : Photos"},
		{name: "chatty prefix", in: "Sure, here you go:\nImages : Photos", want: "Images : Photos"},
		{name: "parenthetical", in: "Archives : Backups (compressed)", want: "Archives : Backups"},
		{name: "second line ignored", in: "Music : Albums\nVideos : Clips", want: "Music : Albums"},
		{name: "no colon", in: "Documents", want: "Documents"},
		{name: "empty", in: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeCategoryLine(tt.in); got != tt.want {
				t.Errorf("SanitizeCategoryLine(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildCategorizationPrompt(t *testing.T) {
	file := BuildCategorizationPrompt("a.txt", "/x/a.txt", false, "")
	if !strings.HasPrefix(file, "Categorize this file:") || !strings.Contains(file, "Full path: /x/a.txt") {
		t.Errorf("file prompt = %q", file)
	}

	dir := BuildCategorizationPrompt("photos", "", true, "Use German for both the main category and subcategory names.")
	if !strings.HasPrefix(dir, "Categorize the directory:") {
		t.Errorf("dir prompt = %q", dir)
	}
	if strings.Contains(dir, "Full path") {
		t.Error("empty path should be omitted")
	}
	if !strings.HasSuffix(dir, "subcategory names.\n") {
		t.Errorf("extra context not appended: %q", dir)
	}
}

func TestDecodeJSON(t *testing.T) {
	type item struct {
		ID string `json:"id"`
	}

	tests := []struct {
		name    string
		in      string
		wantLen int
		wantErr bool
	}{
		{name: "bare array", in: `[{"id":"a"},{"id":"b"}]`, wantLen: 2},
		{name: "code fence", in: "```json\n[{\"id\":\"a\"}]\n```", wantLen: 1},
		{name: "leading prose", in: `Here you go: [{"id":"a"},{"id":"b"},{"id":"c"}] done`, wantLen: 3},
		{name: "empty", in: "  ", wantErr: true},
		{name: "not json", in: "no json here", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []item
			err := DecodeJSON(tt.in, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(got) != tt.wantLen {
				t.Errorf("DecodeJSON() len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestDecodeJSON_Object(t *testing.T) {
	var got struct {
		Harmonized []struct {
			ID string `json:"id"`
		} `json:"harmonized"`
	}
	if err := DecodeJSON(`Result: {"harmonized":[{"id":"x"}]}`, &got); err != nil {
		t.Fatalf("DecodeJSON() error = %v", err)
	}
	if len(got.Harmonized) != 1 || got.Harmonized[0].ID != "x" {
		t.Errorf("DecodeJSON() = %+v", got)
	}
}
