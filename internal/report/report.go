package report

import (
	"bytes"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"filesorter-ai/internal/storage"
	"filesorter-ai/internal/taxonomy"
)

// Renderer renders taxonomy reports as Markdown and HTML.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a Renderer with GFM tables enabled.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// Render returns the report as Markdown and as an HTML fragment.
func (r *Renderer) Render(entries []storage.TaxonomyEntry, aliases map[taxonomy.Key]int64) (string, []byte, error) {
	markdown := Markdown(entries, aliases)

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "", nil, fmt.Errorf("failed to render report: %w", err)
	}
	return markdown, buf.Bytes(), nil
}

// Page wraps an HTML fragment in a standalone document.
func Page(title string, fragment []byte) []byte {
	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n</head>\n<body>\n")
	b.Write(fragment)
	b.WriteString("</body>\n</html>\n")
	return b.Bytes()
}

// Markdown builds the report: a summary, the canonical entries ordered by
// frequency, and the aliases grouped under their entry.
func Markdown(entries []storage.TaxonomyEntry, aliases map[taxonomy.Key]int64) string {
	byEntry := make(map[int64][]taxonomy.Key)
	for key, id := range aliases {
		byEntry[id] = append(byEntry[id], key)
	}

	sorted := append([]storage.TaxonomyEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Frequency != sorted[j].Frequency {
			return sorted[i].Frequency > sorted[j].Frequency
		}
		return sorted[i].ID < sorted[j].ID
	})

	var b strings.Builder
	b.WriteString("# Category taxonomy\n\n")
	fmt.Fprintf(&b, "%d canonical entries, %d aliases.\n\n", len(entries), len(aliases))

	if len(sorted) == 0 {
		b.WriteString("No categories recorded yet.\n")
		return b.String()
	}

	b.WriteString("| ID | Category | Subcategory | Files | Aliases |\n")
	b.WriteString("|---:|---|---|---:|---:|\n")
	for _, e := range sorted {
		fmt.Fprintf(&b, "| %d | %s | %s | %d | %d |\n",
			e.ID, cell(e.CanonicalCategory), cell(e.CanonicalSubcategory), e.Frequency, len(byEntry[e.ID]))
	}

	if len(aliases) == 0 {
		return b.String()
	}

	b.WriteString("\n## Aliases\n\n")
	for _, e := range sorted {
		keys := byEntry[e.ID]
		if len(keys) == 0 {
			continue
		}
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].Category != keys[j].Category {
				return keys[i].Category < keys[j].Category
			}
			return keys[i].Subcategory < keys[j].Subcategory
		})
		fmt.Fprintf(&b, "- **%s / %s**: ", inline(e.CanonicalCategory), inline(e.CanonicalSubcategory))
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "`%s / %s`", k.Category, k.Subcategory)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// cell escapes a value for a table cell.
func cell(s string) string {
	return strings.ReplaceAll(inline(s), "|", `\|`)
}

// inline escapes characters that would start Markdown emphasis or links.
func inline(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`, "`", "\\`", "<", "&lt;")
	return r.Replace(s)
}
