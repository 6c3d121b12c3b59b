package sync

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/ivlebedev/cubox-daily/app/cubox"
	"github.com/ivlebedev/cubox-daily/app/settings"
)

func newTestFormatter(source *mockSource, vault *fakeVault) *Formatter {
	return NewFormatter(source, NewImageStore(vault, http.DefaultClient, "test-agent"))
}

func TestFormatter_LinkTemplate(t *testing.T) {
	formatter := newTestFormatter(&mockSource{}, newFakeVault())

	s := settings.Defaults()
	s.LinkTemplate = "[{{title}}]({{url}})"

	article := cubox.Article{ID: "a1", Title: "A", URL: "http://b", Type: "Link"}

	got, err := formatter.Format(context.Background(), article, s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "[A](http://b)" {
		t.Errorf("Expected [A](http://b), got %q", got)
	}
}

func TestFormatter_LinkTemplate_RepeatedTokens(t *testing.T) {
	formatter := newTestFormatter(&mockSource{}, newFakeVault())

	s := settings.Defaults()
	s.LinkTemplate = "{{title}} / {{title}}: {{url}}"

	article := cubox.Article{Title: "T", URL: "http://u"}

	got, err := formatter.Format(context.Background(), article, s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "T / T: http://u" {
		t.Errorf("Unexpected rendering: %q", got)
	}
}

func TestFormatter_LinkTemplate_Empty(t *testing.T) {
	formatter := newTestFormatter(&mockSource{}, newFakeVault())

	s := settings.Defaults()
	s.LinkTemplate = "   \n"

	article := cubox.Article{Title: "A", URL: "http://b"}

	_, err := formatter.Format(context.Background(), article, s)
	if !errors.Is(err, ErrEmptyTemplate) {
		t.Errorf("Expected ErrEmptyTemplate, got %v", err)
	}
}

func TestFormatter_TextVerbatim(t *testing.T) {
	source := &mockSource{content: map[string]string{"a1": "hello"}}
	formatter := newTestFormatter(source, newFakeVault())

	article := cubox.Article{ID: "a1", Type: "Text"}

	got, err := formatter.Format(context.Background(), article, settings.Defaults())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "hello" {
		t.Errorf("Expected verbatim content, got %q", got)
	}
}

func TestFormatter_TextEmptyContent(t *testing.T) {
	source := &mockSource{content: map[string]string{}}
	formatter := newTestFormatter(source, newFakeVault())

	article := cubox.Article{ID: "a1", Type: "Text"}

	_, err := formatter.Format(context.Background(), article, settings.Defaults())
	if !errors.Is(err, ErrEmptyContent) {
		t.Errorf("Expected ErrEmptyContent, got %v", err)
	}
}

func TestFormatter_ImageFromMarkdownLink(t *testing.T) {
	server := newImageServer(t, nil)
	defer server.Close()

	source := &mockSource{content: map[string]string{
		"img1": "![alt](" + server.URL + "/a.png)",
	}}
	vault := newFakeVault()
	formatter := newTestFormatter(source, vault)

	s := settings.Defaults()
	s.ImageFolder = "attachments"
	s.ImageEmbedWidth = 0

	article := cubox.Article{ID: "img1", Type: "Image"}

	got, err := formatter.Format(context.Background(), article, s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if got != "![](attachments/img1.png)" {
		t.Errorf("Unexpected embed: %q", got)
	}
	if !vault.Exists("attachments/img1.png") {
		t.Error("Image was not downloaded into the vault")
	}
}

func TestFormatter_ImageWidthToken(t *testing.T) {
	server := newImageServer(t, nil)
	defer server.Close()

	source := &mockSource{content: map[string]string{
		"img2": "![](" + server.URL + "/b.gif)",
	}}
	formatter := newTestFormatter(source, newFakeVault())

	s := settings.Defaults()
	s.ImageFolder = ""
	s.ImageEmbedWidth = 300

	article := cubox.Article{ID: "img2", Type: "Image"}

	got, err := formatter.Format(context.Background(), article, s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "![|300](img2.gif)" {
		t.Errorf("Unexpected embed: %q", got)
	}
}

func TestFormatter_ImageBareURLFallback(t *testing.T) {
	server := newImageServer(t, nil)
	defer server.Close()

	source := &mockSource{content: map[string]string{
		"img3": "the photo lives at " + server.URL + "/c.jpeg for now",
	}}
	formatter := newTestFormatter(source, newFakeVault())

	s := settings.Defaults()
	s.ImageFolder = ""

	article := cubox.Article{ID: "img3", Type: "Image"}

	got, err := formatter.Format(context.Background(), article, s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasSuffix(got, "(img3.jpeg)") {
		t.Errorf("Expected embed referencing img3.jpeg, got %q", got)
	}
}

func TestFormatter_ImageNoImageFound(t *testing.T) {
	source := &mockSource{content: map[string]string{
		"img4": "plain text, no images yet",
	}}
	formatter := newTestFormatter(source, newFakeVault())

	article := cubox.Article{ID: "img4", Type: "Image"}

	_, err := formatter.Format(context.Background(), article, settings.Defaults())
	if !errors.Is(err, ErrNoImageFound) {
		t.Errorf("Expected ErrNoImageFound, got %v", err)
	}
}

func TestFormatter_ImageTakesPrecedenceOverURL(t *testing.T) {
	server := newImageServer(t, nil)
	defer server.Close()

	source := &mockSource{content: map[string]string{
		"img5": "![](" + server.URL + "/d.png)",
	}}
	formatter := newTestFormatter(source, newFakeVault())

	s := settings.Defaults()
	s.ImageFolder = ""

	// Image type wins even though the article has a URL
	article := cubox.Article{ID: "img5", URL: "http://somewhere", Type: "Image"}

	got, err := formatter.Format(context.Background(), article, s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "![") || !strings.Contains(got, "img5.png") {
		t.Errorf("Expected image embed, got %q", got)
	}
}

func TestFormatter_ImagePathEncoding(t *testing.T) {
	server := newImageServer(t, nil)
	defer server.Close()

	source := &mockSource{content: map[string]string{
		"img6": "![](" + server.URL + "/e.png)",
	}}
	formatter := newTestFormatter(source, newFakeVault())

	s := settings.Defaults()
	s.ImageFolder = "my images"

	article := cubox.Article{ID: "img6", Type: "Image"}

	got, err := formatter.Format(context.Background(), article, s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != "![](my%20images/img6.png)" {
		t.Errorf("Expected percent-encoded path segments, got %q", got)
	}
}

func TestExtractFirstImageURL(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected string
		wantErr  bool
	}{
		{"markdown link", "before ![alt](https://x.com/a.png) after", "https://x.com/a.png", false},
		{"markdown link wins over bare URL", "https://x.com/z.png ![](https://x.com/a.png)", "https://x.com/a.png", false},
		{"bare URL fallback", "see https://x.com/photo.JPG here", "https://x.com/photo.JPG", false},
		{"webp fallback", "https://x.com/pic.webp", "https://x.com/pic.webp", false},
		{"no image", "nothing here", "", true},
		{"non-image URL", "https://x.com/page.html", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractFirstImageURL(tt.content)
			if tt.wantErr {
				if !errors.Is(err, ErrNoImageFound) {
					t.Errorf("Expected ErrNoImageFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
