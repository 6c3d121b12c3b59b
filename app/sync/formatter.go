package sync

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/ivlebedev/cubox-daily/app/cubox"
	"github.com/ivlebedev/cubox-daily/app/settings"
)

var (
	markdownImagePattern = regexp.MustCompile(`!\[[^\]]*]\(([^)]+)\)`)
	bareImageURLPattern  = regexp.MustCompile(`(?i)https?://[^\s)]+\.(?:png|jpe?g|gif|webp)`)
)

// Formatter renders one article into a text block. Dispatch order: image
// cards first, then anything with a URL as a link, everything else as raw
// content.
type Formatter struct {
	source ArticleSource
	images *ImageStore
}

func NewFormatter(source ArticleSource, images *ImageStore) *Formatter {
	return &Formatter{
		source: source,
		images: images,
	}
}

func (f *Formatter) Format(ctx context.Context, article cubox.Article, s settings.Settings) (string, error) {
	if article.Type == cubox.ArticleTypeImage {
		return f.formatImage(ctx, article, s)
	}

	if strings.TrimSpace(article.URL) != "" {
		return f.formatLink(article, s.LinkTemplate)
	}

	return f.formatText(ctx, article)
}

// formatLink substitutes {{title}} and {{url}} literally. This is plain text
// substitution, not a templating language.
func (f *Formatter) formatLink(article cubox.Article, template string) (string, error) {
	if strings.TrimSpace(template) == "" {
		return "", ErrEmptyTemplate
	}

	rendered := strings.ReplaceAll(template, "{{title}}", article.Title)
	rendered = strings.ReplaceAll(rendered, "{{url}}", article.URL)
	return rendered, nil
}

func (f *Formatter) formatText(ctx context.Context, article cubox.Article) (string, error) {
	content, err := f.source.GetArticleContent(ctx, article.ID)
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyContent, article.ID)
	}
	return content, nil
}

func (f *Formatter) formatImage(ctx context.Context, article cubox.Article, s settings.Settings) (string, error) {
	content, err := f.source.GetArticleContent(ctx, article.ID)
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", fmt.Errorf("%w: %s", ErrEmptyContent, article.ID)
	}

	imageURL, err := extractFirstImageURL(content)
	if err != nil {
		return "", err
	}

	localPath, err := f.images.Download(ctx, imageURL, article.ID, s.ImageFolder)
	if err != nil {
		return "", err
	}

	widthToken := ""
	if s.ImageEmbedWidth > 0 {
		widthToken = "|" + strconv.Itoa(s.ImageEmbedWidth)
	}

	return fmt.Sprintf("![%s](%s)", widthToken, encodePath(localPath)), nil
}

// extractFirstImageURL tries a markdown image link first, then falls back to
// a bare image URL.
func extractFirstImageURL(content string) (string, error) {
	if match := markdownImagePattern.FindStringSubmatch(content); match != nil && match[1] != "" {
		return match[1], nil
	}
	if match := bareImageURLPattern.FindString(content); match != "" {
		return match, nil
	}
	return "", ErrNoImageFound
}

// encodePath percent-encodes each path segment, keeping the separators.
func encodePath(p string) string {
	segments := strings.Split(p, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
