package sync

import (
	"context"

	"github.com/ivlebedev/cubox-daily/app/cubox"
)

// ArticleSource yields pages of article metadata ordered by descending update
// time, plus full content per article.
type ArticleSource interface {
	ListArticlesPage(ctx context.Context, lastCardID, lastCardUpdateTime string, limit int) (*cubox.Page, error)
	GetArticleContent(ctx context.Context, id string) (string, error)
}

// NoteSink resolves the destination log file for today and appends text to it.
type NoteSink interface {
	ResolveToday(folder, dateFormat string) (string, error)
	Append(notePath, payload string) error
}

// BinaryVault is the storage surface the image downloader needs.
type BinaryVault interface {
	Exists(relPath string) bool
	EnsureFolder(relPath string) error
	CreateBinary(relPath string, data []byte) error
}
