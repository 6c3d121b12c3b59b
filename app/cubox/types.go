package cubox

// ArticleTypeImage is the card type Cubox assigns to image bookmarks.
const ArticleTypeImage = "Image"

// Article is the card metadata returned by the list endpoint. The engine
// treats it as immutable.
type Article struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	CreateTime string `json:"create_time"`
	UpdateTime string `json:"update_time"`
	Type       string `json:"type"`
}

// Page is one page of articles, ordered by descending update time.
type Page struct {
	Articles []Article
	HasMore  bool
}

type listResponse struct {
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Data    []Article `json:"data"`
}

type contentResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}
