package types

const (
	MenuNameMaxLen  = 100
	MenuTitleMaxLen = 150
	ItemTitleMaxLen = 200
	NamedURLMaxLen  = 200
	URLMaxLen       = 500
)

type Menu struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title,omitempty"`
}

// DisplayTitle falls back to the internal name when no title is set.
func (m Menu) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Name
}

// MenuItem is one flat row of a menu. ParentID is nil for top-level items.
type MenuItem struct {
	ID       int64  `json:"id"`
	MenuID   int64  `json:"menu_id"`
	MenuName string `json:"menu_name"`
	ParentID *int64 `json:"parent_id,omitempty"`
	Title    string `json:"title"`
	NamedURL string `json:"named_url,omitempty"`
	URL      string `json:"url,omitempty"`
	Order    int    `json:"order"`
}

type MenuItemInput struct {
	ParentID *int64 `json:"parent_id"`
	Title    string `json:"title"`
	NamedURL string `json:"named_url"`
	URL      string `json:"url"`
	Order    int    `json:"order"`
}
