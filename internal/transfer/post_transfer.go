package transfer

// PostCreation carries the fields a user submits when scheduling a post.
type PostCreation struct {
	Content   string   `json:"content"`
	Images    []string `json:"images"`
	Date      string   `json:"date"` // 2006-01-02
	Time      string   `json:"time"` // 15:04
	Platforms []string `json:"platform"`
}

type PostReschedule struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// PublishRequest is the body of the generic publish endpoint. ImageURL is a
// pointer so a JSON null survives the round trip.
type PublishRequest struct {
	Content        string         `json:"content"`
	ImageURL       *string        `json:"imageUrl"`
	Platform       string         `json:"platform"`
	ConnectionData ConnectionData `json:"connectionData"`
}

type ConnectionData struct {
	PageID             string `json:"pageId"`
	PageAccessToken    string `json:"pageAccessToken"`
	InstagramAccountID string `json:"instagramAccountId"`
}

type GenerateRequest struct {
	Prompt string `json:"prompt"`
}
