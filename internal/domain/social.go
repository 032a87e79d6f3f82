package domain

// Engagement holds the interaction counters visible on a post.
type Engagement struct {
	Likes    int `json:"likes"`
	Shares   int `json:"shares"`
	Comments int `json:"comments"`
	Views    int `json:"views"`
}

// SocialPost is a normalized post gathered by the social-watch step.
type SocialPost struct {
	Platform   string     `json:"platform"`
	Account    string     `json:"account"`
	AccountURL string     `json:"account_url"`
	PostURL    string     `json:"post_url"`
	Content    string     `json:"content"`
	Timestamp  string     `json:"timestamp"`
	Categories []string   `json:"categories"`
	Engagement Engagement `json:"engagement"`
	MediaType  string     `json:"media_type"`
	Hashtags   []string   `json:"hashtags"`
	Mentions   []string   `json:"mentions"`
}
