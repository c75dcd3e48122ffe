package models

// GeneratedContent holds the output of one AI generation request. It is
// transient: it only reaches the post store once the user merges it into a
// scheduled post.
type GeneratedContent struct {
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"` // without the leading # marker
}
