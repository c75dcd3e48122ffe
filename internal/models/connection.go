package models

import "time"

// PlatformConnection is the credential bundle persisted per platform family.
// Facebook and Instagram share a single record since both publish through the
// same page access token.
type PlatformConnection struct {
	Status             string    `json:"status"` // connected, disconnected, error
	UserAccessToken    string    `json:"userAccessToken"`
	UserName           string    `json:"userName"`
	UserID             string    `json:"userId"`
	PageID             string    `json:"pageId"`
	PageName           string    `json:"pageName"`
	PageAccessToken    string    `json:"pageAccessToken"`
	InstagramAccountID string    `json:"instagramAccountId"`
	InstagramUsername  string    `json:"instagramUsername"`
	ConnectedAt        time.Time `json:"connectedAt"`
	RefreshedAt        time.Time `json:"refreshedAt,omitempty"`
	LastError          string    `json:"lastError,omitempty"`
}

const (
	ConnectionStatusConnected    = "connected"
	ConnectionStatusDisconnected = "disconnected"
	ConnectionStatusError        = "error"
)
