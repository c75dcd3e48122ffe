package transfer

import "time"

// ConnectionBundle is the normalized result of a Facebook code exchange,
// manual connect, or token refresh.
type ConnectionBundle struct {
	Success            bool      `json:"success"`
	UserName           string    `json:"userName"`
	UserID             string    `json:"userId"`
	UserAccessToken    string    `json:"userAccessToken"`
	PageID             string    `json:"pageId,omitempty"`
	PageName           string    `json:"pageName,omitempty"`
	PageAccessToken    string    `json:"pageAccessToken,omitempty"`
	InstagramAccountID string    `json:"instagramAccountId,omitempty"`
	InstagramUsername  string    `json:"instagramUsername,omitempty"`
	RefreshedAt        time.Time `json:"refreshedAt,omitempty"`
}

type FacebookUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type FacebookPage struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	AccessToken string   `json:"access_token"`
	Category    string   `json:"category"`
	Tasks       []string `json:"tasks"`
}

type FacebookPageList struct {
	Data []FacebookPage `json:"data"`
}

type InstagramBusinessAccount struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type PageInstagramInfo struct {
	InstagramBusinessAccount *InstagramBusinessAccount `json:"instagram_business_account"`
}

// GraphError is the error envelope the Graph API returns on non-2xx
// responses. Message is propagated verbatim to callers when present.
type GraphError struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		FbtraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}

type OAuthTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type ConnectRequest struct {
	AccessToken string `json:"accessToken"`
}

type OAuthExchangeRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

type RefreshRequest struct {
	UserAccessToken string `json:"userAccessToken"`
}

type ConnectionTestRequest struct {
	AccessToken        string `json:"accessToken"`
	PageAccessToken    string `json:"pageAccessToken"`
	PageID             string `json:"pageId"`
	InstagramAccountID string `json:"instagramAccountId"`
}
