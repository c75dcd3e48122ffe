package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"

	config "github.com/jhshakil/kocialpilot/configs"
	"github.com/jhshakil/kocialpilot/internal/models"
	"github.com/jhshakil/kocialpilot/internal/transfer"
)

const oauthScopes = "pages_manage_posts,pages_read_engagement,instagram_basic,instagram_content_publish"

type FacebookService interface {
	OAuthURL(state string) (string, error)
	ExchangeCode(ctx context.Context, code string) (*transfer.ConnectionBundle, error)
	Connect(ctx context.Context, accessToken string) (*transfer.ConnectionBundle, error)
	RefreshToken(ctx context.Context, userAccessToken string) (*transfer.ConnectionBundle, error)
	TestConnection(ctx context.Context, conn *models.PlatformConnection) error
}

type facebookService struct {
	cfg      config.Config
	client   *http.Client
	oauth    *oauth2.Config
	graphURL string
}

func NewFacebookService(cfg config.Config) FacebookService {
	return &facebookService{
		cfg:    cfg,
		client: http.DefaultClient,
		oauth: &oauth2.Config{
			ClientID:     cfg.FacebookAppID,
			ClientSecret: cfg.FacebookAppSecret,
			RedirectURL:  cfg.FacebookRedirectURI,
			Scopes:       []string{oauthScopes},
			Endpoint:     facebook.Endpoint,
		},
		graphURL: "https://graph.facebook.com/v18.0",
	}
}

func (s *facebookService) OAuthURL(state string) (string, error) {
	if s.cfg.FacebookAppID == "" {
		err := errors.New("Facebook App ID is not configured")
		slog.Info(err.Error())
		return "", err
	}
	return s.oauth.AuthCodeURL(state), nil
}

func (s *facebookService) ExchangeCode(ctx context.Context, code string) (*transfer.ConnectionBundle, error) {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return nil, err
	}
	if s.cfg.FacebookAppID == "" || s.cfg.FacebookAppSecret == "" {
		err := errors.New("Facebook app credentials are not configured")
		slog.Info(err.Error())
		return nil, err
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	return s.buildBundle(ctx, token.AccessToken)
}

func (s *facebookService) Connect(ctx context.Context, accessToken string) (*transfer.ConnectionBundle, error) {
	if accessToken == "" {
		err := errors.New("access token is empty")
		slog.Info(err.Error())
		return nil, err
	}
	return s.buildBundle(ctx, accessToken)
}

// RefreshToken exchanges a current user token for a fresh long-lived one and
// rebuilds the bundle with it.
func (s *facebookService) RefreshToken(ctx context.Context, userAccessToken string) (*transfer.ConnectionBundle, error) {
	if userAccessToken == "" {
		err := errors.New("current access token is empty")
		slog.Info(err.Error())
		return nil, err
	}
	if s.cfg.FacebookAppID == "" || s.cfg.FacebookAppSecret == "" {
		err := errors.New("Facebook app credentials are not configured")
		slog.Info(err.Error())
		return nil, err
	}

	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", s.cfg.FacebookAppID)
	params.Set("client_secret", s.cfg.FacebookAppSecret)
	params.Set("fb_exchange_token", userAccessToken)

	var tokenResp transfer.OAuthTokenResponse
	reqURL := fmt.Sprintf("%s/oauth/access_token?%s", s.graphURL, params.Encode())
	if err := s.getJSON(ctx, reqURL, &tokenResp); err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	bundle, err := s.buildBundle(ctx, tokenResp.AccessToken)
	if err != nil {
		return nil, err
	}
	bundle.RefreshedAt = time.Now()
	return bundle, nil
}

// buildBundle normalizes a user access token into the connection bundle by
// chaining the user, page and Instagram lookups. A missing page or Instagram
// account leaves those fields empty; only the user lookup is mandatory.
func (s *facebookService) buildBundle(ctx context.Context, accessToken string) (*transfer.ConnectionBundle, error) {
	var user transfer.FacebookUser
	userURL := fmt.Sprintf("%s/me?access_token=%s", s.graphURL, url.QueryEscape(accessToken))
	if err := s.getJSON(ctx, userURL, &user); err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}

	bundle := &transfer.ConnectionBundle{
		Success:         true,
		UserName:        user.Name,
		UserID:          user.ID,
		UserAccessToken: accessToken,
	}

	var pages transfer.FacebookPageList
	pagesURL := fmt.Sprintf("%s/me/accounts?fields=id,name,access_token,category,tasks&access_token=%s",
		s.graphURL, url.QueryEscape(accessToken))
	if err := s.getJSON(ctx, pagesURL, &pages); err != nil {
		slog.Info(err.Error())
		return bundle, nil
	}

	page := firstManagedPage(pages.Data)
	if page == nil {
		return bundle, nil
	}
	bundle.PageID = page.ID
	bundle.PageName = page.Name
	bundle.PageAccessToken = page.AccessToken

	// Instagram is optional; lookup failures are tolerated.
	var igInfo transfer.PageInstagramInfo
	igURL := fmt.Sprintf("%s/%s?fields=instagram_business_account{id,username}&access_token=%s",
		s.graphURL, page.ID, url.QueryEscape(page.AccessToken))
	if err := s.getJSON(ctx, igURL, &igInfo); err != nil {
		slog.Info("Instagram not connected: " + err.Error())
		return bundle, nil
	}
	if igInfo.InstagramBusinessAccount != nil {
		bundle.InstagramAccountID = igInfo.InstagramBusinessAccount.ID
		bundle.InstagramUsername = igInfo.InstagramBusinessAccount.Username
	}

	return bundle, nil
}

// TestConnection runs read-only verification calls for each credential
// present on the record.
func (s *facebookService) TestConnection(ctx context.Context, conn *models.PlatformConnection) error {
	if conn == nil || conn.UserAccessToken == "" {
		return errors.New("no access token to test")
	}

	var user transfer.FacebookUser
	userURL := fmt.Sprintf("%s/me?access_token=%s", s.graphURL, url.QueryEscape(conn.UserAccessToken))
	if err := s.getJSON(ctx, userURL, &user); err != nil {
		return fmt.Errorf("Facebook user access failed: %w", err)
	}

	if conn.PageID != "" && conn.PageAccessToken != "" {
		pageURL := fmt.Sprintf("%s/%s?access_token=%s", s.graphURL, conn.PageID, url.QueryEscape(conn.PageAccessToken))
		if err := s.getJSON(ctx, pageURL, nil); err != nil {
			return fmt.Errorf("Facebook page access failed: %w", err)
		}
	}

	if conn.InstagramAccountID != "" && conn.PageAccessToken != "" {
		igURL := fmt.Sprintf("%s/%s?fields=id,username&access_token=%s",
			s.graphURL, conn.InstagramAccountID, url.QueryEscape(conn.PageAccessToken))
		if err := s.getJSON(ctx, igURL, nil); err != nil {
			return fmt.Errorf("Instagram access failed: %w", err)
		}
	}

	return nil
}

func firstManagedPage(pages []transfer.FacebookPage) *transfer.FacebookPage {
	for i := range pages {
		for _, task := range pages[i].Tasks {
			if task == "MANAGE" {
				return &pages[i]
			}
		}
	}
	return nil
}

func (s *facebookService) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var graphErr transfer.GraphError
		if err := json.Unmarshal(body, &graphErr); err == nil && graphErr.Error.Message != "" {
			return fmt.Errorf("%s", graphErr.Error.Message)
		}
		return fmt.Errorf("unexpected status code from Graph API: %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("error parsing response: %w", err)
		}
	}
	return nil
}
