package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// KakaoUser is the profile slice this backend cares about: the stable
// provider-issued id plus the display nickname.
type KakaoUser struct {
	ID       int64
	Nickname string
}

// KakaoClient wraps the Kakao OAuth token exchange and the user info lookup.
type KakaoClient struct {
	ClientID    string
	RedirectURI string
	AuthBaseURL string
	APIBaseURL  string
	HTTPClient  *http.Client
}

func NewKakaoClient(clientID, redirectURI string) *KakaoClient {
	return &KakaoClient{
		ClientID:    strings.TrimSpace(clientID),
		RedirectURI: strings.TrimSpace(redirectURI),
		AuthBaseURL: "https://kauth.kakao.com",
		APIBaseURL:  "https://kapi.kakao.com",
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// ExchangeCode trades an authorization code for an access token.
func (k *KakaoClient) ExchangeCode(ctx context.Context, code string) (string, error) {
	if k.ClientID == "" {
		return "", fmt.Errorf("kakao client id not set")
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", k.ClientID)
	form.Set("redirect_uri", k.RedirectURI)
	form.Set("code", code)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.AuthBaseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")

	resp, err := k.httpClient().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("kakao token error %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.AccessToken == "" {
		return "", fmt.Errorf("access token not found in kakao response")
	}
	return parsed.AccessToken, nil
}

// UserInfo resolves the access token into the Kakao id and nickname.
func (k *KakaoClient) UserInfo(ctx context.Context, accessToken string) (KakaoUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.APIBaseURL+"/v2/user/me", nil)
	if err != nil {
		return KakaoUser{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := k.httpClient().Do(req)
	if err != nil {
		return KakaoUser{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return KakaoUser{}, fmt.Errorf("kakao user info error %d: %s", resp.StatusCode, string(body))
	}

	var parsed struct {
		ID           int64 `json:"id"`
		KakaoAccount struct {
			Profile struct {
				Nickname string `json:"nickname"`
			} `json:"profile"`
		} `json:"kakao_account"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return KakaoUser{}, err
	}
	if parsed.ID == 0 {
		return KakaoUser{}, fmt.Errorf("kakao id not found in user info")
	}

	return KakaoUser{ID: parsed.ID, Nickname: parsed.KakaoAccount.Profile.Nickname}, nil
}

func (k *KakaoClient) httpClient() *http.Client {
	if k.HTTPClient != nil {
		return k.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}
