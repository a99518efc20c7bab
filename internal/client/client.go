// Package clientはストアフロントAPIのGoクライアント。
// ブラウザ側が持っていたセッション管理（access token＋ユーザー情報の保持、
// 401時の1回だけのrefresh→リトライ）をそのまま担当する。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"
)

// ログイン中ユーザーの要約
type UserInfo struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

// APIが返したエラー
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Clientはセッション状態を持つAPIクライアント
// refresh tokenはHttpOnly cookieなのでjarに任せる。こちらでは触らない
type Client struct {
	baseURL string
	http    *http.Client

	//セッション状態。書き換えはSetCredentials / UpdateAccessToken / ClearCredentialsのみ
	mu          sync.Mutex
	accessToken string
	user        *UserInfo

	//401起点のrefreshを直列化する（同時に複数のrefreshを飛ばさない）
	refreshMu sync.Mutex
}

func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
		},
	}, nil
}

// ログイン・登録成功後に呼ぶ。両フィールドを丸ごと差し替える（部分マージはしない）
func (c *Client) SetCredentials(user UserInfo, accessToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := user
	c.user = &u
	c.accessToken = accessToken
}

// refresh成功後に呼ぶ。tokenだけ差し替える
func (c *Client) UpdateAccessToken(accessToken string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = accessToken
}

// ログアウト・refresh失敗時に呼ぶ。全部消す
func (c *Client) ClearCredentials() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = nil
	c.accessToken = ""
}

// tokenとユーザー情報が両方ある時だけtrue
func (c *Client) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken != "" && c.user != nil
}

func (c *Client) CurrentUser() *UserInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// doはaccess tokenを付けてリクエストを投げる
// 401が返ったらrefreshを1回だけ試し、成功したら元のリクエストを1回だけ再送する
// refreshも失敗したら資格情報を消して元の401をそのまま返す。絶対にループしない
func (c *Client) do(ctx context.Context, method string, path string, payload interface{}) (int, []byte, error) {
	var body []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		body = b
	}

	usedToken := c.currentToken()

	status, respBody, err := c.send(ctx, method, path, body, usedToken)
	if err != nil {
		return 0, nil, err
	}

	if status != http.StatusUnauthorized {
		return status, respBody, nil
	}

	//再認証は1回だけ
	newToken, ok := c.refreshOnce(ctx, usedToken)
	if !ok {
		return status, respBody, nil
	}

	return c.send(ctx, method, path, body, newToken)
}

// refreshOnceはaccess tokenを取り直す
// 並行する401は全員ここで待ち、先頭の1人だけが実際にrefreshを呼ぶ
func (c *Client) refreshOnce(ctx context.Context, usedToken string) (string, bool) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	//待っている間に他のリクエストがrefresh済みならそれを使う
	if cur := c.currentToken(); cur != "" && cur != usedToken {
		return cur, true
	}

	//access tokenは不要。refresh tokenはjarのcookieで飛ぶ
	status, body, err := c.send(ctx, http.MethodPost, "/auth/refresh", nil, "")
	if err != nil || status != http.StatusOK {
		c.ClearCredentials()
		return "", false
	}

	var out struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.AccessToken == "" {
		c.ClearCredentials()
		return "", false
	}

	c.UpdateAccessToken(out.AccessToken)
	return out.AccessToken, true
}

func (c *Client) send(ctx context.Context, method string, path string, body []byte, bearer string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}

	return resp.StatusCode, respBody, nil
}

// bodyの{message}を取り出してAPIErrorにする
func apiError(status int, body []byte) error {
	var m struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &m)
	if m.Message == "" {
		m.Message = http.StatusText(status)
	}
	return &APIError{Status: status, Message: m.Message}
}
