package client

import (
	"context"
	"encoding/json"
	"net/http"
)

type authResponse struct {
	Message     string   `json:"message"`
	User        UserInfo `json:"user"`
	AccessToken string   `json:"accessToken"`
}

// Registerは会員登録してセッションを確立する
func (c *Client) Register(ctx context.Context, name string, email string, password string) (*UserInfo, error) {
	payload := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}

	//登録は未認証で呼ぶのでreauthラッパーは通さない
	status, body, err := c.send(ctx, http.MethodPost, "/auth/register", mustJSON(payload), "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, apiError(status, body)
	}

	var out authResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}

	c.SetCredentials(out.User, out.AccessToken)
	return &out.User, nil
}

// Loginはログインしてセッションを確立する
func (c *Client) Login(ctx context.Context, email string, password string) (*UserInfo, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}

	status, body, err := c.send(ctx, http.MethodPost, "/auth/login", mustJSON(payload), "")
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(status, body)
	}

	var out authResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}

	c.SetCredentials(out.User, out.AccessToken)
	return &out.User, nil
}

// Logoutはサーバー側セッションを閉じてローカルの資格情報を消す
// サーバーは必ず204を返す約束なのでエラーは通信エラーのみ
func (c *Client) Logout(ctx context.Context) error {
	_, _, err := c.send(ctx, http.MethodPost, "/auth/logout", nil, "")

	//サーバーに届かなくてもローカルは必ず消す
	c.ClearCredentials()

	return err
}

// Meは自分のプロフィールを取る（保護エンドポイント：reauthラッパー経由）
func (c *Client) Me(ctx context.Context) (*UserInfo, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, apiError(status, body)
	}

	var out struct {
		User UserInfo `json:"user"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}

	return &out.User, nil
}

func mustJSON(v interface{}) []byte {
	b, _ := json.Marshal(v)
	return b
}
