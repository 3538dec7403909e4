// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// LoginReq は/api/auth/loginエンドポイントのリクエストボディを表します。
type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResp is the body of a successful login. The token is also set as the auth-token cookie.
type LoginResp struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
