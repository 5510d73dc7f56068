package model

// User はバックエンドが保持するユーザー情報のキャッシュを表す。
// カート・注文の変更直後は再取得するまで古い値とみなす。
type User struct {
	ID           int             `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	FirstName    string          `json:"first_name"`
	LastName     string          `json:"last_name"`
	CartItems    []BasicCartItem `json:"cart_items"`
	CartSubtotal float64         `json:"cart_subtotal"`
}

// NewUser はアカウント作成時の入力を表す。
type NewUser struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Credentials はトークン取得APIに送る認証情報を表す。
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
