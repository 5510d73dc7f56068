package model

// OrderItem は注文明細を表す。
type OrderItem struct {
	ID    int       `json:"id"`
	Game  BasicGame `json:"game"`
	Price float64   `json:"price"`
}

// OrderResponse は完了済み注文の履歴レコードを表す。作成後は変更されない。
type OrderResponse struct {
	ID        string      `json:"id"`
	CreatedAt string      `json:"created_at"`
	Total     float64     `json:"total"`
	Status    string      `json:"status"`
	Items     []OrderItem `json:"items"`
}

// CheckoutForm はチェックアウト画面の入力を表す。
// クライアントは内容を解釈せず、form_dataとしてそのまま送信する。
type CheckoutForm struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	CardHolder string `json:"card_holder,omitempty"`
	CardNumber string `json:"card_number,omitempty"`
	CardExpiry string `json:"card_expiry,omitempty"`
	CardCVC    string `json:"card_cvc,omitempty"`
}
