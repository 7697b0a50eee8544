package dto

// SeriesResponse は1銘柄分の日次終値のレスポンスDTOです。
type SeriesResponse struct {
	Symbol string          `json:"symbol"`
	Points []PointResponse `json:"points"`
}

// PointResponse は1日分の終値です。
type PointResponse struct {
	Date  string   `json:"date"`  // 日付 (YYYY-MM-DD)
	Price *float64 `json:"price"` // 終値。取引がなければnull
}
