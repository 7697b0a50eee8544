package dto

// DatasetsResponse は正規化済みデータセットのレスポンスDTOです。
type DatasetsResponse struct {
	Empty   bool             `json:"empty"`             // 描画できる点が1つもない
	Message string           `json:"message,omitempty"` // 空状態のメッセージ
	Window  WindowResponse   `json:"window"`
	Series  []SeriesResponse `json:"series"`
}

// WindowResponse は表示期間です。
type WindowResponse struct {
	Start string `json:"start"` // YYYY-MM-DD
	End   string `json:"end"`   // YYYY-MM-DD
}

// SeriesResponse は1銘柄分の正規化済み系列です。
type SeriesResponse struct {
	Symbol      string          `json:"symbol"`
	Passthrough bool            `json:"passthrough"`
	Unit        string          `json:"unit,omitempty"`
	Baseline    *float64        `json:"baseline"` // 基準価格。データがなければnull
	Points      []PointResponse `json:"points"`
}

// PointResponse は1日分の点です。
type PointResponse struct {
	Date  string   `json:"date"`  // YYYY-MM-DD
	Ts    int64    `json:"ts"`    // UTC midnight, Unix ms
	Value *float64 `json:"value"` // 騰落率(%)または生値。未定義ならnull
	Raw   float64  `json:"raw"`   // 終値
}
