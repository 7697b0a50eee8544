// Package dto はTwelve Data APIレスポンスのデータ転送オブジェクトを定義します。
package dto

// TimeSeriesResponse はTwelve Data time_seriesエンドポイントからのJSONレスポンスを表します。
// 日足の終値のみを利用するため、OHLVの各フィールドは保持しません。
type TimeSeriesResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Code     int    `json:"code,omitempty"`
	Meta     struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
		Currency string `json:"currency"`
	} `json:"meta"`
	Values []struct {
		Datetime string `json:"datetime"`
		Close    string `json:"close"`
	} `json:"values"`
}
