package usecase

import "errors"

// 入力の形に関するエラー。チャートを誤って描画しないよう呼び出し元へ返します。
var (
	// ErrShapeMismatch は銘柄数と系列数が一致しない場合に返されます。
	ErrShapeMismatch = errors.New("series count does not match symbol count")
	// ErrMalformedDate はISO形式でない日付を含む系列に対して返されます。
	ErrMalformedDate = errors.New("malformed calendar day")
	// ErrDuplicateDate は同じ日付を2回含む系列に対して返されます。
	ErrDuplicateDate = errors.New("duplicate date in series")
	// ErrTooManySymbols is returned when a request exceeds the symbol limit.
	ErrTooManySymbols = errors.New("too many symbols requested")
)
