package cache

import (
	"time"
)

// TimeUntilNext8AM は次の午前8時（日本時間）までの期間を返します。
// 銘柄マスタの日次更新に合わせてキャッシュを失効させるために使います。
func TimeUntilNext8AM() time.Duration {
	return timeUntilNext8AM(time.Now())
}

func timeUntilNext8AM(now time.Time) time.Duration {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		loc = time.FixedZone("JST", 9*60*60)
	}
	now = now.In(loc)

	next8am := time.Date(now.Year(), now.Month(), now.Day(), 8, 0, 0, 0, loc)

	// 今日の午前8時が既に過ぎている場合は明日の午前8時を使用
	if !now.Before(next8am) {
		next8am = next8am.Add(24 * time.Hour)
	}

	return next8am.Sub(now)
}
