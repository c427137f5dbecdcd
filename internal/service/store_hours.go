package service

import (
	"strings"
	"time"

	"github.com/dujiao-next/delivery/internal/models"
)

var storeClockLayouts = []string{"15:04", "15:04:05"}

// isStoreOpen 判断门店当前是否营业
// 任一营业时间缺失视为全天营业；结束早于开始视为跨夜营业
func isStoreOpen(store *models.Store, now time.Time) bool {
	if store == nil || !store.IsActive {
		return false
	}
	opening, ok := parseStoreClock(store.OpeningTime)
	if !ok {
		return true
	}
	closing, ok := parseStoreClock(store.ClosingTime)
	if !ok {
		return true
	}
	current := now.Hour()*60 + now.Minute()
	if closing < opening {
		return current >= opening || current < closing
	}
	return current >= opening && current < closing
}

// parseStoreClock 解析 HH:MM（或 HH:MM:SS），返回当天分钟数
func parseStoreClock(raw *string) (int, bool) {
	if raw == nil {
		return 0, false
	}
	value := strings.TrimSpace(*raw)
	if value == "" {
		return 0, false
	}
	for _, layout := range storeClockLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Hour()*60 + parsed.Minute(), true
		}
	}
	return 0, false
}
