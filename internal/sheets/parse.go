package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// 印尼语月份名 → 月份序号（表单日期形如 "15 Januari 2025"）
var indonesianMonths = map[string]time.Month{
	"januari":   time.January,
	"februari":  time.February,
	"maret":     time.March,
	"april":     time.April,
	"mei":       time.May,
	"juni":      time.June,
	"juli":      time.July,
	"agustus":   time.August,
	"september": time.September,
	"oktober":   time.October,
	"november":  time.November,
	"desember":  time.December,
}

// ParseLongDate 解析 "15 Januari 2025" 形式的长日期，返回 "2025-01-15"。
// 已经是 YYYY-MM-DD 的值原样通过
func ParseLongDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("日期为空")
	}
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return s, nil
	}

	parts := strings.Fields(strings.ToLower(s))
	if len(parts) != 3 {
		return "", fmt.Errorf("无法识别的日期格式: %q", s)
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return "", fmt.Errorf("无法识别的日期格式: %q", s)
	}
	month, ok := indonesianMonths[parts[1]]
	if !ok {
		return "", fmt.Errorf("无法识别的月份: %q", s)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", fmt.Errorf("无法识别的年份: %q", s)
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
}

// ParseTimestamp 解析表单提交时间 "DD/MM/YYYY HH:mm:ss"，按给定固定时区解释
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("时间戳为空")
	}
	t, err := time.ParseInLocation("2/1/2006 15:04:05", s, loc)
	if err == nil {
		return t, nil
	}
	t, err = time.ParseInLocation("02/01/2006 15:04:05", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法识别的时间戳: %q", s)
	}
	return t, nil
}

// NormalizeClock 将 "9:00" / "09.00" / "09:00:00" 统一为 "09:00:00"
func NormalizeClock(s string) (string, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ".", ":"))
	if s == "" {
		return "", fmt.Errorf("时间为空")
	}
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return "", fmt.Errorf("无法识别的时间格式: %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return "", fmt.Errorf("无法识别的时间格式: %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return "", fmt.Errorf("无法识别的时间格式: %q", s)
	}
	sec := 0
	if len(parts) == 3 {
		sec, err = strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return "", fmt.Errorf("无法识别的时间格式: %q", s)
		}
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, sec), nil
}
