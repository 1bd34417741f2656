package extractor

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// 日期归一化
// 输出规范形式 YYYY-MM 或 YYYY。纯函数，同一(文本,基准时间)输入结果恒定，
// 对已规范的输入是恒等变换。

// monthNumbers 月份名到月号的映射，含常见三字母缩写和"sept"
var monthNumbers = map[string]int{
	"january": 1, "jan": 1,
	"february": 2, "feb": 2,
	"march": 3, "mar": 3,
	"april": 4, "apr": 4,
	"may": 5,
	"june": 6, "jun": 6,
	"july": 7, "jul": 7,
	"august": 8, "aug": 8,
	"september": 9, "sept": 9, "sep": 9,
	"october": 10, "oct": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

const monthNamePattern = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

// dateMentionRe 按优先级排列的日期表达式：
// 月份名+年份 > YYYY-MM / YYYY/MM > MM/YYYY > present类词 > 裸年份
var dateMentionRe = regexp.MustCompile(`(?i)\b(?:(` + monthNamePattern + `)\.?,?\s+(\d{2,4})|(\d{4})[-/](\d{1,2})|(\d{1,2})/(\d{4})|(present|current|ongoing)|(\d{4}))\b`)

// NormalizeDate 将文本中的首个日期表达式归一化
// ref 为处理时刻，用于present类词和两位年份的解释。
// 无法解析时返回 ("", false)，从不返回错误
func NormalizeDate(text string, ref time.Time) (string, bool) {
	dates := ExtractDates(text, ref)
	if len(dates) == 0 {
		return "", false
	}
	return dates[0], true
}

// NormalizeDateRange 解析日期区间，返回归一化的起止日期
// 文本中仅一个日期时终点为空串
func NormalizeDateRange(text string, ref time.Time) (start, end string, ok bool) {
	dates := ExtractDates(text, ref)
	if len(dates) == 0 {
		return "", "", false
	}
	start = dates[0]
	if len(dates) > 1 {
		end = dates[len(dates)-1]
	}
	return start, end, true
}

// ExtractDates 按出现顺序提取并归一化文本中的全部日期表达式
func ExtractDates(text string, ref time.Time) []string {
	matches := dateMentionRe.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return nil
	}
	result := make([]string, 0, len(matches))
	for _, m := range matches {
		switch {
		case m[1] != "": // 月份名 + 年份
			month := monthNumbers[strings.ToLower(m[1])]
			year := resolveYear(m[2], ref)
			if month > 0 && year > 0 {
				result = append(result, fmt.Sprintf("%04d-%02d", year, month))
			}
		case m[3] != "": // YYYY-MM / YYYY/MM
			year, _ := strconv.Atoi(m[3])
			month, _ := strconv.Atoi(m[4])
			if month >= 1 && month <= 12 {
				result = append(result, fmt.Sprintf("%04d-%02d", year, month))
			} else {
				result = append(result, fmt.Sprintf("%04d", year))
			}
		case m[5] != "": // MM/YYYY
			month, _ := strconv.Atoi(m[5])
			year, _ := strconv.Atoi(m[6])
			if month >= 1 && month <= 12 {
				result = append(result, fmt.Sprintf("%04d-%02d", year, month))
			} else {
				result = append(result, fmt.Sprintf("%04d", year))
			}
		case m[7] != "": // present / current / ongoing
			result = append(result, ref.Format("2006-01"))
		case m[8] != "": // 裸年份
			result = append(result, m[8])
		}
	}
	return result
}

// resolveYear 解析年份，两位年份按启发式归入1900或2000年代：
// 值大于(当前两位年份+10)视为上世纪
func resolveYear(s string, ref time.Time) int {
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	if len(s) == 4 {
		return year
	}
	if len(s) == 2 {
		pivot := ref.Year()%100 + 10
		if year > pivot {
			return 1900 + year
		}
		return 2000 + year
	}
	return 0
}

// MonthsBetween 两个规范日期间的日历月差，负值钳制为0
// 仅含年份的日期按1月计。非规范输入返回 (0, false)
func MonthsBetween(start, end string) (int, bool) {
	sy, sm, ok := splitCanonical(start)
	if !ok {
		return 0, false
	}
	ey, em, ok := splitCanonical(end)
	if !ok {
		return 0, false
	}
	months := (ey-sy)*12 + (em - sm)
	if months < 0 {
		months = 0
	}
	return months, true
}

func splitCanonical(s string) (year, month int, ok bool) {
	parts := strings.SplitN(s, "-", 2)
	year, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) != 4 {
		return 0, 0, false
	}
	month = 1
	if len(parts) == 2 {
		month, err = strconv.Atoi(parts[1])
		if err != nil || month < 1 || month > 12 {
			return 0, 0, false
		}
	}
	return year, month, true
}
