package service

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// ── ICS 导入解析 ──────────────────────────────────────────────
//
// 将 iCalendar (RFC 5545) 中的 VEVENT 展开为课次时间段：
//   - DTSTART/DTEND 确定单次课次，缺少 DTEND 时使用默认时长
//   - RRULE 仅支持 FREQ=WEEKLY（INTERVAL/COUNT/UNTIL），其余频率按单次处理
//   - EXDATE 排除指定日期
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize        = 1 << 20
	icsMaxOccurrences     = 500
	icsDefaultDuration    = 90 * time.Minute
	icsWeeklyHorizonWeeks = 52 // 无 COUNT/UNTIL 时的展开上限
)

// icsOccurrence 展开后的单次课次
type icsOccurrence struct {
	StartsAt time.Time
	EndsAt   time.Time
	Location string
}

// parseSessionICS 解析 ICS 并展开为按开始时间排序、去重后的课次列表
// loc 用于解释不带时区的浮动时间
func parseSessionICS(reader io.Reader, loc *time.Location) ([]icsOccurrence, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(reader, icsMaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	seen := make(map[int64]bool)
	var result []icsOccurrence
	for _, evt := range cal.Events() {
		for _, occ := range expandVEvent(evt, loc) {
			key := occ.StartsAt.Unix()
			if seen[key] {
				continue
			}
			seen[key] = true
			result = append(result, occ)
			if len(result) >= icsMaxOccurrences {
				break
			}
		}
		if len(result) >= icsMaxOccurrences {
			break
		}
	}

	sort.Slice(result, func(i, j int) bool { return result[i].StartsAt.Before(result[j].StartsAt) })
	return result, nil
}

// expandVEvent 展开单个 VEVENT
func expandVEvent(evt *ics.VEvent, loc *time.Location) []icsOccurrence {
	dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return nil
	}
	duration := icsDefaultDuration
	if dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc); err == nil && dtEnd.After(dtStart) {
		duration = dtEnd.Sub(dtStart)
	}

	location := ""
	if p := evt.GetProperty(ics.ComponentPropertyLocation); p != nil {
		location = strings.TrimSpace(p.Value)
	}

	build := func(start time.Time) icsOccurrence {
		return icsOccurrence{StartsAt: start.UTC(), EndsAt: start.Add(duration).UTC(), Location: location}
	}

	rruleProp := evt.GetProperty(ics.ComponentPropertyRrule)
	if rruleProp == nil {
		return []icsOccurrence{build(dtStart)}
	}
	rule := parseRRule(rruleProp.Value)
	if rule.freq != "WEEKLY" {
		return []icsOccurrence{build(dtStart)}
	}

	exDates := parseExDates(evt, loc)
	interval := rule.interval
	if interval < 1 {
		interval = 1
	}
	maxDate := dtStart.AddDate(0, 0, icsWeeklyHorizonWeeks*7)
	if !rule.until.IsZero() && rule.until.Before(maxDate) {
		maxDate = rule.until
	}

	var result []icsOccurrence
	count := 0
	for current := dtStart; !current.After(maxDate); current = current.AddDate(0, 0, 7*interval) {
		if rule.count > 0 && count >= rule.count {
			break
		}
		count++
		if exDates[current.In(loc).Format("20060102")] {
			continue
		}
		result = append(result, build(current))
	}
	return result
}

// rruleParams RRULE 解析结果
type rruleParams struct {
	freq     string
	interval int
	count    int
	until    time.Time
}

// parseRRule 解析 RRULE 字符串（如 FREQ=WEEKLY;COUNT=16;INTERVAL=1）
func parseRRule(value string) rruleParams {
	r := rruleParams{interval: 1}
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			r.freq = strings.ToUpper(kv[1])
		case "INTERVAL":
			fmt.Sscanf(kv[1], "%d", &r.interval)
		case "COUNT":
			fmt.Sscanf(kv[1], "%d", &r.count)
		case "UNTIL":
			t, err := time.Parse("20060102T150405Z", kv[1])
			if err != nil {
				t, _ = time.Parse("20060102", kv[1])
			}
			r.until = t
		}
	}
	return r
}

// parseExDates 收集 EXDATE 日期（按 loc 的日历日）
func parseExDates(evt *ics.VEvent, loc *time.Location) map[string]bool {
	exDates := make(map[string]bool)
	for _, prop := range evt.Properties {
		if prop.IANAToken != string(ics.ComponentPropertyExdate) {
			continue
		}
		for _, v := range strings.Split(prop.Value, ",") {
			if t, err := parseICSValue(strings.TrimSpace(v), "", loc); err == nil {
				exDates[t.In(loc).Format("20060102")] = true
			}
		}
	}
	return exDates
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性，支持 UTC、TZID 与浮动时间
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("缺少属性 %s", propName)
	}
	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}
	return parseICSValue(prop.Value, tzid, loc)
}

func parseICSValue(val, tzid string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return t, nil
	}
	zone := loc
	if tzid != "" {
		if tzLoc, err := time.LoadLocation(tzid); err == nil {
			zone = tzLoc
		}
	}
	for _, layout := range []string{"20060102T150405", "20060102"} {
		if t, err := time.ParseInLocation(layout, val, zone); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}
