// Package timeutil содержит вспомогательные функции для работы с датами занятий:
// парсинг дат, сборку момента времени из даты и времени суток,
// проверку пересечения интервалов и вычисление длительности.
package timeutil

import (
	"fmt"
	"math"
	"time"
)

// Поддерживаемые форматы входных дат.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// ParseDate парсит строку с датой в формате ISO-8601 (дата или дата со временем).
func ParseDate(s string) (time.Time, error) {
	const op = "timeutil.ParseDate"
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: invalid date format: %q", op, s)
}

// CombineDateTime собирает момент времени из календарной даты (2006-01-02)
// и времени суток в формате HH:MM.
func CombineDateTime(date, timeOfDay string) (time.Time, error) {
	const op = "timeutil.CombineDateTime"
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid date format: %q", op, date)
	}
	tod, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: invalid time format: %q", op, timeOfDay)
	}
	return time.Date(d.Year(), d.Month(), d.Day(),
		tod.Hour(), tod.Minute(), 0, 0, time.UTC), nil
}

// Overlaps проверяет пересечение полуоткрытых интервалов [startA, endA) и
// [startB, endB). Совпадение границ пересечением не считается.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && startB.Before(endA)
}

// DurationHours возвращает длительность интервала, округленную до целых часов.
func DurationHours(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Hours()))
}

// StartOfDay возвращает начало календарного дня для заданного момента.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay возвращает конец календарного дня для заданного момента.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}
