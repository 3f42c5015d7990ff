package service

import (
	"fmt"
	"time"

	"schedly/internal/models"
)

// DayCell is one square of the month grid. Padding cells have Day 0.
type DayCell struct {
	Day   int
	Date  string
	Count int
}

// MonthView is a Monday-first month grid.
type MonthView struct {
	Year  int
	Month time.Month
	Weeks [][7]DayCell
}

// MonthGrid lays out month with the number of appointments on each day.
func MonthGrid(year int, month time.Month, appointments []*models.Appointment) MonthView {
	counts := make(map[string]int)
	for _, a := range appointments {
		counts[a.Date]++
	}

	firstDay := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	weekdayOffset := int(firstDay.Weekday())
	if weekdayOffset == 0 {
		weekdayOffset = 7
	}
	days := daysIn(month, year)

	view := MonthView{Year: year, Month: month}
	day := 1
	for day <= days {
		var week [7]DayCell
		for col := 1; col <= 7; col++ {
			if len(view.Weeks) == 0 && col < weekdayOffset {
				continue
			}
			if day > days {
				continue
			}
			date := fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
			week[col-1] = DayCell{Day: day, Date: date, Count: counts[date]}
			day++
		}
		view.Weeks = append(view.Weeks, week)
	}
	return view
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
