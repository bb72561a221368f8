package summary

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"finfamily/internal/core"
)

// Month is a reference month for aggregation.
type Month struct {
	Year  int
	Month time.Month
}

var monthNamesPT = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// CurrentMonth returns the month now falls in on its own clock.
func CurrentMonth(now time.Time) Month {
	return Month{Year: now.Year(), Month: now.Month()}
}

// MonthOf returns the month a date falls in.
func MonthOf(d core.Date) Month {
	return Month{Year: d.Year, Month: d.Month}
}

// ParseMonth reads "YYYY-MM". A full date "YYYY-MM-DD" is accepted and its
// day ignored.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if len(s) == 10 {
		d, err := core.ParseDate(s)
		if err != nil {
			return Month{}, err
		}
		return MonthOf(d), nil
	}
	y, m, ok := strings.Cut(s, "-")
	if !ok || len(y) != 4 || len(m) != 2 {
		return Month{}, fmt.Errorf("%w: %q is not YYYY-MM", core.ErrInvalidMonth, s)
	}
	year, err := strconv.Atoi(y)
	if err != nil {
		return Month{}, fmt.Errorf("%w: year %q", core.ErrInvalidMonth, y)
	}
	month, err := strconv.Atoi(m)
	if err != nil || month < 1 || month > 12 {
		return Month{}, fmt.Errorf("%w: month %q", core.ErrInvalidMonth, m)
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

// Shift moves the month by offset, crossing year boundaries.
func (m Month) Shift(offset int) Month {
	d := core.NewDate(m.Year, m.Month, 1).AddMonths(offset)
	return Month{Year: d.Year, Month: d.Month}
}

func (m Month) Contains(d core.Date) bool {
	return d.InMonth(m.Year, m.Month)
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

func (m Month) Ref() core.MonthRef {
	return core.MonthRef{Year: m.Year, Month: int(m.Month)}
}

// Label renders the month for display. lang "en" gives "March 2024";
// anything else gives the pt-BR form "março de 2024".
func (m Month) Label(lang string) string {
	if m.Month < time.January || m.Month > time.December {
		return m.String()
	}
	if strings.HasPrefix(strings.ToLower(lang), "en") {
		return fmt.Sprintf("%s %d", m.Month, m.Year)
	}
	return fmt.Sprintf("%s de %d", monthNamesPT[m.Month-1], m.Year)
}
