package gym

import "time"

// =============================================================================
// DATE - day-granularity calendar date
// =============================================================================

// Date is a calendar date with no time-of-day component. All membership and
// due-date comparisons in the engine are date-only; a membership expiring
// today is still valid today.
type Date struct {
	t time.Time // always midnight UTC
}

// Constructors

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now())
}

// ParseDate parses an ISO date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison

func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }
func (d Date) IsZero() bool                  { return d.t.IsZero() }

// Arithmetic

func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

// AddMonths advances by n calendar months, clamping to the last valid day of
// the target month: Jan 31 + 1 month = Feb 28 (or 29). This is deliberately
// NOT time.AddDate, whose overflow rule would normalize Jan 31 + 1 month to
// Mar 2/3. Installment due dates depend on this clamp.
func (d Date) AddMonths(n int) Date {
	year, month, day := d.t.Date()
	m := int(month) + n
	year += (m - 1) / 12
	m = (m-1)%12 + 1
	if m < 1 { // negative n landing before January
		m += 12
		year--
	}
	if last := daysInMonth(year, time.Month(m)); day > last {
		day = last
	}
	return NewDate(year, time.Month(m), day)
}

// DaysUntil returns the whole number of calendar days from d to other.
// Negative when other is in the past.
func (d Date) DaysUntil(other Date) int {
	return int(other.t.Sub(d.t).Hours() / 24)
}

// Properties

func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) Time() time.Time   { return d.t }

func (d Date) String() string { return d.t.Format("2006-01-02") }

func daysInMonth(year int, month time.Month) int {
	// first day of next month, minus one day
	return time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1).Day()
}
