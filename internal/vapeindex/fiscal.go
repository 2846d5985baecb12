package vapeindex

// FiscalCalendar maps calendar months to fiscal-year labels. It is built
// once at startup and read-only afterwards; months outside the table map
// to unknown rather than erroring.
type FiscalCalendar struct {
	byPeriod map[Period]int
	ranges   []fiscalRange
}

// fiscalRange is one fiscal year's inclusive span of calendar months.
type fiscalRange struct {
	year  int
	start Period
	end   Period
}

// NewFiscalCalendar builds the fiscal table covering fiscal years 2022
// through 2025. Fiscal years run July through June; the first year in the
// table is the partial span January 2022 through June 2022.
func NewFiscalCalendar() *FiscalCalendar {
	cal := &FiscalCalendar{
		byPeriod: make(map[Period]int),
		ranges: []fiscalRange{
			{2022, NewPeriod(2022, 1), NewPeriod(2022, 6)},
			{2023, NewPeriod(2022, 7), NewPeriod(2023, 6)},
			{2024, NewPeriod(2023, 7), NewPeriod(2024, 6)},
			{2025, NewPeriod(2024, 7), NewPeriod(2025, 6)},
		},
	}
	for _, r := range cal.ranges {
		for p := r.start; !r.end.Before(p); p = p.Next() {
			cal.byPeriod[p] = r.year
		}
	}
	return cal
}

// FiscalYear returns the fiscal year containing the period. The second
// return is false when the period is outside the known range.
func (c *FiscalCalendar) FiscalYear(p Period) (int, bool) {
	fy, ok := c.byPeriod[p]
	return fy, ok
}

// Years returns the fiscal years covered by the table in ascending order.
func (c *FiscalCalendar) Years() []int {
	years := make([]int, 0, len(c.ranges))
	for _, r := range c.ranges {
		years = append(years, r.year)
	}
	return years
}

// Periods returns the calendar months belonging to a fiscal year in
// ascending order, or nil for an unknown fiscal year.
func (c *FiscalCalendar) Periods(fiscalYear int) []Period {
	for _, r := range c.ranges {
		if r.year != fiscalYear {
			continue
		}
		var periods []Period
		for p := r.start; !r.end.Before(p); p = p.Next() {
			periods = append(periods, p)
		}
		return periods
	}
	return nil
}
