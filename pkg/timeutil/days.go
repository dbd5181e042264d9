package timeutil

import "strings"

// Canonical three-letter day labels used across storage and the API.
const (
	DayMon = "Mon"
	DayTue = "Tue"
	DayWed = "Wed"
	DayThu = "Thu"
	DayFri = "Fri"
	DaySat = "Sat"
	DaySun = "Sun"
)

var weekOrder = []string{DayMon, DayTue, DayWed, DayThu, DayFri, DaySat, DaySun}

var dayIndex = map[string]int{
	DayMon: 1,
	DayTue: 2,
	DayWed: 3,
	DayThu: 4,
	DayFri: 5,
	DaySat: 6,
	DaySun: 7,
}

var dayFullNames = map[string]string{
	DayMon: "monday",
	DayTue: "tuesday",
	DayWed: "wednesday",
	DayThu: "thursday",
	DayFri: "friday",
	DaySat: "saturday",
	DaySun: "sunday",
}

var dayAliases = map[string]string{
	"mon": DayMon, "monday": DayMon, "m": DayMon,
	"tue": DayTue, "tues": DayTue, "tuesday": DayTue, "t": DayTue,
	"wed": DayWed, "wednesday": DayWed, "w": DayWed,
	"thu": DayThu, "thur": DayThu, "thurs": DayThu, "thursday": DayThu, "th": DayThu,
	"fri": DayFri, "friday": DayFri, "f": DayFri,
	"sat": DaySat, "saturday": DaySat, "s": DaySat,
	"sun": DaySun, "sunday": DaySun,
}

// SchedulingDays returns the weekdays considered for placement, in week order.
func SchedulingDays() []string {
	return []string{DayMon, DayTue, DayWed, DayThu, DayFri, DaySat}
}

// NormalizeDay maps free-form day input onto its canonical label.
// It returns an empty string when the input is not recognisable.
func NormalizeDay(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if canonical, ok := dayAliases[trimmed]; ok {
		return canonical
	}
	// Truncated or plural full names ("monda", "saturdays") still resolve,
	// but only when the whole token spells that one day. A combined string
	// like "MonThu" is not a single day and must fall through.
	if len(trimmed) >= 3 {
		if canonical, ok := dayAliases[trimmed[:3]]; ok {
			full := dayFullNames[canonical]
			if strings.HasPrefix(full, trimmed) || trimmed == full+"s" {
				return canonical
			}
		}
	}
	return ""
}

// DayIndex returns 1-based week position (Mon=1). Unknown days return 0.
func DayIndex(day string) int {
	return dayIndex[NormalizeDay(day)]
}

// ParseCombinedDays expands a combined-day string such as "MonThu" into its
// individual canonical days. Separators (/ , - and whitespace) are tolerated.
func ParseCombinedDays(raw string) []string {
	cleaned := strings.NewReplacer("/", "", ",", "", "-", "", " ", "").Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return nil
	}
	if single := NormalizeDay(cleaned); single != "" {
		return []string{single}
	}

	var days []string
	seen := make(map[string]bool)
	rest := cleaned
	for len(rest) >= 3 {
		day := NormalizeDay(rest[:3])
		if day == "" {
			rest = rest[1:]
			continue
		}
		if !seen[day] {
			days = append(days, day)
			seen[day] = true
		}
		rest = rest[3:]
	}
	return SortWeekly(days)
}

// CombineDays folds individual days back into the compact combined form.
// The output is always written in week order with duplicates removed.
func CombineDays(days []string) string {
	return strings.Join(SortWeekly(days), "")
}

// SortWeekly returns the canonical days sorted Mon..Sun with duplicates and
// unrecognised values dropped.
func SortWeekly(days []string) []string {
	present := make(map[string]bool, len(days))
	for _, day := range days {
		if canonical := NormalizeDay(day); canonical != "" {
			present[canonical] = true
		}
	}
	sorted := make([]string, 0, len(present))
	for _, day := range weekOrder {
		if present[day] {
			sorted = append(sorted, day)
		}
	}
	return sorted
}
