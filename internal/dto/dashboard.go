package dto

// ScheduleEntry is one enrolled student shown on the dashboard.
type ScheduleEntry struct {
	Name     *string `json:"name"`
	PhotoURL string  `json:"photo_url"`
}

// DaySchedule maps a day label to the students attending.
type DaySchedule map[string][]ScheduleEntry

// BranchSchedule maps a formatted time range ("9:00 AM-10:00 AM") to its days.
type BranchSchedule map[string]DaySchedule

// Schedule is the full dashboard payload: branch display name down to student
// lists. A branch key may map to an empty object when every slot under it had
// no students.
type Schedule map[string]BranchSchedule
