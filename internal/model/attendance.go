package model

// Attendance is one presence record for (schedule, member, date).
type Attendance struct {
	ID         uint64  `json:"id"`
	ScheduleID uint64  `json:"schedule_id"`
	MemberID   uint64  `json:"member_id"`
	CoachID    *uint64 `json:"coach_id"`
	Date       Date    `json:"date"`
	IsPresent  bool    `json:"is_present"`
}

// AttendanceRow is one line of an attendance sheet. ID is 0 when nothing
// has been recorded for the member on that date yet.
type AttendanceRow struct {
	ID           uint64  `json:"id"`
	MemberID     uint64  `json:"member_id"`
	MemberName   string  `json:"member_name"`
	BirthDate    Date    `json:"birth_date"`
	IsPresent    bool    `json:"is_present"`
	Date         Date    `json:"date"`
	ParentPhone  *string `json:"parent_phone"`
	MedicalNotes *string `json:"medical_notes"`
}

// AttendanceHistoryEntry is one dated record in a member's history.
type AttendanceHistoryEntry struct {
	ID        uint64 `json:"id"`
	Date      Date   `json:"date"`
	IsPresent bool   `json:"is_present"`
}

// AttendanceStats summarizes a member's attendance over a period.
type AttendanceStats struct {
	Total      int                      `json:"total"`
	Present    int                      `json:"present"`
	Percentage float64                  `json:"percentage"`
	History    []AttendanceHistoryEntry `json:"history"`
}
