package model

// DashboardStats are the headline numbers on the owner dashboard.
type DashboardStats struct {
	ActiveMembers   int     `json:"active_members"`
	AttendanceToday int     `json:"attendance_today"`
	RevenueMonth    float64 `json:"revenue_month"`
}

// TodaySchedule is one of today's classes with live counts.
type TodaySchedule struct {
	ScheduleID    uint64 `json:"schedule_id"`
	GroupName     string `json:"group_name"`
	Time          string `json:"time"`
	Location      string `json:"location"`
	EnrolledCount int    `json:"enrolled_count"`
	PresentCount  int    `json:"present_count"`
	Cancelled     bool   `json:"cancelled"`
}
