package model

// MaxActiveEnrollmentsPerMember caps how many weekly slots one member may hold.
const MaxActiveEnrollmentsPerMember = 2

// Enrollment links a member to a schedule.
type Enrollment struct {
	ID         uint64 `json:"id"`
	MemberID   uint64 `json:"member_id"`
	ScheduleID uint64 `json:"schedule_id"`
	StartDate  Date   `json:"start_date"`
	EndDate    *Date  `json:"end_date"`
	Active     bool   `json:"active"`
}

// EnrollmentDetail is an enrollment with its schedule attached.
type EnrollmentDetail struct {
	Enrollment
	Schedule Schedule `json:"schedule"`
}
