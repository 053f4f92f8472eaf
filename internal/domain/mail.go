package domain

type MailMessage struct {
	Type string `json:"type"`
	To   string `json:"to"`
	Data any    `json:"data"`
}

const MailTypeSolveReport = "solve_report"

type SolveReportMailData struct {
	LocationName     string `json:"locationName"`
	Status           string `json:"status"`
	Objective        string `json:"objective"`
	AssignmentsCount int    `json:"assignmentsCount"`
	CycleStart       string `json:"cycleStart"`
	Duration         string `json:"duration"`
}
