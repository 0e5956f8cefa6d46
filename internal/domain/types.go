package domain

import "time"

// Container is a GitLab project or group, the scope issues are queried against.
// FullPath plus Type identify it; Name is display-only.
type Container struct {
	FullPath string `json:"fullPath"`
	Name     string `json:"name"`
	Type     string `json:"type"`
}

const (
	ContainerProject = "project"
	ContainerGroup   = "group"
)

type Label struct {
	Title string `json:"title"`
	Color string `json:"color"`
}

// Timelog is one recorded time entry against an issue. TimeSpent may be
// negative (corrections) and must be preserved as-is.
type Timelog struct {
	Summary   string `json:"summary"`
	TimeSpent int    `json:"timeSpent"`
	SpentAt   string `json:"spentAt"`
	Username  string `json:"username"`
}

// Issue is a read-only snapshot of one tracked work item, fetched per request
// and never persisted.
type Issue struct {
	ID             string     `json:"id"`
	IID            string     `json:"iid"`
	Title          string     `json:"title"`
	CreatedAt      *time.Time `json:"createdAt"`
	ClosedAt       *time.Time `json:"closedAt"`
	DueDate        *time.Time `json:"dueDate"`
	TimeEstimate   int        `json:"timeEstimate"`
	TotalTimeSpent int        `json:"totalTimeSpent"`
	ProjectID      int        `json:"projectId"`
	WebURL         string     `json:"webUrl"`
	Labels         []Label    `json:"labels"`
	Timelogs       []Timelog  `json:"timelogs"`
}

// IssueTime is one issue's contribution to a period bucket, in encounter order.
type IssueTime struct {
	Title     string `json:"issueTitle"`
	TimeSpent int    `json:"timeSpent"`
}

// PeriodBucket accumulates one user's time over one period key
// ("YYYY-MM-DD" for day buckets, "YYYY-MM" for month buckets).
// TotalSeconds always equals the sum of Issues[i].TimeSpent.
type PeriodBucket struct {
	Period       string      `json:"period"`
	TotalSeconds int         `json:"totalSeconds"`
	Issues       []IssueTime `json:"issues"`
}

// TimeData maps username to that user's period buckets in ascending
// chronological order. No cross-user ordering is defined.
type TimeData map[string][]PeriodBucket

type Point struct {
	X string  `json:"x"`
	Y float64 `json:"y"`
}

type Dataset struct {
	Label           string  `json:"label"`
	Data            []Point `json:"data"`
	BorderColor     string  `json:"borderColor"`
	BackgroundColor string  `json:"backgroundColor,omitempty"`
	BorderWidth     int     `json:"borderWidth,omitempty"`
	Fill            bool    `json:"fill"`
}

// ChartData is the plotting-ready projection: one shared label axis plus a
// "Total Time Spent" dataset followed by one dataset per user.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

const (
	TimeUnitHours = "hours"
	TimeUnitDays  = "days"
)
