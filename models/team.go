package models

import "gorm.io/gorm"

// Team and application statuses share one state machine:
// Pending -> Approved | Rejected (terminal)
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// MaxTeamSize caps team membership, leader included.
const MaxTeamSize = 4

// ProjectTeam is a student team. ProjectID is set while the team holds a
// reservation on a project (pending or approved); the partial unique index
// enforces at most one Approved team per project at the store level.
type ProjectTeam struct {
	gorm.Model
	Name      string `gorm:"not null" json:"name"`
	ProjectID *uint  `gorm:"index;uniqueIndex:uni_project_assignment,where:status = 'Approved'" json:"project_id"`
	LeaderID  uint   `gorm:"not null;index" json:"leader_id"`
	IsLocked  bool   `gorm:"default:false" json:"is_locked"`
	Status    string `gorm:"default:'Pending'" json:"status"`

	// Relations
	Members      []TeamMember          `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	Submissions  []MilestoneSubmission `gorm:"foreignKey:TeamID" json:"submissions,omitempty"`
	Applications []TeamApplication     `gorm:"foreignKey:TeamID" json:"applications,omitempty"`
}

// TeamMember is the membership edge; unique per (team, student).
type TeamMember struct {
	gorm.Model
	TeamID    uint `gorm:"not null;uniqueIndex:uni_team_student" json:"team_id"`
	StudentID uint `gorm:"not null;uniqueIndex:uni_team_student;index" json:"student_id"`

	Team    ProjectTeam `json:"-"`
	Student Student     `json:"-"`
}

// TeamApplication is a team's bid for a project; unique per (project, team).
type TeamApplication struct {
	gorm.Model
	ProjectID  uint   `gorm:"not null;uniqueIndex:uni_project_team" json:"project_id"`
	TeamID     uint   `gorm:"not null;uniqueIndex:uni_project_team;index" json:"team_id"`
	Status     string `gorm:"default:'Pending'" json:"status"`
	Motivation string `json:"motivation"`

	Project Project     `json:"-"`
	Team    ProjectTeam `json:"-"`
}

// StudentTeamApplication is a student's request to join an existing team,
// decided by the team leader.
type StudentTeamApplication struct {
	gorm.Model
	TeamID    uint   `gorm:"not null;index" json:"team_id"`
	StudentID uint   `gorm:"not null;index" json:"student_id"`
	Status    string `gorm:"default:'Pending'" json:"status"`
	Message   string `json:"message"`

	Team    ProjectTeam `json:"-"`
	Student Student     `json:"-"`
}
