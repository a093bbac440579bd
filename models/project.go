package models

import (
	"time"

	"gorm.io/gorm"
)

// Project statuses
const (
	ProjectOpen       = "Open"
	ProjectInProgress = "In Progress"
	ProjectCompleted  = "Completed"
	ProjectCancelled  = "Cancelled"
)

// Project is published by a professor and owns its milestones and resources.
type Project struct {
	gorm.Model
	Title       string   `gorm:"not null" json:"title"`
	Description string   `gorm:"not null" json:"description"`
	Year        string   `gorm:"not null" json:"year"` // eligible academic year
	Tags        []string `gorm:"type:jsonb;serializer:json" json:"tags"`
	Status      string   `gorm:"default:'Open'" json:"status"`
	ProfessorID uint     `gorm:"not null;index" json:"professor_id"`

	// Relations
	Professor    Professor         `json:"-"`
	Milestones   []Milestone       `gorm:"foreignKey:ProjectID" json:"milestones,omitempty"`
	Resources    []ProjectResource `gorm:"foreignKey:ProjectID" json:"resources,omitempty"`
	Applications []TeamApplication `gorm:"foreignKey:ProjectID" json:"applications,omitempty"`
}

// ProjectResource is a professor-uploaded file attached to a project.
type ProjectResource struct {
	gorm.Model
	ProjectID uint   `gorm:"not null;index" json:"project_id"`
	Filename  string `gorm:"not null" json:"filename"`
	FilePath  string `gorm:"not null" json:"-"`

	Project Project `json:"-"`
}

// Milestone is a graded deliverable with a due date. Weightage is the
// advisory percentage contribution to the overall project grade.
type Milestone struct {
	gorm.Model
	ProjectID   uint       `gorm:"not null;index" json:"project_id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `gorm:"type:date" json:"due_date"`
	Weightage   float64    `gorm:"not null" json:"weightage"`

	Project    Project              `json:"-"`
	Submission *MilestoneSubmission `gorm:"foreignKey:MilestoneID" json:"submission,omitempty"`
}

// MilestoneSubmission holds the single submission slot for a milestone.
// The unique index on MilestoneID makes submission single-shot.
type MilestoneSubmission struct {
	gorm.Model
	MilestoneID    uint      `gorm:"not null;uniqueIndex" json:"milestone_id"`
	TeamID         uint      `gorm:"not null;index" json:"team_id"`
	SubmittedAt    time.Time `json:"submitted_at"`
	SubmissionText string    `json:"submission_text"`
	Grade          *float64  `json:"grade"`
	Feedback       *string   `json:"feedback"`

	Milestone Milestone            `json:"-"`
	Team      ProjectTeam          `json:"-"`
	Documents []SubmissionDocument `gorm:"foreignKey:SubmissionID" json:"documents,omitempty"`
}

// SubmissionDocument is an uploaded file attached to a submission.
type SubmissionDocument struct {
	gorm.Model
	SubmissionID uint   `gorm:"not null;index" json:"submission_id"`
	Filename     string `gorm:"not null" json:"filename"`
	FilePath     string `gorm:"not null" json:"-"`

	Submission MilestoneSubmission `json:"-"`
}
