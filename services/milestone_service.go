package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecthub/models"
	"projecthub/utils"
)

// MilestoneService manages milestone definition, team submissions and
// professor grading. Submission is single-shot per milestone and
// deadline-gated at date granularity.
type MilestoneService struct {
	DB      *gorm.DB
	Storage *utils.Storage
	Log     *logrus.Logger
}

func NewMilestoneService(db *gorm.DB, storage *utils.Storage, log *logrus.Logger) *MilestoneService {
	return &MilestoneService{DB: db, Storage: storage, Log: log}
}

type MilestoneInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description"`
	DueDate     string  `json:"due_date" validate:"required,datetime=2006-01-02"`
	Weightage   float64 `json:"weightage" validate:"gt=0,lte=100"`
}

// AddMilestone defines a new milestone on a project owned by professorID.
func (s *MilestoneService) AddMilestone(projectID, professorID uint, in MilestoneInput) (*models.Milestone, error) {
	dueDate, err := parseDueDate(in.DueDate)
	if err != nil {
		return nil, err
	}
	if in.Weightage <= 0 || in.Weightage > 100 {
		return nil, E(KindValidation, "weightage must be greater than 0 and at most 100")
	}

	var project models.Project
	if err := s.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, E(KindNotFound, "project not found")
		}
		return nil, err
	}
	if project.ProfessorID != professorID {
		return nil, E(KindNotOwner, "only the professor who created the project can add milestones")
	}

	milestone := models.Milestone{
		ProjectID:   projectID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     dueDate,
		Weightage:   in.Weightage,
	}
	if err := s.DB.Create(&milestone).Error; err != nil {
		return nil, err
	}
	return &milestone, nil
}

// FileUpload carries one uploaded file into the submission transaction.
type FileUpload struct {
	Filename string
	Data     []byte
}

type SubmitMilestoneInput struct {
	MilestoneID uint
	TeamID      uint
	Text        string
	Links       []string
	Files       []FileUpload
}

// SubmitMilestone records a team's submission for a milestone. Files go
// through the content store inside the transaction; a failed transaction
// discards everything written.
func (s *MilestoneService) SubmitMilestone(studentID uint, in SubmitMilestoneInput) (*models.MilestoneSubmission, error) {
	var submission models.MilestoneSubmission
	var storedHandles []string

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var milestone models.Milestone
		if err := tx.First(&milestone, in.MilestoneID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return E(KindNotFound, "milestone not found")
			}
			return err
		}

		var team models.ProjectTeam
		if err := tx.First(&team, in.TeamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return E(KindNotFound, "team not found")
			}
			return err
		}
		if team.ProjectID == nil || *team.ProjectID != milestone.ProjectID {
			return E(KindTeamMismatch, "team is not assigned to this milestone's project")
		}

		if studentID != 0 {
			var membership models.TeamMember
			err := tx.Where("team_id = ? AND student_id = ?", in.TeamID, studentID).First(&membership).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return E(KindNotTeamMember, "you are not a member of this team")
			}
			if err != nil {
				return err
			}
		}

		// Single-shot: the milestone owns one submission slot regardless of
		// team, backed by the unique index on milestone_id.
		var existing models.MilestoneSubmission
		err := tx.Where("milestone_id = ?", in.MilestoneID).First(&existing).Error
		if err == nil {
			return E(KindAlreadySubmitted, "this milestone has already been submitted")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if milestone.DueDate != nil && dateOnly(time.Now()).After(dateOnly(*milestone.DueDate)) {
			return E(KindDeadlinePassed, "milestone deadline has passed")
		}

		text := in.Text
		if len(in.Links) > 0 {
			text += "\n\nLinks:\n" + strings.Join(in.Links, "\n")
		}
		submission = models.MilestoneSubmission{
			MilestoneID:    in.MilestoneID,
			TeamID:         in.TeamID,
			SubmittedAt:    time.Now().UTC(),
			SubmissionText: text,
		}
		if err := tx.Create(&submission).Error; err != nil {
			return err
		}

		dir := fmt.Sprintf("milestone_submissions/%d", submission.ID)
		for _, file := range in.Files {
			handle, err := s.Storage.Store(file.Data, dir, file.Filename)
			if err != nil {
				return err
			}
			storedHandles = append(storedHandles, handle)
			document := models.SubmissionDocument{
				SubmissionID: submission.ID,
				Filename:     file.Filename,
				FilePath:     handle,
			}
			if err := tx.Create(&document).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// Discard files written before the rollback.
		for _, handle := range storedHandles {
			if rmErr := s.Storage.Remove(handle); rmErr != nil {
				s.Log.WithError(rmErr).WithField("handle", handle).Warn("failed to discard partial upload")
			}
		}
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"submission_id": submission.ID,
		"milestone_id":  in.MilestoneID,
		"team_id":       in.TeamID,
	}).Info("milestone submitted")
	return &submission, nil
}

// GradeSubmission overwrites the grade and feedback on an existing
// submission.
func (s *MilestoneService) GradeSubmission(submissionID uint, grade float64, feedback string, professorID uint) (*models.MilestoneSubmission, error) {
	if grade < 0 || grade > 100 {
		return nil, E(KindInvalidGrade, "grade must be between 0 and 100")
	}

	var submission models.MilestoneSubmission
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&submission, submissionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return E(KindNotFound, "submission not found")
			}
			return err
		}
		if err := s.checkMilestoneOwner(tx, submission.MilestoneID, professorID); err != nil {
			return err
		}
		return tx.Model(&submission).Updates(map[string]interface{}{
			"grade":    grade,
			"feedback": feedback,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

// GradeMilestone grades the submission slot of a milestone for a team,
// creating the record first when no submission exists. Grading ahead of a
// formal submission is an intentional administrative override; the fabricated
// row occupies the milestone's single slot.
func (s *MilestoneService) GradeMilestone(milestoneID, teamID uint, grade float64, feedback string, professorID uint) (*models.MilestoneSubmission, error) {
	if grade < 0 || grade > 100 {
		return nil, E(KindInvalidGrade, "grade must be between 0 and 100")
	}

	var submission models.MilestoneSubmission
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var milestone models.Milestone
		if err := tx.First(&milestone, milestoneID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return E(KindNotFound, "milestone not found")
			}
			return err
		}

		var project models.Project
		if err := tx.First(&project, milestone.ProjectID).Error; err != nil {
			return err
		}
		if project.ProfessorID != professorID {
			return E(KindNotOwner, "only the professor who created the project can grade submissions")
		}

		var team models.ProjectTeam
		if err := tx.First(&team, teamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return E(KindNotFound, "team not found")
			}
			return err
		}
		if team.ProjectID == nil || *team.ProjectID != milestone.ProjectID {
			return E(KindTeamMismatch, "team is not assigned to this project")
		}

		err := tx.Where("milestone_id = ?", milestoneID).First(&submission).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			submission = models.MilestoneSubmission{
				MilestoneID: milestoneID,
				TeamID:      teamID,
				SubmittedAt: time.Now().UTC(),
			}
			if err := tx.Create(&submission).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else if submission.TeamID != teamID {
			return E(KindTeamMismatch, "submission belongs to a different team")
		}

		return tx.Model(&submission).Updates(map[string]interface{}{
			"grade":    grade,
			"feedback": feedback,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *MilestoneService) checkMilestoneOwner(tx *gorm.DB, milestoneID, professorID uint) error {
	var milestone models.Milestone
	if err := tx.First(&milestone, milestoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return E(KindNotFound, "milestone not found")
		}
		return err
	}
	var project models.Project
	if err := tx.First(&project, milestone.ProjectID).Error; err != nil {
		return err
	}
	if project.ProfessorID != professorID {
		return E(KindNotOwner, "only the professor who created the project can grade submissions")
	}
	return nil
}

// StudentMilestone is the student-facing shape of a milestone with its
// submission state.
type StudentMilestone struct {
	ID             uint       `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	DueDate        *time.Time `json:"due_date"`
	Weightage      float64    `json:"weightage"`
	ProjectID      uint       `json:"project_id"`
	TeamID         uint       `json:"team_id"`
	Submitted      bool       `json:"submitted"`
	Grade          *float64   `json:"grade"`
	Feedback       *string    `json:"feedback"`
	SubmissionDate *time.Time `json:"submission_date"`
}

// ListStudentMilestones returns the milestones of every project a student's
// teams are working on, with submission state.
func (s *MilestoneService) ListStudentMilestones(studentID uint) ([]StudentMilestone, error) {
	teams, err := teamsOfStudent(s.DB, studentID)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return []StudentMilestone{}, nil
	}

	result := []StudentMilestone{}
	for _, team := range teams {
		if team.ProjectID == nil {
			continue
		}
		var milestones []models.Milestone
		if err := s.DB.Where("project_id = ?", *team.ProjectID).Find(&milestones).Error; err != nil {
			return nil, err
		}
		for _, milestone := range milestones {
			row := StudentMilestone{
				ID:          milestone.ID,
				Title:       milestone.Title,
				Description: milestone.Description,
				DueDate:     milestone.DueDate,
				Weightage:   milestone.Weightage,
				ProjectID:   milestone.ProjectID,
				TeamID:      team.ID,
			}
			var submission models.MilestoneSubmission
			err := s.DB.Where("milestone_id = ? AND team_id = ?", milestone.ID, team.ID).First(&submission).Error
			if err == nil {
				row.Submitted = true
				row.Grade = submission.Grade
				row.Feedback = submission.Feedback
				submittedAt := submission.SubmittedAt
				row.SubmissionDate = &submittedAt
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			result = append(result, row)
		}
	}
	return result, nil
}

// SubmissionView is the professor-facing shape of a submission.
type SubmissionView struct {
	SubmissionID   uint           `json:"submission_id"`
	MilestoneID    uint           `json:"milestone_id"`
	MilestoneTitle string         `json:"milestone_title"`
	ProjectID      uint           `json:"project_id"`
	TeamID         uint           `json:"team_id"`
	TeamName       string         `json:"team_name"`
	SubmittedAt    time.Time      `json:"submitted_at"`
	Grade          *float64       `json:"grade"`
	Feedback       *string        `json:"feedback"`
	IsGraded       bool           `json:"is_graded"`
	Documents      []DocumentView `json:"documents"`
}

type DocumentView struct {
	ID       uint   `json:"id"`
	Filename string `json:"filename"`
}

// ListProfessorSubmissions returns all submissions against the professor's
// projects, optionally narrowed to one project.
func (s *MilestoneService) ListProfessorSubmissions(professorID uint, projectID *uint) ([]SubmissionView, error) {
	query := s.DB.Model(&models.Project{}).Where("professor_id = ?", professorID)
	if projectID != nil {
		query = query.Where("id = ?", *projectID)
	}
	var projects []models.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return []SubmissionView{}, nil
	}

	projectIDs := make([]uint, 0, len(projects))
	for _, p := range projects {
		projectIDs = append(projectIDs, p.ID)
	}

	var milestones []models.Milestone
	if err := s.DB.Where("project_id IN ?", projectIDs).Find(&milestones).Error; err != nil {
		return nil, err
	}
	if len(milestones) == 0 {
		return []SubmissionView{}, nil
	}
	milestoneLookup := map[uint]models.Milestone{}
	milestoneIDs := make([]uint, 0, len(milestones))
	for _, m := range milestones {
		milestoneLookup[m.ID] = m
		milestoneIDs = append(milestoneIDs, m.ID)
	}

	var submissions []models.MilestoneSubmission
	if err := s.DB.Where("milestone_id IN ?", milestoneIDs).Find(&submissions).Error; err != nil {
		return nil, err
	}

	views := make([]SubmissionView, 0, len(submissions))
	for _, submission := range submissions {
		milestone := milestoneLookup[submission.MilestoneID]

		teamName := "Unknown"
		var team models.ProjectTeam
		if err := s.DB.First(&team, submission.TeamID).Error; err == nil {
			teamName = team.Name
		}

		var documents []models.SubmissionDocument
		if err := s.DB.Where("submission_id = ?", submission.ID).Find(&documents).Error; err != nil {
			return nil, err
		}
		docViews := make([]DocumentView, 0, len(documents))
		for _, doc := range documents {
			docViews = append(docViews, DocumentView{ID: doc.ID, Filename: doc.Filename})
		}

		views = append(views, SubmissionView{
			SubmissionID:   submission.ID,
			MilestoneID:    milestone.ID,
			MilestoneTitle: milestone.Title,
			ProjectID:      milestone.ProjectID,
			TeamID:         submission.TeamID,
			TeamName:       teamName,
			SubmittedAt:    submission.SubmittedAt,
			Grade:          submission.Grade,
			Feedback:       submission.Feedback,
			IsGraded:       submission.Grade != nil,
			Documents:      docViews,
		})
	}
	return views, nil
}

func parseDueDate(value string) (*time.Time, error) {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, E(KindValidation, "invalid due date format, use YYYY-MM-DD")
	}
	return &parsed, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
