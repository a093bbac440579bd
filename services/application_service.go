package services

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"projecthub/models"
)

// ApplicationService manages team applications to projects and the
// professor's approve/reject decisions, enforcing at most one approved team
// per project.
type ApplicationService struct {
	DB  *gorm.DB
	Log *logrus.Logger
}

func NewApplicationService(db *gorm.DB, log *logrus.Logger) *ApplicationService {
	return &ApplicationService{DB: db, Log: log}
}

type ApplyToProjectInput struct {
	TeamID     uint   `json:"team_id" validate:"required"`
	ProjectID  uint   `json:"project_id" validate:"required"`
	Motivation string `json:"motivation"`
}

// ApplyTeamToProject files a team's bid for a project. The team's project
// slot is reserved pessimistically (ProjectID set, status Pending) until the
// professor decides.
func (s *ApplicationService) ApplyTeamToProject(studentID uint, in ApplyToProjectInput) (*models.TeamApplication, error) {
	var application models.TeamApplication
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, in.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return E(KindNotFound, "project not found")
			}
			return err
		}

		team, err := lockTeam(tx, in.TeamID)
		if err != nil {
			return err
		}
		if team.LeaderID != studentID {
			return E(KindNotLeader, "only the team leader can apply to projects")
		}
		if team.ProjectID != nil {
			return E(KindAlreadyAssigned, "team is already assigned to a project")
		}

		var prior models.TeamApplication
		err = tx.Where("project_id = ? AND team_id = ?", in.ProjectID, in.TeamID).First(&prior).Error
		if err == nil {
			return E(KindDuplicateApplication, "team already applied to this project")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		application = models.TeamApplication{
			ProjectID:  in.ProjectID,
			TeamID:     in.TeamID,
			Status:     models.StatusPending,
			Motivation: in.Motivation,
		}
		if err := tx.Create(&application).Error; err != nil {
			return err
		}

		return tx.Model(team).Updates(map[string]interface{}{
			"project_id": in.ProjectID,
			"status":     models.StatusPending,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"application_id": application.ID,
		"team_id":        in.TeamID,
		"project_id":     in.ProjectID,
	}).Info("team applied to project")
	return &application, nil
}

// ApproveApplication assigns the applying team to the project and rejects
// every sibling application in the same transaction. Arbitration is
// first-writer-wins: the existing-approved-team check runs under a lock, so
// a concurrent second approval observes the winner and fails AlreadyAssigned.
func (s *ApplicationService) ApproveApplication(applicationID, professorID uint) (*models.TeamApplication, error) {
	var application models.TeamApplication
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&application, applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return E(KindNotFound, "application not found")
			}
			return err
		}

		var project models.Project
		if err := forUpdate(tx).First(&project, application.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return E(KindNotFound, "project not found")
			}
			return err
		}
		if project.ProfessorID != professorID {
			return E(KindNotOwner, "only the professor who created the project can approve applications")
		}
		if application.Status != models.StatusPending {
			return E(KindInvalidTransition, "application is already %s", application.Status)
		}

		var approved models.ProjectTeam
		err := forUpdate(tx).
			Where("project_id = ? AND status = ?", project.ID, models.StatusApproved).
			First(&approved).Error
		if err == nil {
			return E(KindAlreadyAssigned, "project already has an approved team")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Model(&application).Update("status", models.StatusApproved).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.ProjectTeam{}).Where("id = ?", application.TeamID).
			Updates(map[string]interface{}{
				"project_id": project.ID,
				"status":     models.StatusApproved,
			}).Error; err != nil {
			return err
		}

		// Single-winner arbitration: every sibling application flips to
		// Rejected and its team's reservation on this project is released.
		if err := tx.Model(&models.TeamApplication{}).
			Where("project_id = ? AND id != ?", project.ID, application.ID).
			Update("status", models.StatusRejected).Error; err != nil {
			return err
		}
		return tx.Model(&models.ProjectTeam{}).
			Where("project_id = ? AND id != ?", project.ID, application.TeamID).
			Updates(map[string]interface{}{
				"project_id": nil,
				"status":     models.StatusRejected,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"application_id": application.ID,
		"team_id":        application.TeamID,
		"project_id":     application.ProjectID,
	}).Info("team application approved")
	return &application, nil
}

// WithdrawApplication deletes a team's bid; leader only. The pessimistic
// reservation is released when the team still points at the withdrawn
// project without having been approved.
func (s *ApplicationService) WithdrawApplication(applicationID, studentID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var application models.TeamApplication
		if err := tx.First(&application, applicationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return E(KindNotFound, "application not found")
			}
			return err
		}

		team, err := lockTeam(tx, application.TeamID)
		if err != nil {
			return err
		}
		if team.LeaderID != studentID {
			return E(KindNotLeader, "only the team leader can withdraw an application")
		}

		if err := tx.Unscoped().Delete(&application).Error; err != nil {
			return err
		}

		if team.ProjectID != nil && *team.ProjectID == application.ProjectID && team.Status != models.StatusApproved {
			return tx.Model(team).Updates(map[string]interface{}{
				"project_id": nil,
				"status":     models.StatusPending,
			}).Error
		}
		return nil
	})
}

// UpdateTeamStatus is the direct professor action on a team, bypassing the
// application object. Rejection releases the team's project slot; approval
// guards the single-assignment invariant. The matching application, if any,
// mirrors the new status.
func (s *ApplicationService) UpdateTeamStatus(teamID uint, status string, professorID uint) (*models.ProjectTeam, error) {
	if status != models.StatusPending && status != models.StatusApproved && status != models.StatusRejected {
		return nil, E(KindValidation, "invalid team status %q", status)
	}

	var team *models.ProjectTeam
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		team, err = lockTeam(tx, teamID)
		if err != nil {
			return err
		}
		if team.ProjectID == nil {
			return E(KindValidation, "team is not associated with any project")
		}
		projectID := *team.ProjectID

		var project models.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return E(KindNotFound, "project not found")
			}
			return err
		}
		if project.ProfessorID != professorID {
			return E(KindNotOwner, "only the professor who created the project can update team status")
		}

		updates := map[string]interface{}{"status": status}
		if status == models.StatusApproved {
			var approved models.ProjectTeam
			err := forUpdate(tx).
				Where("project_id = ? AND status = ? AND id != ?", projectID, models.StatusApproved, teamID).
				First(&approved).Error
			if err == nil {
				return E(KindAlreadyAssigned, "project already has an approved team")
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		} else if status == models.StatusRejected {
			updates["project_id"] = nil
		}

		if err := tx.Model(team).Updates(updates).Error; err != nil {
			return err
		}

		return tx.Model(&models.TeamApplication{}).
			Where("team_id = ? AND project_id = ?", teamID, projectID).
			Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// ApplicationView is the student-facing shape of a team application.
type ApplicationView struct {
	ID         uint   `json:"id"`
	ProjectID  uint   `json:"project_id"`
	TeamID     uint   `json:"team_id"`
	Status     string `json:"status"`
	Motivation string `json:"motivation"`
}

// ListTeamApplications returns the applications filed by teams the student
// belongs to.
func (s *ApplicationService) ListTeamApplications(studentID uint) ([]ApplicationView, error) {
	teams, err := teamsOfStudent(s.DB, studentID)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return []ApplicationView{}, nil
	}

	ids := make([]uint, 0, len(teams))
	for _, team := range teams {
		ids = append(ids, team.ID)
	}
	var applications []models.TeamApplication
	if err := s.DB.Where("team_id IN ?", ids).Find(&applications).Error; err != nil {
		return nil, err
	}

	views := make([]ApplicationView, 0, len(applications))
	for _, application := range applications {
		views = append(views, ApplicationView{
			ID:         application.ID,
			ProjectID:  application.ProjectID,
			TeamID:     application.TeamID,
			Status:     application.Status,
			Motivation: application.Motivation,
		})
	}
	return views, nil
}
