package services

import (
	"errors"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"projecthub/models"
)

// TeamService owns team creation, the membership invariants (at most
// MaxTeamSize members, leader is always a member) and the join-request
// workflow decided by the team leader.
type TeamService struct {
	DB  *gorm.DB
	Log *logrus.Logger
}

func NewTeamService(db *gorm.DB, log *logrus.Logger) *TeamService {
	return &TeamService{DB: db, Log: log}
}

type CreateTeamInput struct {
	Name      string `json:"name" validate:"required,max=100"`
	MemberIDs []uint `json:"member_ids"`
}

// CreateTeam creates a team led by leaderID. The leader is implicitly a
// member; MemberIDs may list additional students.
func (s *TeamService) CreateTeam(leaderID uint, in CreateTeamInput) (*models.ProjectTeam, error) {
	seen := map[uint]bool{leaderID: true}
	members := []uint{leaderID}
	for _, id := range in.MemberIDs {
		if id == leaderID {
			continue
		}
		if seen[id] {
			return nil, E(KindDuplicateMember, "student %d listed more than once", id)
		}
		seen[id] = true
		members = append(members, id)
	}
	if len(members) > models.MaxTeamSize {
		return nil, E(KindCapacityExceeded, "a team cannot have more than %d members", models.MaxTeamSize)
	}

	team := models.ProjectTeam{
		Name:     in.Name,
		LeaderID: leaderID,
		Status:   models.StatusPending,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		for _, studentID := range members {
			member := models.TeamMember{TeamID: team.ID, StudentID: studentID}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"team_id":   team.ID,
		"leader_id": leaderID,
		"members":   len(members),
	}).Info("team created")
	return &team, nil
}

// AddMember lets the team leader add a student directly. Capacity is
// re-validated under a row lock on the team so concurrent adds cannot push
// membership past the cap.
func (s *TeamService) AddMember(teamID, studentID, actingStudentID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		team, err := lockTeam(tx, teamID)
		if err != nil {
			return err
		}
		if team.LeaderID != actingStudentID {
			return E(KindNotLeader, "only the team leader can add members")
		}
		if team.IsLocked {
			return E(KindTeamLocked, "team %d is locked", teamID)
		}
		return addMemberLocked(tx, team, studentID)
	})
}

// addMemberLocked inserts the membership edge; the caller must hold the team
// row lock.
func addMemberLocked(tx *gorm.DB, team *models.ProjectTeam, studentID uint) error {
	var existing models.TeamMember
	err := tx.Where("team_id = ? AND student_id = ?", team.ID, studentID).First(&existing).Error
	if err == nil {
		return E(KindAlreadyMember, "student %d is already a member of team %d", studentID, team.ID)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var count int64
	if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&count).Error; err != nil {
		return err
	}
	if count >= models.MaxTeamSize {
		return E(KindTeamFull, "team %d is already full", team.ID)
	}

	return tx.Create(&models.TeamMember{TeamID: team.ID, StudentID: studentID}).Error
}

// ApplyToTeam files a student's request to join a team.
func (s *TeamService) ApplyToTeam(studentID, teamID uint, message string) (*models.StudentTeamApplication, error) {
	var application models.StudentTeamApplication
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var team models.ProjectTeam
		if err := tx.First(&team, teamID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return E(KindNotFound, "team not found")
			}
			return err
		}

		var membership models.TeamMember
		err := tx.Where("team_id = ? AND student_id = ?", teamID, studentID).First(&membership).Error
		if err == nil {
			return E(KindAlreadyMember, "student is already a member of this team")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var count int64
		if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", teamID).Count(&count).Error; err != nil {
			return err
		}
		if count >= models.MaxTeamSize {
			return E(KindTeamFull, "team is already full")
		}

		// A rejected request may be re-filed; pending or approved may not.
		var prior models.StudentTeamApplication
		err = tx.Where("team_id = ? AND student_id = ? AND status IN ?",
			teamID, studentID, []string{models.StatusPending, models.StatusApproved}).
			First(&prior).Error
		if err == nil {
			return E(KindDuplicateApplication, "student already applied to this team")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		application = models.StudentTeamApplication{
			TeamID:    teamID,
			StudentID: studentID,
			Status:    models.StatusPending,
			Message:   message,
		}
		return tx.Create(&application).Error
	})
	if err != nil {
		return nil, err
	}
	return &application, nil
}

// ApproveJoinRequest lets the team leader accept a pending request. Capacity
// is re-checked at approval time: a request that raced the last slot is
// transitioned to Rejected and TeamFull surfaces to the caller.
func (s *TeamService) ApproveJoinRequest(applicationID, actingStudentID uint) error {
	rejectedFull := false
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		application, team, err := loadJoinRequest(tx, applicationID, actingStudentID)
		if err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&count).Error; err != nil {
			return err
		}
		if count >= models.MaxTeamSize {
			rejectedFull = true
			return tx.Model(application).Update("status", models.StatusRejected).Error
		}

		if err := addMemberLocked(tx, team, application.StudentID); err != nil {
			return err
		}
		return tx.Model(application).Update("status", models.StatusApproved).Error
	})
	if err != nil {
		return err
	}
	if rejectedFull {
		return E(KindTeamFull, "team is already full")
	}
	return nil
}

// RejectJoinRequest lets the team leader decline a pending request.
func (s *TeamService) RejectJoinRequest(applicationID, actingStudentID uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		application, _, err := loadJoinRequest(tx, applicationID, actingStudentID)
		if err != nil {
			return err
		}
		return tx.Model(application).Update("status", models.StatusRejected).Error
	})
}

// loadJoinRequest fetches a pending join request and its team (locked),
// enforcing that the actor is the team leader.
func loadJoinRequest(tx *gorm.DB, applicationID, actingStudentID uint) (*models.StudentTeamApplication, *models.ProjectTeam, error) {
	var application models.StudentTeamApplication
	if err := tx.First(&application, applicationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, E(KindNotFound, "application not found")
		}
		return nil, nil, err
	}

	team, err := lockTeam(tx, application.TeamID)
	if err != nil {
		return nil, nil, err
	}
	if team.LeaderID != actingStudentID {
		return nil, nil, E(KindNotLeader, "only the team leader can decide join requests")
	}
	if application.Status != models.StatusPending {
		return nil, nil, E(KindInvalidTransition, "application is already %s", application.Status)
	}
	return &application, team, nil
}

// forUpdate applies a row lock where the dialect supports it. SQLite
// serializes writers on its own and rejects FOR UPDATE.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func lockTeam(tx *gorm.DB, teamID uint) (*models.ProjectTeam, error) {
	var team models.ProjectTeam
	err := forUpdate(tx).First(&team, teamID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, E(KindNotFound, "team not found")
		}
		return nil, err
	}
	return &team, nil
}

// JoinRequestView is the leader-facing shape of a join request.
type JoinRequestView struct {
	ID          uint   `json:"id"`
	TeamID      uint   `json:"team_id"`
	StudentID   uint   `json:"student_id"`
	StudentName string `json:"student_name"`
	Status      string `json:"status"`
	Message     string `json:"message"`
}

// ListJoinRequests returns the requests filed against a team; leader only.
func (s *TeamService) ListJoinRequests(teamID, actingStudentID uint) ([]JoinRequestView, error) {
	var team models.ProjectTeam
	if err := s.DB.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, E(KindNotFound, "team not found")
		}
		return nil, err
	}
	if team.LeaderID != actingStudentID {
		return nil, E(KindNotLeader, "only the team leader can view join requests")
	}

	var applications []models.StudentTeamApplication
	if err := s.DB.Where("team_id = ?", teamID).Find(&applications).Error; err != nil {
		return nil, err
	}

	views := make([]JoinRequestView, 0, len(applications))
	for _, application := range applications {
		views = append(views, JoinRequestView{
			ID:          application.ID,
			TeamID:      application.TeamID,
			StudentID:   application.StudentID,
			StudentName: s.studentName(application.StudentID),
			Status:      application.Status,
			Message:     application.Message,
		})
	}
	return views, nil
}

// ListStudentJoinRequests returns the join requests a student has filed.
func (s *TeamService) ListStudentJoinRequests(studentID uint) ([]JoinRequestView, error) {
	var applications []models.StudentTeamApplication
	if err := s.DB.Where("student_id = ?", studentID).Find(&applications).Error; err != nil {
		return nil, err
	}

	views := make([]JoinRequestView, 0, len(applications))
	for _, application := range applications {
		views = append(views, JoinRequestView{
			ID:        application.ID,
			TeamID:    application.TeamID,
			StudentID: application.StudentID,
			Status:    application.Status,
			Message:   application.Message,
		})
	}
	return views, nil
}

// TeamSummary is the collaborator-finder shape of a team.
type TeamSummary struct {
	ID         uint     `json:"id"`
	Name       string   `json:"name"`
	Members    int      `json:"members"`
	MaxMembers int      `json:"max_members"`
	Projects   []string `json:"projects"`
	IsOpen     bool     `json:"is_open"`
	LeaderID   uint     `json:"leader_id"`
	LeaderName string   `json:"leader_name"`
	Status     string   `json:"status"`
}

// ListTeams returns all teams with membership counts and openness.
func (s *TeamService) ListTeams() ([]TeamSummary, error) {
	var teams []models.ProjectTeam
	if err := s.DB.Find(&teams).Error; err != nil {
		return nil, err
	}
	return s.summarize(teams)
}

// ListStudentTeams returns the teams a student belongs to.
func (s *TeamService) ListStudentTeams(studentID uint) ([]TeamSummary, error) {
	teams, err := teamsOfStudent(s.DB, studentID)
	if err != nil {
		return nil, err
	}
	return s.summarize(teams)
}

func (s *TeamService) summarize(teams []models.ProjectTeam) ([]TeamSummary, error) {
	summaries := make([]TeamSummary, 0, len(teams))
	for _, team := range teams {
		var count int64
		if err := s.DB.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&count).Error; err != nil {
			return nil, err
		}

		projects := []string{}
		if team.ProjectID != nil {
			var project models.Project
			if err := s.DB.First(&project, *team.ProjectID).Error; err == nil {
				projects = append(projects, project.Title)
			}
		}

		summaries = append(summaries, TeamSummary{
			ID:         team.ID,
			Name:       team.Name,
			Members:    int(count),
			MaxMembers: models.MaxTeamSize,
			Projects:   projects,
			IsOpen:     count < models.MaxTeamSize && !team.IsLocked,
			LeaderID:   team.LeaderID,
			LeaderName: s.studentName(team.LeaderID),
			Status:     team.Status,
		})
	}
	return summaries, nil
}

// studentName resolves a student's display name; missing links render as
// "Unknown" rather than failing the read.
func (s *TeamService) studentName(studentID uint) string {
	var student models.Student
	if err := s.DB.First(&student, studentID).Error; err != nil {
		return "Unknown"
	}
	var user models.User
	if err := s.DB.First(&user, student.UserID).Error; err != nil {
		return "Unknown"
	}
	return user.FullName
}

func teamsOfStudent(db *gorm.DB, studentID uint) ([]models.ProjectTeam, error) {
	var memberships []models.TeamMember
	if err := db.Where("student_id = ?", studentID).Find(&memberships).Error; err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.TeamID)
	}
	var teams []models.ProjectTeam
	if err := db.Where("id IN ?", ids).Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}
