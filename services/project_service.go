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

// ProjectService owns project CRUD, resource files and the read-only
// aggregation view composing project, team, milestone and submission state.
type ProjectService struct {
	DB      *gorm.DB
	Storage *utils.Storage
	Log     *logrus.Logger
}

func NewProjectService(db *gorm.DB, storage *utils.Storage, log *logrus.Logger) *ProjectService {
	return &ProjectService{DB: db, Storage: storage, Log: log}
}

type CreateProjectInput struct {
	Title       string           `json:"title" validate:"required,max=200"`
	Description string           `json:"description" validate:"required"`
	Year        string           `json:"year" validate:"required"`
	Tags        []string         `json:"tags"`
	Milestones  []MilestoneInput `json:"milestones" validate:"dive"`
}

// CreateProject creates a project with its initial milestones in one
// transaction.
func (s *ProjectService) CreateProject(professorID uint, in CreateProjectInput) (*models.Project, error) {
	type pendingMilestone struct {
		input   MilestoneInput
		dueDate *time.Time
	}
	pending := make([]pendingMilestone, 0, len(in.Milestones))
	for _, m := range in.Milestones {
		dueDate, err := parseDueDate(m.DueDate)
		if err != nil {
			return nil, err
		}
		if m.Weightage <= 0 || m.Weightage > 100 {
			return nil, E(KindValidation, "weightage must be greater than 0 and at most 100")
		}
		pending = append(pending, pendingMilestone{input: m, dueDate: dueDate})
	}

	project := models.Project{
		Title:       in.Title,
		Description: in.Description,
		Year:        in.Year,
		Tags:        in.Tags,
		Status:      models.ProjectOpen,
		ProfessorID: professorID,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		for _, m := range pending {
			milestone := models.Milestone{
				ProjectID:   project.ID,
				Title:       m.input.Title,
				Description: m.input.Description,
				DueDate:     m.dueDate,
				Weightage:   m.input.Weightage,
			}
			if err := tx.Create(&milestone).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Log.WithFields(logrus.Fields{
		"project_id":   project.ID,
		"professor_id": professorID,
		"milestones":   len(pending),
	}).Info("project created")
	return &project, nil
}

type UpdateProjectInput struct {
	Title       *string   `json:"title" validate:"omitempty,max=200"`
	Description *string   `json:"description"`
	Year        *string   `json:"year"`
	Tags        *[]string `json:"tags"`
}

// UpdateProject applies a partial update to a project owned by professorID.
func (s *ProjectService) UpdateProject(projectID, professorID uint, in UpdateProjectInput) (*models.Project, error) {
	project, err := s.ownedProject(projectID, professorID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Title != nil {
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Year != nil {
		updates["year"] = *in.Year
	}
	if in.Tags != nil {
		project.Tags = *in.Tags
		// Struct update so the json serializer runs; a raw column update
		// would store the slice unserialized and poison later reads.
		if err := s.DB.Model(project).Select("tags").
			Updates(models.Project{Tags: project.Tags}).Error; err != nil {
			return nil, err
		}
	}
	if len(updates) > 0 {
		if err := s.DB.Model(project).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return project, nil
}

// UpdateProjectStatus transitions a project between Open, In Progress,
// Completed and Cancelled.
func (s *ProjectService) UpdateProjectStatus(projectID uint, status string, professorID uint) (*models.Project, error) {
	switch status {
	case models.ProjectOpen, models.ProjectInProgress, models.ProjectCompleted, models.ProjectCancelled:
	default:
		return nil, E(KindValidation, "invalid project status %q", status)
	}

	project, err := s.ownedProject(projectID, professorID)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(project).Update("status", status).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject removes a project and everything it owns in one transaction.
// Deletion order is explicit so partial-failure behavior stays auditable:
// submission documents, submissions, milestones, resources, applications,
// members of assigned teams, the teams themselves, then the project row.
func (s *ProjectService) DeleteProject(projectID, professorID uint) error {
	if _, err := s.ownedProject(projectID, professorID); err != nil {
		return err
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		var milestoneIDs []uint
		if err := tx.Model(&models.Milestone{}).Where("project_id = ?", projectID).
			Pluck("id", &milestoneIDs).Error; err != nil {
			return err
		}

		if len(milestoneIDs) > 0 {
			var submissionIDs []uint
			if err := tx.Model(&models.MilestoneSubmission{}).Where("milestone_id IN ?", milestoneIDs).
				Pluck("id", &submissionIDs).Error; err != nil {
				return err
			}
			if len(submissionIDs) > 0 {
				if err := tx.Unscoped().Where("submission_id IN ?", submissionIDs).
					Delete(&models.SubmissionDocument{}).Error; err != nil {
					return err
				}
				if err := tx.Unscoped().Where("id IN ?", submissionIDs).
					Delete(&models.MilestoneSubmission{}).Error; err != nil {
					return err
				}
			}
			if err := tx.Unscoped().Where("id IN ?", milestoneIDs).
				Delete(&models.Milestone{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Unscoped().Where("project_id = ?", projectID).
			Delete(&models.ProjectResource{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("project_id = ?", projectID).
			Delete(&models.TeamApplication{}).Error; err != nil {
			return err
		}

		var teamIDs []uint
		if err := tx.Model(&models.ProjectTeam{}).Where("project_id = ?", projectID).
			Pluck("id", &teamIDs).Error; err != nil {
			return err
		}
		if len(teamIDs) > 0 {
			if err := tx.Unscoped().Where("team_id IN ?", teamIDs).
				Delete(&models.TeamMember{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("team_id IN ?", teamIDs).
				Delete(&models.StudentTeamApplication{}).Error; err != nil {
				return err
			}
			if err := tx.Unscoped().Where("id IN ?", teamIDs).
				Delete(&models.ProjectTeam{}).Error; err != nil {
				return err
			}
		}

		return tx.Unscoped().Delete(&models.Project{}, projectID).Error
	})
}

// AddResource stores an uploaded file and attaches it to the project.
func (s *ProjectService) AddResource(projectID, professorID uint, filename string, data []byte) (*models.ProjectResource, error) {
	if _, err := s.ownedProject(projectID, professorID); err != nil {
		return nil, err
	}

	dir := fmt.Sprintf("projects/%d/resources", projectID)
	handle, err := s.Storage.Store(data, dir, filename)
	if err != nil {
		return nil, err
	}

	resource := models.ProjectResource{
		ProjectID: projectID,
		Filename:  filename,
		FilePath:  handle,
	}
	if err := s.DB.Create(&resource).Error; err != nil {
		if rmErr := s.Storage.Remove(handle); rmErr != nil {
			s.Log.WithError(rmErr).WithField("handle", handle).Warn("failed to discard orphaned resource file")
		}
		return nil, err
	}
	return &resource, nil
}

// GetResource returns a resource's filename and bytes for download.
func (s *ProjectService) GetResource(projectID, resourceID uint) (string, []byte, error) {
	var resource models.ProjectResource
	err := s.DB.Where("id = ? AND project_id = ?", resourceID, projectID).First(&resource).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, E(KindNotFound, "resource not found")
		}
		return "", nil, err
	}

	data, err := s.Storage.Fetch(resource.FilePath)
	if err != nil {
		return "", nil, E(KindNotFound, "resource file not found")
	}
	return resource.Filename, data, nil
}

// ListProfessorProjects returns the projects a professor has published.
func (s *ProjectService) ListProfessorProjects(professorID uint) ([]models.Project, error) {
	var projects []models.Project
	err := s.DB.Preload("Milestones").Where("professor_id = ?", professorID).Find(&projects).Error
	return projects, err
}

func (s *ProjectService) ownedProject(projectID, professorID uint) (*models.Project, error) {
	var project models.Project
	if err := s.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, E(KindNotFound, "project not found")
		}
		return nil, err
	}
	if project.ProfessorID != professorID {
		return nil, E(KindNotOwner, "not authorized to modify this project")
	}
	return &project, nil
}

// Aggregation view shapes. Field names follow the reporting payload the
// frontend consumes.

type ProjectDetail struct {
	ID           uint            `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Status       string          `json:"status"`
	Progress     int             `json:"progress"`
	DueDate      *string         `json:"dueDate"`
	Students     int             `json:"students"`
	Tags         []string        `json:"tags"`
	AcademicYear string          `json:"academicYear"`
	Documents    []string        `json:"documents"`
	Milestones   []MilestoneView `json:"milestones"`
	Teams        []TeamView      `json:"teams"`
}

type MilestoneView struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	Weightage   float64    `json:"weightage"`
}

type TeamView struct {
	ID                  uint                 `json:"id"`
	Name                string               `json:"name"`
	Members             []MemberView         `json:"members"`
	Status              string               `json:"status"`
	SubmittedMilestones []SubmittedMilestone `json:"submittedMilestones"`
}

type MemberView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Year  string `json:"year"`
}

type SubmittedMilestone struct {
	MilestoneID    uint       `json:"milestoneId"`
	Submitted      bool       `json:"submitted"`
	SubmissionDate *time.Time `json:"submissionDate"`
	Files          []string   `json:"files"`
	Feedback       string     `json:"feedback"`
	Grade          *float64   `json:"grade"`
}

// GetProjectDetail composes the full reporting shape for one project. It is
// a pure read: missing user links render as "Unknown" and partial data never
// fails the view.
func (s *ProjectService) GetProjectDetail(projectID uint) (*ProjectDetail, error) {
	var project models.Project
	if err := s.DB.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, E(KindNotFound, "project not found")
		}
		return nil, err
	}

	var milestones []models.Milestone
	if err := s.DB.Where("project_id = ?", projectID).Order("due_date").Find(&milestones).Error; err != nil {
		return nil, err
	}

	// The approved team, if any, scopes progress and the student count.
	var approvedTeam *models.ProjectTeam
	{
		var team models.ProjectTeam
		err := s.DB.Where("project_id = ? AND status = ?", projectID, models.StatusApproved).First(&team).Error
		if err == nil {
			approvedTeam = &team
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	progress := 0
	students := 0
	teams := []TeamView{}
	if approvedTeam != nil {
		members, err := s.memberViews(approvedTeam.ID)
		if err != nil {
			return nil, err
		}
		students = len(members)

		submitted := make([]SubmittedMilestone, 0, len(milestones))
		completed := 0
		for _, milestone := range milestones {
			entry := SubmittedMilestone{MilestoneID: milestone.ID, Files: []string{}, Feedback: ""}
			var submission models.MilestoneSubmission
			err := s.DB.Where("milestone_id = ? AND team_id = ?", milestone.ID, approvedTeam.ID).
				First(&submission).Error
			if err == nil {
				completed++
				entry.Submitted = true
				submittedAt := submission.SubmittedAt
				entry.SubmissionDate = &submittedAt
				entry.Grade = submission.Grade
				if submission.Feedback != nil {
					entry.Feedback = *submission.Feedback
				}
				var documents []models.SubmissionDocument
				if err := s.DB.Where("submission_id = ?", submission.ID).Find(&documents).Error; err == nil {
					for _, doc := range documents {
						entry.Files = append(entry.Files, doc.Filename)
					}
				}
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			submitted = append(submitted, entry)
		}
		if len(milestones) > 0 {
			progress = completed * 100 / len(milestones)
		}

		teams = append(teams, TeamView{
			ID:                  approvedTeam.ID,
			Name:                approvedTeam.Name,
			Members:             members,
			Status:              approvedTeam.Status,
			SubmittedMilestones: submitted,
		})
	}

	// Applicant teams show up with empty submission lists.
	var applications []models.TeamApplication
	if err := s.DB.Where("project_id = ?", projectID).Find(&applications).Error; err != nil {
		return nil, err
	}
	for _, application := range applications {
		if approvedTeam != nil && application.TeamID == approvedTeam.ID {
			continue
		}
		var team models.ProjectTeam
		if err := s.DB.First(&team, application.TeamID).Error; err != nil {
			continue
		}
		members, err := s.memberViews(team.ID)
		if err != nil {
			return nil, err
		}
		teams = append(teams, TeamView{
			ID:                  team.ID,
			Name:                team.Name,
			Members:             members,
			Status:              application.Status,
			SubmittedMilestones: []SubmittedMilestone{},
		})
	}

	var dueDate *string
	milestoneViews := make([]MilestoneView, 0, len(milestones))
	var latest *time.Time
	for _, milestone := range milestones {
		milestoneViews = append(milestoneViews, MilestoneView{
			ID:          milestone.ID,
			Title:       milestone.Title,
			Description: milestone.Description,
			DueDate:     milestone.DueDate,
			Weightage:   milestone.Weightage,
		})
		if milestone.DueDate != nil && (latest == nil || milestone.DueDate.After(*latest)) {
			latest = milestone.DueDate
		}
	}
	if latest != nil {
		formatted := latest.Format("2006-01-02")
		dueDate = &formatted
	}

	var resources []models.ProjectResource
	if err := s.DB.Where("project_id = ?", projectID).Find(&resources).Error; err != nil {
		return nil, err
	}
	documents := make([]string, 0, len(resources))
	for _, resource := range resources {
		documents = append(documents, resource.Filename)
	}

	tags := project.Tags
	if tags == nil {
		tags = []string{}
	}
	return &ProjectDetail{
		ID:           project.ID,
		Title:        project.Title,
		Description:  project.Description,
		Status:       project.Status,
		Progress:     progress,
		DueDate:      dueDate,
		Students:     students,
		Tags:         tags,
		AcademicYear: project.Year,
		Documents:    documents,
		Milestones:   milestoneViews,
		Teams:        teams,
	}, nil
}

func (s *ProjectService) memberViews(teamID uint) ([]MemberView, error) {
	var memberships []models.TeamMember
	if err := s.DB.Where("team_id = ?", teamID).Find(&memberships).Error; err != nil {
		return nil, err
	}

	views := make([]MemberView, 0, len(memberships))
	for _, membership := range memberships {
		view := MemberView{ID: membership.StudentID, Name: "Unknown", Email: "Unknown", Year: "Unknown"}
		var student models.Student
		if err := s.DB.First(&student, membership.StudentID).Error; err == nil {
			if student.Year != "" {
				view.Year = student.Year
			}
			var user models.User
			if err := s.DB.First(&user, student.UserID).Error; err == nil {
				view.Name = user.FullName
				view.Email = user.Email
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// AvailableProject is the student-facing catalog entry for an open project.
type AvailableProject struct {
	ID             uint     `json:"id"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary"`
	Professor      string   `json:"professor"`
	Department     string   `json:"department"`
	Year           string   `json:"year"`
	Tags           []string `json:"tags"`
	Deadline       *string  `json:"deadline"`
	HasApplied     bool     `json:"hasApplied"`
	DeadlinePassed bool     `json:"deadlinePassed"`
	Status         string   `json:"status"`
}

// ListAvailableProjects returns Open and In Progress projects annotated with
// the student's application state and whether the final deadline has passed.
func (s *ProjectService) ListAvailableProjects(studentID uint) ([]AvailableProject, error) {
	var projects []models.Project
	err := s.DB.Where("status IN ?", []string{models.ProjectOpen, models.ProjectInProgress}).Find(&projects).Error
	if err != nil {
		return nil, err
	}

	teams, err := teamsOfStudent(s.DB, studentID)
	if err != nil {
		return nil, err
	}
	teamIDs := make([]uint, 0, len(teams))
	for _, team := range teams {
		teamIDs = append(teamIDs, team.ID)
	}

	result := make([]AvailableProject, 0, len(projects))
	for _, project := range projects {
		hasApplied := false
		if len(teamIDs) > 0 {
			var count int64
			if err := s.DB.Model(&models.TeamApplication{}).
				Where("project_id = ? AND team_id IN ?", project.ID, teamIDs).
				Count(&count).Error; err != nil {
				return nil, err
			}
			hasApplied = count > 0
		}

		var latest *time.Time
		var milestones []models.Milestone
		if err := s.DB.Where("project_id = ?", project.ID).Find(&milestones).Error; err != nil {
			return nil, err
		}
		for _, milestone := range milestones {
			if milestone.DueDate != nil && (latest == nil || milestone.DueDate.After(*latest)) {
				latest = milestone.DueDate
			}
		}
		var deadline *string
		deadlinePassed := false
		if latest != nil {
			formatted := latest.Format("2006-01-02")
			deadline = &formatted
			deadlinePassed = dateOnly(time.Now()).After(dateOnly(*latest))
		}

		professorName := "Unknown"
		department := "Unknown"
		var professor models.Professor
		if err := s.DB.First(&professor, project.ProfessorID).Error; err == nil {
			if professor.Department != "" {
				department = professor.Department
			}
			var user models.User
			if err := s.DB.First(&user, professor.UserID).Error; err == nil {
				professorName = user.FullName
			}
		}

		tags := project.Tags
		if tags == nil {
			tags = []string{}
		}
		result = append(result, AvailableProject{
			ID:             project.ID,
			Title:          project.Title,
			Summary:        project.Description,
			Professor:      professorName,
			Department:     department,
			Year:           project.Year,
			Tags:           tags,
			Deadline:       deadline,
			HasApplied:     hasApplied,
			DeadlinePassed: deadlinePassed,
			Status:         project.Status,
		})
	}
	return result, nil
}

// ActiveProject is the student dashboard shape for a project in progress.
type ActiveProject struct {
	ID               uint               `json:"id"`
	Title            string             `json:"title"`
	Professor        string             `json:"professor"`
	Status           string             `json:"status"`
	TeamID           uint               `json:"team_id"`
	TeamName         string             `json:"team_name"`
	TeamMembers      []ActiveMember     `json:"teamMembers"`
	CurrentMilestone string             `json:"currentMilestone"`
	Progress         int                `json:"progress"`
	Milestones       []StudentMilestone `json:"milestones"`
	IsCompleted      bool               `json:"isCompleted"`
}

type ActiveMember struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Initials string `json:"initials"`
	IsLeader bool   `json:"isLeader"`
}

// ListActiveProjects returns the projects the student's teams are assigned
// to, with per-milestone submission state and truncated-percentage progress.
func (s *ProjectService) ListActiveProjects(studentID uint) ([]ActiveProject, error) {
	teams, err := teamsOfStudent(s.DB, studentID)
	if err != nil {
		return nil, err
	}

	result := []ActiveProject{}
	for _, team := range teams {
		if team.ProjectID == nil {
			continue
		}
		var project models.Project
		if err := s.DB.First(&project, *team.ProjectID).Error; err != nil {
			continue
		}

		professorName := "Unknown"
		var professor models.Professor
		if err := s.DB.First(&professor, project.ProfessorID).Error; err == nil {
			var user models.User
			if err := s.DB.First(&user, professor.UserID).Error; err == nil {
				professorName = user.FullName
			}
		}

		var memberships []models.TeamMember
		if err := s.DB.Where("team_id = ?", team.ID).Find(&memberships).Error; err != nil {
			return nil, err
		}
		members := make([]ActiveMember, 0, len(memberships))
		for _, membership := range memberships {
			member := ActiveMember{
				ID:       membership.StudentID,
				Name:     "Unknown",
				Email:    "Unknown",
				IsLeader: membership.StudentID == team.LeaderID,
			}
			var student models.Student
			if err := s.DB.First(&student, membership.StudentID).Error; err == nil {
				var user models.User
				if err := s.DB.First(&user, student.UserID).Error; err == nil {
					member.Name = user.FullName
					member.Email = user.Email
					member.Initials = initials(user.FullName)
				}
			}
			members = append(members, member)
		}

		var milestones []models.Milestone
		if err := s.DB.Where("project_id = ?", project.ID).Order("due_date").Find(&milestones).Error; err != nil {
			return nil, err
		}
		milestoneRows := make([]StudentMilestone, 0, len(milestones))
		completed := 0
		currentMilestone := "Not started"
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
				completed++
				row.Submitted = true
				row.Grade = submission.Grade
				row.Feedback = submission.Feedback
				submittedAt := submission.SubmittedAt
				row.SubmissionDate = &submittedAt
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			} else if currentMilestone == "Not started" {
				currentMilestone = milestone.Title
			}
			milestoneRows = append(milestoneRows, row)
		}
		progress := 0
		if len(milestones) > 0 {
			progress = completed * 100 / len(milestones)
		}

		result = append(result, ActiveProject{
			ID:               project.ID,
			Title:            project.Title,
			Professor:        professorName,
			Status:           project.Status,
			TeamID:           team.ID,
			TeamName:         team.Name,
			TeamMembers:      members,
			CurrentMilestone: currentMilestone,
			Progress:         progress,
			Milestones:       milestoneRows,
			IsCompleted:      project.Status == models.ProjectCompleted,
		})
	}
	return result, nil
}

// StudentProfile is the collaborator-finder shape of a student.
type StudentProfile struct {
	ID           uint     `json:"id"`
	Name         string   `json:"name"`
	Year         string   `json:"year"`
	Department   string   `json:"department"`
	Skills       []string `json:"skills"`
	Interests    []string `json:"interests"`
	Availability string   `json:"availability"`
	Initials     string   `json:"initials"`
	Teams        []uint   `json:"teams"`
}

// ListStudents returns all students with their collaborator-finder fields.
func (s *ProjectService) ListStudents() ([]StudentProfile, error) {
	var students []models.Student
	if err := s.DB.Find(&students).Error; err != nil {
		return nil, err
	}

	result := make([]StudentProfile, 0, len(students))
	for _, student := range students {
		var user models.User
		if err := s.DB.First(&user, student.UserID).Error; err != nil {
			continue
		}

		var teamIDs []uint
		if err := s.DB.Model(&models.TeamMember{}).Where("student_id = ?", student.ID).
			Pluck("team_id", &teamIDs).Error; err != nil {
			return nil, err
		}

		profile := StudentProfile{
			ID:           student.ID,
			Name:         user.FullName,
			Year:         orUnknown(student.Year),
			Department:   orUnknown(student.Department),
			Skills:       student.Skills,
			Interests:    student.Interests,
			Availability: orUnknown(student.Availability),
			Initials:     initials(user.FullName),
			Teams:        teamIDs,
		}
		if profile.Skills == nil {
			profile.Skills = []string{}
		}
		if profile.Interests == nil {
			profile.Interests = []string{}
		}
		result = append(result, profile)
	}
	return result, nil
}

type UpdateStudentProfileInput struct {
	Skills       *[]string `json:"skills"`
	Interests    *[]string `json:"interests"`
	Availability *string   `json:"availability"`
}

// UpdateStudentProfile sets collaborator-finder fields on a student.
func (s *ProjectService) UpdateStudentProfile(studentID uint, in UpdateStudentProfileInput) (*models.Student, error) {
	var student models.Student
	if err := s.DB.First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, E(KindNotFound, "student not found")
		}
		return nil, err
	}

	if in.Skills != nil {
		student.Skills = *in.Skills
	}
	if in.Interests != nil {
		student.Interests = *in.Interests
	}
	if in.Availability != nil {
		student.Availability = *in.Availability
	}
	if err := s.DB.Save(&student).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func initials(fullName string) string {
	parts := strings.Fields(fullName)
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(strings.ToUpper(part[:1]))
		if b.Len() >= 2 {
			break
		}
	}
	return b.String()
}

func orUnknown(value string) string {
	if value == "" {
		return "Unknown"
	}
	return value
}
