package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/models"
	"projecthub/utils"
)

func newMilestoneService(t *testing.T) (*MilestoneService, *utils.Storage) {
	t.Helper()
	storage := utils.NewStorage(t.TempDir())
	return NewMilestoneService(newTestDB(t), storage, newTestLogger()), storage
}

func TestAddMilestone(t *testing.T) {
	svc, _ := newMilestoneService(t)
	db := svc.DB

	professor := createProfessor(t, db, "prof")
	project := createProject(t, db, professor.ID)

	t.Run("creates the milestone", func(t *testing.T) {
		milestone, err := svc.AddMilestone(project.ID, professor.ID, MilestoneInput{
			Title:     "Design document",
			DueDate:   "2030-06-01",
			Weightage: 20,
		})
		require.NoError(t, err)
		assert.Equal(t, project.ID, milestone.ProjectID)
		require.NotNil(t, milestone.DueDate)
		assert.Equal(t, "2030-06-01", milestone.DueDate.Format("2006-01-02"))
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		_, err := svc.AddMilestone(project.ID, professor.ID, MilestoneInput{
			Title: "Bad", DueDate: "01/06/2030", Weightage: 20,
		})
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("rejects out-of-range weightage", func(t *testing.T) {
		for _, weightage := range []float64{0, -5, 101} {
			_, err := svc.AddMilestone(project.ID, professor.ID, MilestoneInput{
				Title: "Bad", DueDate: "2030-06-01", Weightage: weightage,
			})
			assert.True(t, IsKind(err, KindValidation), "weightage %v", weightage)
		}
	})

	t.Run("only the owner adds milestones", func(t *testing.T) {
		stranger := createProfessor(t, db, "stranger")
		_, err := svc.AddMilestone(project.ID, stranger.ID, MilestoneInput{
			Title: "Nope", DueDate: "2030-06-01", Weightage: 20,
		})
		assert.True(t, IsKind(err, KindNotOwner))
	})
}

func TestSubmitMilestone(t *testing.T) {
	svc, storage := newMilestoneService(t)
	db := svc.DB

	professor := createProfessor(t, db, "prof")
	project := createProject(t, db, professor.ID)
	leader := createStudent(t, db, "leader")
	team := createTeam(t, db, "Alpha", leader.ID)
	assignTeam(t, db, team, project.ID)

	milestone := createMilestone(t, db, project.ID, daysFromNow(7))

	t.Run("member submits with files and links", func(t *testing.T) {
		submission, err := svc.SubmitMilestone(leader.ID, SubmitMilestoneInput{
			MilestoneID: milestone.ID,
			TeamID:      team.ID,
			Text:        "Here is our design.",
			Links:       []string{"https://example.com/repo"},
			Files: []FileUpload{
				{Filename: "design.pdf", Data: []byte("pdf bytes")},
			},
		})
		require.NoError(t, err)
		assert.Contains(t, submission.SubmissionText, "Here is our design.")
		assert.Contains(t, submission.SubmissionText, "https://example.com/repo")

		var documents []models.SubmissionDocument
		require.NoError(t, db.Where("submission_id = ?", submission.ID).Find(&documents).Error)
		require.Len(t, documents, 1)
		assert.Equal(t, "design.pdf", documents[0].Filename)

		data, err := storage.Fetch(documents[0].FilePath)
		require.NoError(t, err)
		assert.Equal(t, []byte("pdf bytes"), data)
	})

	t.Run("milestone accepts exactly one submission", func(t *testing.T) {
		_, err := svc.SubmitMilestone(leader.ID, SubmitMilestoneInput{
			MilestoneID: milestone.ID,
			TeamID:      team.ID,
			Text:        "Again",
		})
		assert.True(t, IsKind(err, KindAlreadySubmitted))
	})

	t.Run("non-member cannot submit", func(t *testing.T) {
		fresh := createMilestone(t, db, project.ID, daysFromNow(7))
		outsider := createStudent(t, db, "outsider")
		_, err := svc.SubmitMilestone(outsider.ID, SubmitMilestoneInput{
			MilestoneID: fresh.ID,
			TeamID:      team.ID,
		})
		assert.True(t, IsKind(err, KindNotTeamMember))
	})

	t.Run("team must be assigned to the milestone's project", func(t *testing.T) {
		fresh := createMilestone(t, db, project.ID, daysFromNow(7))
		floatingLeader := createStudent(t, db, "floater")
		floating := createTeam(t, db, "Floating", floatingLeader.ID)

		_, err := svc.SubmitMilestone(floatingLeader.ID, SubmitMilestoneInput{
			MilestoneID: fresh.ID,
			TeamID:      floating.ID,
		})
		assert.True(t, IsKind(err, KindTeamMismatch))
	})

	t.Run("past deadline is refused", func(t *testing.T) {
		overdue := createMilestone(t, db, project.ID, daysFromNow(-1))
		_, err := svc.SubmitMilestone(leader.ID, SubmitMilestoneInput{
			MilestoneID: overdue.ID,
			TeamID:      team.ID,
		})
		assert.True(t, IsKind(err, KindDeadlinePassed))
	})

	t.Run("due today still succeeds", func(t *testing.T) {
		today := createMilestone(t, db, project.ID, daysFromNow(0))
		_, err := svc.SubmitMilestone(leader.ID, SubmitMilestoneInput{
			MilestoneID: today.ID,
			TeamID:      team.ID,
			Text:        "just in time",
		})
		assert.NoError(t, err)
	})
}

func TestGradeSubmission(t *testing.T) {
	svc, _ := newMilestoneService(t)
	db := svc.DB

	professor := createProfessor(t, db, "prof")
	project := createProject(t, db, professor.ID)
	leader := createStudent(t, db, "leader")
	team := createTeam(t, db, "Alpha", leader.ID)
	assignTeam(t, db, team, project.ID)
	milestone := createMilestone(t, db, project.ID, daysFromNow(7))

	submission, err := svc.SubmitMilestone(leader.ID, SubmitMilestoneInput{
		MilestoneID: milestone.ID,
		TeamID:      team.ID,
		Text:        "work",
	})
	require.NoError(t, err)

	t.Run("rejects out-of-range grades", func(t *testing.T) {
		for _, grade := range []float64{-1, 150} {
			_, err := svc.GradeSubmission(submission.ID, grade, "", professor.ID)
			assert.True(t, IsKind(err, KindInvalidGrade), "grade %v", grade)
		}
	})

	t.Run("only the owner grades", func(t *testing.T) {
		stranger := createProfessor(t, db, "stranger")
		_, err := svc.GradeSubmission(submission.ID, 80, "", stranger.ID)
		assert.True(t, IsKind(err, KindNotOwner))
	})

	t.Run("grading and regrading overwrite", func(t *testing.T) {
		graded, err := svc.GradeSubmission(submission.ID, 70, "solid", professor.ID)
		require.NoError(t, err)
		require.NotNil(t, graded.Grade)
		assert.Equal(t, 70.0, *graded.Grade)

		regraded, err := svc.GradeSubmission(submission.ID, 85, "better than we thought", professor.ID)
		require.NoError(t, err)
		require.NotNil(t, regraded.Grade)
		assert.Equal(t, 85.0, *regraded.Grade)
		require.NotNil(t, regraded.Feedback)
		assert.Equal(t, "better than we thought", *regraded.Feedback)
	})
}

func TestGradeMilestone(t *testing.T) {
	svc, _ := newMilestoneService(t)
	db := svc.DB

	professor := createProfessor(t, db, "prof")
	project := createProject(t, db, professor.ID)
	leader := createStudent(t, db, "leader")
	team := createTeam(t, db, "Alpha", leader.ID)
	assignTeam(t, db, team, project.ID)
	milestone := createMilestone(t, db, project.ID, daysFromNow(7))

	t.Run("grading without a submission creates the record", func(t *testing.T) {
		submission, err := svc.GradeMilestone(milestone.ID, team.ID, 60, "graded from demo", professor.ID)
		require.NoError(t, err)
		require.NotNil(t, submission.Grade)
		assert.Equal(t, 60.0, *submission.Grade)
		assert.Equal(t, team.ID, submission.TeamID)

		// The fabricated record occupies the milestone's single slot.
		_, err = svc.SubmitMilestone(leader.ID, SubmitMilestoneInput{
			MilestoneID: milestone.ID,
			TeamID:      team.ID,
		})
		assert.True(t, IsKind(err, KindAlreadySubmitted))
	})

	t.Run("unassigned team is refused", func(t *testing.T) {
		floating := createTeam(t, db, "Floating", createStudent(t, db, "floater").ID)
		fresh := createMilestone(t, db, project.ID, daysFromNow(7))
		_, err := svc.GradeMilestone(fresh.ID, floating.ID, 60, "", professor.ID)
		assert.True(t, IsKind(err, KindTeamMismatch))
	})
}

func TestListStudentMilestones(t *testing.T) {
	svc, _ := newMilestoneService(t)
	db := svc.DB

	professor := createProfessor(t, db, "prof")
	project := createProject(t, db, professor.ID)
	leader := createStudent(t, db, "leader")
	team := createTeam(t, db, "Alpha", leader.ID)
	assignTeam(t, db, team, project.ID)

	submitted := createMilestone(t, db, project.ID, daysFromNow(7))
	createMilestone(t, db, project.ID, daysFromNow(14))

	_, err := svc.SubmitMilestone(leader.ID, SubmitMilestoneInput{
		MilestoneID: submitted.ID,
		TeamID:      team.ID,
		Text:        "done",
	})
	require.NoError(t, err)

	rows, err := svc.ListStudentMilestones(leader.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[uint]StudentMilestone{}
	for _, row := range rows {
		byID[row.ID] = row
	}
	assert.True(t, byID[submitted.ID].Submitted)
	assert.NotNil(t, byID[submitted.ID].SubmissionDate)
}

func TestListProfessorSubmissions(t *testing.T) {
	svc, _ := newMilestoneService(t)
	db := svc.DB

	professor := createProfessor(t, db, "prof")
	project := createProject(t, db, professor.ID)
	leader := createStudent(t, db, "leader")
	team := createTeam(t, db, "Alpha", leader.ID)
	assignTeam(t, db, team, project.ID)
	milestone := createMilestone(t, db, project.ID, daysFromNow(7))

	submission, err := svc.SubmitMilestone(leader.ID, SubmitMilestoneInput{
		MilestoneID: milestone.ID,
		TeamID:      team.ID,
		Text:        "work",
		Files:       []FileUpload{{Filename: "report.pdf", Data: []byte("x")}},
	})
	require.NoError(t, err)

	views, err := svc.ListProfessorSubmissions(professor.ID, nil)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, submission.ID, views[0].SubmissionID)
	assert.Equal(t, "Alpha", views[0].TeamName)
	assert.False(t, views[0].IsGraded)
	require.Len(t, views[0].Documents, 1)
	assert.Equal(t, "report.pdf", views[0].Documents[0].Filename)

	t.Run("project filter", func(t *testing.T) {
		other := createProject(t, db, professor.ID)
		views, err := svc.ListProfessorSubmissions(professor.ID, &other.ID)
		require.NoError(t, err)
		assert.Empty(t, views)
	})

	t.Run("other professors see nothing", func(t *testing.T) {
		stranger := createProfessor(t, db, "stranger")
		views, err := svc.ListProfessorSubmissions(stranger.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, views)
	})
}
