package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projecthub/models"
)

func TestCreateTeam(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db, newTestLogger())

	leader := createStudent(t, db, "leader")
	mate := createStudent(t, db, "mate")

	t.Run("leader is an implicit member", func(t *testing.T) {
		team, err := svc.CreateTeam(leader.ID, CreateTeamInput{
			Name:      "Alpha",
			MemberIDs: []uint{mate.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, leader.ID, team.LeaderID)
		assert.Equal(t, models.StatusPending, team.Status)

		var count int64
		require.NoError(t, db.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&count).Error)
		assert.EqualValues(t, 2, count)
	})

	t.Run("duplicate member ids rejected", func(t *testing.T) {
		_, err := svc.CreateTeam(leader.ID, CreateTeamInput{
			Name:      "Beta",
			MemberIDs: []uint{mate.ID, mate.ID},
		})
		assert.True(t, IsKind(err, KindDuplicateMember))
	})

	t.Run("more than four members rejected", func(t *testing.T) {
		ids := make([]uint, 0, 4)
		for i := 0; i < 4; i++ {
			ids = append(ids, createStudent(t, db, fmt.Sprintf("extra%d", i)).ID)
		}
		_, err := svc.CreateTeam(leader.ID, CreateTeamInput{Name: "Gamma", MemberIDs: ids})
		assert.True(t, IsKind(err, KindCapacityExceeded))
	})
}

func TestAddMember(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db, newTestLogger())

	leader := createStudent(t, db, "leader")
	team := createTeam(t, db, "Alpha", leader.ID)

	t.Run("leader adds up to capacity", func(t *testing.T) {
		for i := 0; i < models.MaxTeamSize-1; i++ {
			student := createStudent(t, db, fmt.Sprintf("member%d", i))
			require.NoError(t, svc.AddMember(team.ID, student.ID, leader.ID))
		}
	})

	t.Run("rejects beyond capacity", func(t *testing.T) {
		student := createStudent(t, db, "overflow")
		err := svc.AddMember(team.ID, student.ID, leader.ID)
		assert.True(t, IsKind(err, KindTeamFull))
	})

	t.Run("only the leader adds members", func(t *testing.T) {
		open := createTeam(t, db, "Open", createStudent(t, db, "open-lead").ID)
		student := createStudent(t, db, "hopeful-member")
		err := svc.AddMember(open.ID, student.ID, student.ID)
		assert.True(t, IsKind(err, KindNotLeader))
	})

	t.Run("rejects existing member", func(t *testing.T) {
		err := svc.AddMember(team.ID, leader.ID, leader.ID)
		assert.True(t, IsKind(err, KindAlreadyMember))
	})

	t.Run("rejects locked team", func(t *testing.T) {
		locked := createTeam(t, db, "Locked", leader.ID)
		require.NoError(t, db.Model(locked).Update("is_locked", true).Error)

		student := createStudent(t, db, "latecomer")
		err := svc.AddMember(locked.ID, student.ID, leader.ID)
		assert.True(t, IsKind(err, KindTeamLocked))
	})

	t.Run("missing team", func(t *testing.T) {
		err := svc.AddMember(99999, leader.ID, leader.ID)
		assert.True(t, IsKind(err, KindNotFound))
	})
}

func TestApplyToTeam(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db, newTestLogger())

	leader := createStudent(t, db, "leader")
	team := createTeam(t, db, "Alpha", leader.ID)
	applicant := createStudent(t, db, "applicant")

	t.Run("files a pending request", func(t *testing.T) {
		application, err := svc.ApplyToTeam(applicant.ID, team.ID, "let me in")
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, application.Status)
	})

	t.Run("pending request may not be duplicated", func(t *testing.T) {
		_, err := svc.ApplyToTeam(applicant.ID, team.ID, "again")
		assert.True(t, IsKind(err, KindDuplicateApplication))
	})

	t.Run("member may not apply", func(t *testing.T) {
		_, err := svc.ApplyToTeam(leader.ID, team.ID, "")
		assert.True(t, IsKind(err, KindAlreadyMember))
	})

	t.Run("rejected request may be re-filed", func(t *testing.T) {
		other := createStudent(t, db, "persistent")
		application, err := svc.ApplyToTeam(other.ID, team.ID, "first try")
		require.NoError(t, err)
		require.NoError(t, svc.RejectJoinRequest(application.ID, leader.ID))

		_, err = svc.ApplyToTeam(other.ID, team.ID, "second try")
		assert.NoError(t, err)
	})

	t.Run("full team rejects new requests", func(t *testing.T) {
		members := []uint{createStudent(t, db, "f1").ID, createStudent(t, db, "f2").ID,
			createStudent(t, db, "f3").ID, createStudent(t, db, "f4").ID}
		full := createTeam(t, db, "Full", members...)

		_, err := svc.ApplyToTeam(applicant.ID, full.ID, "")
		assert.True(t, IsKind(err, KindTeamFull))
	})
}

func TestApproveJoinRequest(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db, newTestLogger())

	leader := createStudent(t, db, "leader")
	team := createTeam(t, db, "Alpha", leader.ID)
	applicant := createStudent(t, db, "applicant")

	application, err := svc.ApplyToTeam(applicant.ID, team.ID, "")
	require.NoError(t, err)

	t.Run("only the leader decides", func(t *testing.T) {
		err := svc.ApproveJoinRequest(application.ID, applicant.ID)
		assert.True(t, IsKind(err, KindNotLeader))
	})

	t.Run("approval adds the member", func(t *testing.T) {
		require.NoError(t, svc.ApproveJoinRequest(application.ID, leader.ID))

		var membership models.TeamMember
		assert.NoError(t, db.Where("team_id = ? AND student_id = ?", team.ID, applicant.ID).
			First(&membership).Error)
	})

	t.Run("decided request cannot be re-decided", func(t *testing.T) {
		err := svc.ApproveJoinRequest(application.ID, leader.ID)
		assert.True(t, IsKind(err, KindInvalidTransition))
	})

	t.Run("request racing the last slot is rejected", func(t *testing.T) {
		// File the request while a slot is open, then fill the team before
		// the leader decides.
		late := createStudent(t, db, "late")
		lateApplication, err := svc.ApplyToTeam(late.ID, team.ID, "")
		require.NoError(t, err)

		filler := createStudent(t, db, "filler")
		require.NoError(t, svc.AddMember(team.ID, filler.ID, leader.ID))
		require.NoError(t, svc.AddMember(team.ID, createStudent(t, db, "filler2").ID, leader.ID))

		err = svc.ApproveJoinRequest(lateApplication.ID, leader.ID)
		assert.True(t, IsKind(err, KindTeamFull))

		var reloaded models.StudentTeamApplication
		require.NoError(t, db.First(&reloaded, lateApplication.ID).Error)
		assert.Equal(t, models.StatusRejected, reloaded.Status)

		var count int64
		require.NoError(t, db.Model(&models.TeamMember{}).Where("team_id = ?", team.ID).Count(&count).Error)
		assert.EqualValues(t, models.MaxTeamSize, count)
	})
}

func TestListTeams(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db, newTestLogger())

	leader := createStudent(t, db, "leader")
	mate := createStudent(t, db, "mate")
	team := createTeam(t, db, "Alpha", leader.ID, mate.ID)

	professor := createProfessor(t, db, "prof")
	project := createProject(t, db, professor.ID)
	assignTeam(t, db, team, project.ID)

	summaries, err := svc.ListTeams()
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	summary := summaries[0]
	assert.Equal(t, "Alpha", summary.Name)
	assert.Equal(t, 2, summary.Members)
	assert.Equal(t, models.MaxTeamSize, summary.MaxMembers)
	assert.True(t, summary.IsOpen)
	assert.Equal(t, "leader Example", summary.LeaderName)
	assert.Equal(t, []string{project.Title}, summary.Projects)

	t.Run("student scope", func(t *testing.T) {
		outsider := createStudent(t, db, "outsider")
		mine, err := svc.ListStudentTeams(outsider.ID)
		require.NoError(t, err)
		assert.Empty(t, mine)

		mine, err = svc.ListStudentTeams(mate.ID)
		require.NoError(t, err)
		assert.Len(t, mine, 1)
	})
}

func TestListJoinRequests(t *testing.T) {
	db := newTestDB(t)
	svc := NewTeamService(db, newTestLogger())

	leader := createStudent(t, db, "leader")
	team := createTeam(t, db, "Alpha", leader.ID)
	applicant := createStudent(t, db, "applicant")

	_, err := svc.ApplyToTeam(applicant.ID, team.ID, "hello")
	require.NoError(t, err)

	t.Run("leader sees requests with student names", func(t *testing.T) {
		requests, err := svc.ListJoinRequests(team.ID, leader.ID)
		require.NoError(t, err)
		require.Len(t, requests, 1)
		assert.Equal(t, "applicant Example", requests[0].StudentName)
		assert.Equal(t, "hello", requests[0].Message)
	})

	t.Run("non-leader is refused", func(t *testing.T) {
		_, err := svc.ListJoinRequests(team.ID, applicant.ID)
		assert.True(t, IsKind(err, KindNotLeader))
	})

	t.Run("student sees own requests", func(t *testing.T) {
		requests, err := svc.ListStudentJoinRequests(applicant.ID)
		require.NoError(t, err)
		assert.Len(t, requests, 1)
	})
}
