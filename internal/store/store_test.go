package store

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neor/internal/db"
	"neor/internal/logger"
	"neor/internal/models"
	"neor/internal/pagination"
)

var at = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := db.Open("sqlite", dsn, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(gdb) })

	s, err := New(gdb)
	require.NoError(t, err)
	return s
}

func createUser(t *testing.T, s *Store, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hash",
		Role:     models.RoleMember,
		Session:  "session-" + username,
		JoinedAt: at,
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func createPost(t *testing.T, s *Store, owner *models.User, title string, tags ...string) *models.Post {
	t.Helper()
	p, err := s.CreatePost(context.Background(), owner.ID, PostFields{
		Title:       title,
		Description: "d",
		Content:     "c",
		ContentHTML: "<p>c</p>",
		Tags:        tags,
	}, at)
	require.NoError(t, err)
	return p
}

func TestCreateUserConflict(t *testing.T) {
	s := newTestStore(t)
	createUser(t, s, "ana")

	err := s.CreateUser(context.Background(), &models.User{
		Username: "ana", Email: "other@example.com", Password: "x", Role: models.RoleMember,
		Session: "other", JoinedAt: at,
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestUserLookups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createUser(t, s, "ana")

	got, err := s.UserBySession(ctx, "session-ana")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.UserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	taken, err := s.EmailTaken(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestVerifyEmailOnlyOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	code := "123456"
	u := &models.User{
		Username: "ana", Email: "ana@example.com", Password: "x",
		Role: models.RoleUnverified, Session: "s", Code: &code, JoinedAt: at,
	}
	require.NoError(t, s.CreateUser(ctx, u))

	rows, err := s.VerifyEmail(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	got, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, got.Role)
	assert.Nil(t, got.Code)

	rows, err = s.VerifyEmail(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestPostTagsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ana := createUser(t, s, "ana")

	p := createPost(t, s, ana, "hello", "b", "a")

	got, err := s.PostByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got.TagNames())
	require.NotNil(t, got.PostedBy)
	assert.Equal(t, "ana", got.PostedBy.Username)

	// A second post reuses the cached tag ids.
	createPost(t, s, ana, "again", "a")
	var n int64
	require.NoError(t, s.DB().Model(&models.Tag{}).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestUpdatePostChecksOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ana := createUser(t, s, "ana")
	bob := createUser(t, s, "bob")
	p := createPost(t, s, ana, "hello", "a")

	rows, err := s.UpdatePost(ctx, p.ID, bob.ID, PostFields{Title: "hijacked", Tags: []string{"x"}}, at)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	rows, err = s.UpdatePost(ctx, p.ID, ana.ID, PostFields{
		Title: "edited", Description: "d", Content: "c", ContentHTML: "c", Tags: []string{"c"},
	}, at.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	got, err := s.PostByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Title)
	assert.Equal(t, []string{"c"}, got.TagNames())
	require.NotNil(t, got.ModifiedAt)
}

func TestAnonymisePostKeepsContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ana := createUser(t, s, "ana")
	p := createPost(t, s, ana, "hello", "a")

	rows, err := s.AnonymisePost(ctx, p.ID, ana.ID, "wrong title")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	rows, err = s.AnonymisePost(ctx, p.ID, ana.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	got, err := s.PostByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.PostedByUserID)
	assert.Nil(t, got.PostedBy)
	assert.Equal(t, "hello", got.Title)
	assert.Equal(t, []string{"a"}, got.TagNames())
}

func TestDeletePostRemovesComments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ana := createUser(t, s, "ana")
	p := createPost(t, s, ana, "hello", "a")

	parent := &models.Comment{PostID: p.ID, Content: "c", ContentHTML: "c", PostedByUserID: &ana.ID, PostedAt: at}
	require.NoError(t, s.CreateComment(ctx, parent))
	reply := &models.Comment{PostID: p.ID, Content: "r", ContentHTML: "r", PostedByUserID: &ana.ID, ReplyToID: &parent.ID, PostedAt: at}
	require.NoError(t, s.CreateComment(ctx, reply))

	rows, err := s.DeletePost(ctx, p.ID, "not the title")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	rows, err = s.DeletePost(ctx, p.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	_, err = s.PostByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.CommentByID(ctx, reply.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCommentDetachesReplies(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ana := createUser(t, s, "ana")
	p := createPost(t, s, ana, "hello", "a")

	parent := &models.Comment{PostID: p.ID, Content: "c", ContentHTML: "c", PostedByUserID: &ana.ID, PostedAt: at}
	require.NoError(t, s.CreateComment(ctx, parent))
	reply := &models.Comment{PostID: p.ID, Content: "r", ContentHTML: "r", ReplyToID: &parent.ID, PostedAt: at}
	require.NoError(t, s.CreateComment(ctx, reply))

	// Owner mismatch: the comment is owned, not anonymous.
	rows, err := s.DeleteComment(ctx, parent.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	rows, err = s.DeleteComment(ctx, parent.ID, &ana.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	got, err := s.CommentByID(ctx, reply.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ReplyToID)
}

func TestListPostsByTagAndSearch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ana := createUser(t, s, "ana")

	p1 := createPost(t, s, ana, "go generics", "go")
	createPost(t, s, ana, "rust traits", "rust")
	p3 := createPost(t, s, ana, "go channels", "go", "concurrency")

	params := pagination.ParseParams("", "", "", pagination.Descending)

	byTag, err := s.ListPostsByTag(ctx, "go", params)
	require.NoError(t, err)
	require.Len(t, byTag.Items, 2)
	assert.Equal(t, p3.ID, byTag.Items[0].ID)
	assert.Equal(t, p1.ID, byTag.Items[1].ID)
	assert.Equal(t, p1.ID, *byTag.Bounds.Min)
	assert.Equal(t, p3.ID, *byTag.Bounds.Max)

	search, err := s.ListPosts(ctx, "channels", params)
	require.NoError(t, err)
	require.Len(t, search.Items, 1)
	assert.Equal(t, p3.ID, search.Items[0].ID)
	assert.Equal(t, []string{"concurrency", "go"}, search.Items[0].TagNames())
}

func TestListCommentsAscendingWithCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ana := createUser(t, s, "ana")
	p := createPost(t, s, ana, "hello", "a")

	var ids []uint64
	for i := 0; i < 3; i++ {
		c := &models.Comment{PostID: p.ID, Content: "c", ContentHTML: "c", PostedByUserID: &ana.ID, PostedAt: at}
		require.NoError(t, s.CreateComment(ctx, c))
		ids = append(ids, c.ID)
	}

	page, err := s.ListComments(ctx, p.ID, pagination.ParseParams("", "", "2", pagination.Ascending))
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, ids[0], page.Items[0].ID)
	assert.Equal(t, ids[1], page.Items[1].ID)
	assert.True(t, page.HasNext())

	posts, err := s.ListPostsByUser(ctx, ana.ID, pagination.ParseParams("", "", "", pagination.Descending))
	require.NoError(t, err)
	require.Len(t, posts.Items, 1)
	assert.Equal(t, 3, posts.Items[0].CommentCount)
}

func TestApplyAdminUpdateSkipsAdmins(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ana := createUser(t, s, "ana")
	root := createUser(t, s, "root")
	require.NoError(t, s.DB().Model(root).Update("role", models.RoleAdmin).Error)

	rows, err := s.ApplyAdminUpdate(ctx, root.ID, AdminUpdate{Role: models.RoleBanned})
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	require.NoError(t, s.UpdateProfile(ctx, ana.ID, ProfileUpdate{Name: "Ana", Description: "hi"}))
	rows, err = s.ApplyAdminUpdate(ctx, ana.ID, AdminUpdate{Role: models.RoleBanned, ResetName: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	got, err := s.UserByID(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleBanned, got.Role)
	assert.Equal(t, "", got.Name)
	assert.Equal(t, "hi", got.Description)
}

func TestChangePasswordByCode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createUser(t, s, "ana")

	rows, err := s.SetCodeByEmail(ctx, "ana@example.com", "654321")
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	u, err := s.ChangePasswordByCode(ctx, "654321", "newhash")
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)

	got, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", got.Password)
	assert.Nil(t, got.Code)

	_, err = s.ChangePasswordByCode(ctx, "654321", "again")
	assert.ErrorIs(t, err, ErrNotFound)
}
