package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestCircleService(t *testing.T) (*CircleService, func(t *testing.T) int64) {
	t.Helper()

	pool := testPool(t)
	svc := NewCircleService(pool, NewGamificationService(pool, NewNotificationService(pool)))
	return svc, func(t *testing.T) int64 {
		return createTestUser(t, pool)
	}
}

func TestCirclePosts(t *testing.T) {
	svc, newUser := newTestCircleService(t)
	ctx := context.Background()

	owner := newUser(t)
	member := newUser(t)
	outsider := newUser(t)

	c, err := svc.CreateCircle(ctx, owner, "lucid dreamers", nil)
	require.NoError(t, err)
	require.NoError(t, svc.JoinCircle(ctx, member, c.ID))

	title := "last night"
	post, err := svc.CreatePost(ctx, owner, c.ID, &title, "I was flying over the sea")
	require.NoError(t, err)
	require.Equal(t, c.ID, post.CircleID)
	require.NotEmpty(t, post.Username)
	require.NotNil(t, post.Title)

	// untitled posts are fine
	second, err := svc.CreatePost(ctx, member, c.ID, nil, "same, but I fell")
	require.NoError(t, err)
	require.Nil(t, second.Title)

	_, err = svc.CreatePost(ctx, outsider, c.ID, nil, "let me in")
	require.ErrorIs(t, err, ErrNotCircleMember)

	comment, err := svc.AddPostComment(ctx, member, post.ID, "that sounds peaceful")
	require.NoError(t, err)
	require.Equal(t, post.ID, comment.PostID)
	require.NotEmpty(t, comment.Username)

	_, err = svc.AddPostComment(ctx, outsider, post.ID, "nope")
	require.ErrorIs(t, err, ErrNotCircleMember)

	_, err = svc.AddPostComment(ctx, member, 999999999, "ghost post")
	require.ErrorIs(t, err, ErrPostNotFound)

	posts, err := svc.GetPosts(ctx, member, c.ID)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	// newest first, comments attached to their post
	require.Equal(t, second.ID, posts[0].ID)
	require.Empty(t, posts[0].Comments)
	require.Equal(t, post.ID, posts[1].ID)
	require.Len(t, posts[1].Comments, 1)
	require.Equal(t, "that sounds peaceful", posts[1].Comments[0].Content)

	_, err = svc.GetPosts(ctx, outsider, c.ID)
	require.ErrorIs(t, err, ErrNotCircleMember)
}

func TestCircleInviteListing(t *testing.T) {
	svc, newUser := newTestCircleService(t)
	ctx := context.Background()

	owner := newUser(t)
	joiner := newUser(t)
	outsider := newUser(t)

	c, err := svc.CreateCircle(ctx, owner, "night owls", nil)
	require.NoError(t, err)

	first, err := svc.CreateInvite(ctx, owner, c.ID)
	require.NoError(t, err)
	second, err := svc.CreateInvite(ctx, owner, c.ID)
	require.NoError(t, err)

	invites, err := svc.GetInvites(ctx, owner, c.ID)
	require.NoError(t, err)
	require.Len(t, invites, 2)
	require.NotEmpty(t, invites[0].CreatedByName)

	_, err = svc.GetInvites(ctx, outsider, c.ID)
	require.ErrorIs(t, err, ErrNotCircleMember)

	// redeemed codes drop out of the listing
	_, err = svc.JoinByInvite(ctx, joiner, first.Code)
	require.NoError(t, err)

	invites, err = svc.GetInvites(ctx, owner, c.ID)
	require.NoError(t, err)
	require.Len(t, invites, 1)
	require.Equal(t, second.Code, invites[0].Code)
}
