package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"melatoninAPI/internal/achievement"
	"melatoninAPI/internal/circle"
	"melatoninAPI/internal/dream"
	"melatoninAPI/internal/quest"
)

type CircleService struct {
	db           *pgxpool.Pool
	gamification *GamificationService
}

func NewCircleService(db *pgxpool.Pool, gamification *GamificationService) *CircleService {
	return &CircleService{db: db, gamification: gamification}
}

// CreateCircle makes the creator the circle's ELDER.
func (s *CircleService) CreateCircle(ctx context.Context, userID int64, name string, description *string) (*circle.Circle, error) {
	if name == "" {
		return nil, fmt.Errorf("circle name is required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin circle transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	c := &circle.Circle{}
	err = tx.QueryRow(ctx, `
		INSERT INTO circles (name, description, creator_id, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, name, description, creator_id, created_at
	`, name, description, userID).Scan(&c.ID, &c.Name, &c.Description, &c.CreatorID, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create circle: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO circle_members (circle_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, NOW())
	`, c.ID, userID, circle.RoleElder)
	if err != nil {
		return nil, fmt.Errorf("failed to add creator to circle: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit circle: %w", err)
	}
	c.MemberCount = 1

	if err := s.gamification.EvaluateAchievements(ctx, userID, achievement.CriteriaCircleCreated); err != nil {
		log.Printf("CircleService: circle_created achievement check failed for user %d: %v", userID, err)
	}

	return c, nil
}

func (s *CircleService) GetUserCircles(ctx context.Context, userID int64) ([]circle.Circle, error) {
	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.name, c.description, c.creator_id, c.created_at,
		       (SELECT COUNT(*) FROM circle_members m2 WHERE m2.circle_id = c.id) AS member_count
		FROM circles c
		JOIN circle_members m ON m.circle_id = c.id
		WHERE m.user_id = $1
		ORDER BY c.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch circles: %w", err)
	}
	defer rows.Close()

	var circles []circle.Circle
	for rows.Next() {
		var c circle.Circle
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatorID, &c.CreatedAt, &c.MemberCount); err != nil {
			return nil, fmt.Errorf("failed to scan circle: %w", err)
		}
		circles = append(circles, c)
	}
	return circles, rows.Err()
}

func (s *CircleService) JoinCircle(ctx context.Context, userID, circleID int64) error {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM circles WHERE id = $1)`, circleID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check circle: %w", err)
	}
	if !exists {
		return ErrCircleNotFound
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO circle_members (circle_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (circle_id, user_id) DO NOTHING
	`, circleID, userID, circle.RoleMember)
	if err != nil {
		return fmt.Errorf("failed to join circle: %w", err)
	}
	return nil
}

func (s *CircleService) isMember(ctx context.Context, userID, circleID int64) (bool, error) {
	var member bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM circle_members WHERE circle_id = $1 AND user_id = $2)
	`, circleID, userID).Scan(&member)
	if err != nil {
		return false, fmt.Errorf("failed to check membership: %w", err)
	}
	return member, nil
}

// ShareDream publishes one of the user's own dreams into a circle feed.
func (s *CircleService) ShareDream(ctx context.Context, userID, circleID, dreamID int64) error {
	member, err := s.isMember(ctx, userID, circleID)
	if err != nil {
		return err
	}
	if !member {
		return ErrNotCircleMember
	}

	var ownerID int64
	err = s.db.QueryRow(ctx, `SELECT user_id FROM dreams WHERE id = $1`, dreamID).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrDreamNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up dream: %w", err)
	}
	if ownerID != userID {
		return fmt.Errorf("only the dreamer can share a dream")
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO circle_dreams (circle_id, dream_id, shared_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (circle_id, dream_id) DO NOTHING
	`, circleID, dreamID)
	if err != nil {
		return fmt.Errorf("failed to share dream: %w", err)
	}

	if err := s.gamification.RecordEvent(ctx, userID, quest.ObjectiveShareToCircle, 1); err != nil {
		log.Printf("CircleService: share_to_circle quest event failed for user %d: %v", userID, err)
	}
	return nil
}

// GetCircleDreams returns the circle feed. Dreams shared anonymously keep
// their content but drop the dreamer's name.
func (s *CircleService) GetCircleDreams(ctx context.Context, userID, circleID int64) ([]circle.SharedDream, error) {
	member, err := s.isMember(ctx, userID, circleID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotCircleMember
	}

	rows, err := s.db.Query(ctx, `
		SELECT d.id, cd.circle_id, d.title, d.content, u.username, d.privacy_setting, cd.shared_at
		FROM circle_dreams cd
		JOIN dreams d ON d.id = cd.dream_id
		JOIN users u ON u.id = d.user_id
		WHERE cd.circle_id = $1
		ORDER BY cd.shared_at DESC
	`, circleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch circle dreams: %w", err)
	}
	defer rows.Close()

	var shared []circle.SharedDream
	for rows.Next() {
		var sd circle.SharedDream
		var username string
		var privacy dream.Privacy
		if err := rows.Scan(&sd.DreamID, &sd.CircleID, &sd.Title, &sd.Content, &username, &privacy, &sd.SharedAt); err != nil {
			return nil, fmt.Errorf("failed to scan circle dream: %w", err)
		}
		if privacy != dream.PrivacyAnonymous {
			sd.Dreamer = &username
		}
		shared = append(shared, sd)
	}
	return shared, rows.Err()
}

func (s *CircleService) GetMembers(ctx context.Context, userID, circleID int64) ([]circle.Member, error) {
	member, err := s.isMember(ctx, userID, circleID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotCircleMember
	}

	rows, err := s.db.Query(ctx, `
		SELECT m.circle_id, m.user_id, u.username, m.role, m.joined_at
		FROM circle_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.circle_id = $1
		ORDER BY m.joined_at ASC
	`, circleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	defer rows.Close()

	var members []circle.Member
	for rows.Next() {
		var m circle.Member
		if err := rows.Scan(&m.CircleID, &m.UserID, &m.Username, &m.Role, &m.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// CreatePost puts a text post on the circle board. Members only.
func (s *CircleService) CreatePost(ctx context.Context, userID, circleID int64, title *string, content string) (*circle.Post, error) {
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}

	member, err := s.isMember(ctx, userID, circleID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotCircleMember
	}

	p := &circle.Post{}
	err = s.db.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO circle_posts (circle_id, user_id, title, content, created_at)
			VALUES ($1, $2, $3, $4, NOW())
			RETURNING id, circle_id, user_id, title, content, created_at
		)
		SELECT i.id, i.circle_id, i.user_id, u.username, i.title, i.content, i.created_at
		FROM inserted i
		JOIN users u ON u.id = i.user_id
	`, circleID, userID, title, content).Scan(
		&p.ID, &p.CircleID, &p.UserID, &p.Username, &p.Title, &p.Content, &p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create circle post: %w", err)
	}
	return p, nil
}

// GetPosts returns the circle board, newest post first, each post carrying
// its comments oldest first.
func (s *CircleService) GetPosts(ctx context.Context, userID, circleID int64) ([]circle.Post, error) {
	member, err := s.isMember(ctx, userID, circleID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotCircleMember
	}

	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.circle_id, p.user_id, u.username, p.title, p.content, p.created_at
		FROM circle_posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.circle_id = $1
		ORDER BY p.created_at DESC
	`, circleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch circle posts: %w", err)
	}
	defer rows.Close()

	var posts []circle.Post
	byID := make(map[int64]int)
	for rows.Next() {
		var p circle.Post
		if err := rows.Scan(&p.ID, &p.CircleID, &p.UserID, &p.Username, &p.Title, &p.Content, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan circle post: %w", err)
		}
		p.Comments = []circle.PostComment{}
		byID[p.ID] = len(posts)
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return posts, nil
	}

	commentRows, err := s.db.Query(ctx, `
		SELECT c.id, c.post_id, c.user_id, u.username, c.content, c.created_at
		FROM circle_post_comments c
		JOIN users u ON u.id = c.user_id
		JOIN circle_posts p ON p.id = c.post_id
		WHERE p.circle_id = $1
		ORDER BY c.created_at ASC
	`, circleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch post comments: %w", err)
	}
	defer commentRows.Close()

	for commentRows.Next() {
		var c circle.PostComment
		if err := commentRows.Scan(&c.ID, &c.PostID, &c.UserID, &c.Username, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post comment: %w", err)
		}
		if i, ok := byID[c.PostID]; ok {
			posts[i].Comments = append(posts[i].Comments, c)
		}
	}
	return posts, commentRows.Err()
}

// AddPostComment comments on a circle post. The commenter must be a member
// of the post's circle.
func (s *CircleService) AddPostComment(ctx context.Context, userID, postID int64, content string) (*circle.PostComment, error) {
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}

	var circleID int64
	err := s.db.QueryRow(ctx, `SELECT circle_id FROM circle_posts WHERE id = $1`, postID).Scan(&circleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up post: %w", err)
	}

	member, err := s.isMember(ctx, userID, circleID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotCircleMember
	}

	c := &circle.PostComment{}
	err = s.db.QueryRow(ctx, `
		WITH inserted AS (
			INSERT INTO circle_post_comments (post_id, user_id, content, created_at)
			VALUES ($1, $2, $3, NOW())
			RETURNING id, post_id, user_id, content, created_at
		)
		SELECT i.id, i.post_id, i.user_id, u.username, i.content, i.created_at
		FROM inserted i
		JOIN users u ON u.id = i.user_id
	`, postID, userID, content).Scan(&c.ID, &c.PostID, &c.UserID, &c.Username, &c.Content, &c.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add post comment: %w", err)
	}
	return c, nil
}

// GetInvites lists a circle's unredeemed invite codes. Members only.
func (s *CircleService) GetInvites(ctx context.Context, userID, circleID int64) ([]circle.Invite, error) {
	member, err := s.isMember(ctx, userID, circleID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotCircleMember
	}

	rows, err := s.db.Query(ctx, `
		SELECT i.id, i.circle_id, i.code, i.created_by, u.username, i.created_at
		FROM circle_invites i
		JOIN users u ON u.id = i.created_by
		WHERE i.circle_id = $1 AND i.used_by IS NULL
		ORDER BY i.created_at DESC
	`, circleID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invites: %w", err)
	}
	defer rows.Close()

	var invites []circle.Invite
	for rows.Next() {
		var inv circle.Invite
		if err := rows.Scan(&inv.ID, &inv.CircleID, &inv.Code, &inv.CreatedBy, &inv.CreatedByName, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

// CreateInvite mints a single-use invite code for a circle.
func (s *CircleService) CreateInvite(ctx context.Context, userID, circleID int64) (*circle.Invite, error) {
	member, err := s.isMember(ctx, userID, circleID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, ErrNotCircleMember
	}

	inv := &circle.Invite{}
	err = s.db.QueryRow(ctx, `
		INSERT INTO circle_invites (circle_id, code, created_by, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, circle_id, code, created_by, created_at
	`, circleID, uuid.New().String(), userID).Scan(&inv.ID, &inv.CircleID, &inv.Code, &inv.CreatedBy, &inv.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}
	return inv, nil
}

// JoinByInvite redeems an unused code. Claiming is a conditional update,
// so two users racing for one code cannot both get in on it.
func (s *CircleService) JoinByInvite(ctx context.Context, userID int64, code string) (*circle.Circle, error) {
	var circleID int64
	err := s.db.QueryRow(ctx, `
		UPDATE circle_invites
		SET used_by = $1, used_at = NOW()
		WHERE code = $2 AND used_by IS NULL
		RETURNING circle_id
	`, userID, code).Scan(&circleID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to redeem invite: %w", err)
	}

	if err := s.JoinCircle(ctx, userID, circleID); err != nil {
		return nil, err
	}

	c := &circle.Circle{}
	err = s.db.QueryRow(ctx, `
		SELECT c.id, c.name, c.description, c.creator_id, c.created_at,
		       (SELECT COUNT(*) FROM circle_members m WHERE m.circle_id = c.id) AS member_count
		FROM circles c
		WHERE c.id = $1
	`, circleID).Scan(&c.ID, &c.Name, &c.Description, &c.CreatorID, &c.CreatedAt, &c.MemberCount)
	if err != nil {
		return nil, fmt.Errorf("failed to load joined circle: %w", err)
	}
	return c, nil
}
