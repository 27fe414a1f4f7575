package circle

import (
	"time"
)

type Role string

const (
	RoleElder  Role = "ELDER"
	RoleMember Role = "MEMBER"
)

type Circle struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatorID   int64     `json:"creator_id" db:"creator_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	MemberCount int       `json:"member_count" db:"member_count"`
}

type Member struct {
	CircleID int64     `json:"circle_id" db:"circle_id"`
	UserID   int64     `json:"user_id" db:"user_id"`
	Username string    `json:"username" db:"username"`
	Role     Role      `json:"role" db:"role"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

// SharedDream is a dream surfaced inside a circle feed. Dreams shared with
// ANONYMOUS privacy keep their content but hide the dreamer.
type SharedDream struct {
	DreamID   int64     `json:"dream_id" db:"dream_id"`
	CircleID  int64     `json:"circle_id" db:"circle_id"`
	Title     string    `json:"title" db:"title"`
	Content   string    `json:"content" db:"content"`
	Dreamer   *string   `json:"dreamer,omitempty" db:"dreamer"`
	SharedAt  time.Time `json:"shared_at" db:"shared_at"`
}

// Post is a text discussion entry on a circle's board, visible to members
// only. Comments come back oldest first.
type Post struct {
	ID        int64         `json:"id" db:"id"`
	CircleID  int64         `json:"circle_id" db:"circle_id"`
	UserID    int64         `json:"user_id" db:"user_id"`
	Username  string        `json:"username" db:"username"`
	Title     *string       `json:"title,omitempty" db:"title"`
	Content   string        `json:"content" db:"content"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	Comments  []PostComment `json:"comments"`
}

type PostComment struct {
	ID        int64     `json:"id" db:"id"`
	PostID    int64     `json:"post_id" db:"post_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Username  string    `json:"username" db:"username"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Invite is a single-use code admitting one user into a circle.
type Invite struct {
	ID            int64      `json:"id" db:"id"`
	CircleID      int64      `json:"circle_id" db:"circle_id"`
	Code          string     `json:"code" db:"code"`
	CreatedBy     int64      `json:"created_by" db:"created_by"`
	CreatedByName string     `json:"created_by_name,omitempty" db:"created_by_name"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UsedBy        *int64     `json:"used_by,omitempty" db:"used_by"`
	UsedAt        *time.Time `json:"used_at,omitempty" db:"used_at"`
}
