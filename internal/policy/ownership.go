// Package policy decides which post and comment actions an identity may take.
//
// Ownership is keyed on email: a post belongs to the identity whose email
// equals the post's stored author. Comments have no owner of their own for
// deletion; the post author moderates every comment under the post.
package policy

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/identity"
	"github.com/ahmetcoskunkizilkaya/strive-blog/internal/models"
)

var (
	ErrUnauthenticated = identity.ErrAnonymous
	ErrForbidden       = errors.New("not allowed to modify this resource")
)

type Action string

const (
	ActionRead          Action = "read"
	ActionEditPost      Action = "edit_post"
	ActionDeletePost    Action = "delete_post"
	ActionAddComment    Action = "add_comment"
	ActionEditComment   Action = "edit_comment"
	ActionDeleteComment Action = "delete_comment"
)

// Permissions is the full set of actions available to a caller on one post.
type Permissions struct {
	Read           bool `json:"read"`
	Edit           bool `json:"edit"`
	Delete         bool `json:"delete"`
	AddComment     bool `json:"add_comment"`
	DeleteComments bool `json:"delete_comments"`
}

func IsPostAuthor(p *identity.Principal, post *models.Post) bool {
	return p != nil && post != nil && p.Email != "" && p.Email == post.Author
}

func CanRead(_ *identity.Principal, _ *models.Post) bool { return true }

func CanEditPost(p *identity.Principal, post *models.Post) bool { return IsPostAuthor(p, post) }

func CanDeletePost(p *identity.Principal, post *models.Post) bool { return IsPostAuthor(p, post) }

func CanAddComment(p *identity.Principal, _ *models.Post) bool { return p != nil }

func CanDeleteComment(p *identity.Principal, post *models.Post) bool { return IsPostAuthor(p, post) }

// CanEditComment lets the post author or the comment's own email edit it.
func CanEditComment(p *identity.Principal, post *models.Post, comment *models.Comment) bool {
	if IsPostAuthor(p, post) {
		return true
	}
	return p != nil && comment != nil && p.Email != "" && p.Email == comment.Email
}

// For evaluates every post-level action for p, which may be nil.
func For(p *identity.Principal, post *models.Post) Permissions {
	return Permissions{
		Read:           CanRead(p, post),
		Edit:           CanEditPost(p, post),
		Delete:         CanDeletePost(p, post),
		AddComment:     CanAddComment(p, post),
		DeleteComments: CanDeleteComment(p, post),
	}
}

// Authorize turns a denied action into an error: ErrUnauthenticated for
// anonymous callers, ErrForbidden for authenticated ones.
func Authorize(action Action, p *identity.Principal, post *models.Post) error {
	var allowed bool
	switch action {
	case ActionRead:
		allowed = CanRead(p, post)
	case ActionEditPost:
		allowed = CanEditPost(p, post)
	case ActionDeletePost:
		allowed = CanDeletePost(p, post)
	case ActionAddComment:
		allowed = CanAddComment(p, post)
	case ActionDeleteComment:
		allowed = CanDeleteComment(p, post)
	default:
		return errors.New("unknown action " + string(action))
	}
	if allowed {
		return nil
	}
	if p == nil {
		return ErrUnauthenticated
	}
	return ErrForbidden
}

// AuthorizeComment is Authorize for actions on a single comment.
func AuthorizeComment(action Action, p *identity.Principal, post *models.Post, comment *models.Comment) error {
	if action != ActionEditComment {
		return Authorize(action, p, post)
	}
	if CanEditComment(p, post, comment) {
		return nil
	}
	if p == nil {
		return ErrUnauthenticated
	}
	return ErrForbidden
}
