// Package access decides what a viewer may do with a post, a comment or a
// user profile. Flags are derived on every read and never stored.
package access

import (
	"time"

	"neor/internal/models"
)

// EditWindow is how long after posting the author may still edit.
const EditWindow = 2 * time.Hour

// Viewer is the signed-in user on whose behalf a request runs.
// A nil *Viewer is an anonymous visitor.
type Viewer struct {
	ID       uint64
	Username string
	Role     models.Role
}

// ViewerFor returns nil for a nil user.
func ViewerFor(u *models.User) *Viewer {
	if u == nil {
		return nil
	}
	return &Viewer{ID: u.ID, Username: u.Username, Role: u.Role}
}

func (v *Viewer) Capabilities() models.Capabilities {
	if v == nil {
		return models.Capabilities{}
	}
	return v.Role.Capabilities()
}

// Owns reports whether the viewer is the (still attached) owner.
func (v *Viewer) Owns(ownerID *uint64) bool {
	return v != nil && ownerID != nil && *ownerID == v.ID
}

func withinEditWindow(postedAt, now time.Time) bool {
	return now.Sub(postedAt) < EditWindow
}

type PostFlags struct {
	Commentable  bool
	Editable     bool
	Anonymisable bool
	Deletable    bool
}

func ForPost(v *Viewer, ownerID *uint64, postedAt, now time.Time) PostFlags {
	caps := v.Capabilities()
	owner := v.Owns(ownerID)
	return PostFlags{
		Commentable:  caps.Comment,
		Editable:     owner && caps.EditPosts && withinEditWindow(postedAt, now),
		Anonymisable: owner && caps.AnonymisePosts,
		Deletable:    caps.DeletePosts,
	}
}

type CommentFlags struct {
	Repliable    bool
	Editable     bool
	Anonymisable bool
	Deletable    bool
}

func ForComment(v *Viewer, ownerID *uint64, postedAt, now time.Time) CommentFlags {
	caps := v.Capabilities()
	owner := v.Owns(ownerID)
	return CommentFlags{
		Repliable:    caps.Reply,
		Editable:     owner && caps.EditComments && withinEditWindow(postedAt, now),
		Anonymisable: owner && caps.AnonymiseComments,
		Deletable:    caps.DeleteComments,
	}
}

type UserFlags struct {
	Editable    bool
	SignOutable bool
	Adminable   bool
}

func ForUser(v *Viewer, targetID uint64, targetRole models.Role) UserFlags {
	self := v != nil && v.ID == targetID
	return UserFlags{
		Editable:    self && v.Capabilities().EditSelf,
		SignOutable: self,
		Adminable:   v.Capabilities().Admin && !targetRole.Capabilities().Admin,
	}
}
