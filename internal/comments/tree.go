// Package comments assembles the two-level comment tree for a post.
package comments

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/matnazarov/blog-api/internal/models"
)

// Node is one rendered comment. Replies of replies are not rendered; a
// reply's Replies list is always empty.
type Node struct {
	ID         int                   `json:"id"`
	Comment    string                `json:"comment"`
	IsActive   bool                  `json:"is_active"`
	UserID     int                   `json:"user_id"`
	PostID     int                   `json:"post_id"`
	ParentID   *int                  `json:"parent_id"`
	Created    time.Time             `json:"created"`
	Updated    time.Time             `json:"updated"`
	User       *models.AuthorSummary `json:"user"`
	Replies    []Node                `json:"replies"`
	LikesCount int64                 `json:"likes_count"`
}

// BuildTree returns the active comments of a post as a two-level hierarchy:
// top-level comments newest-first, each with its replies oldest-first.
// Comments nested deeper than one reply level are flattened under their
// nearest top-level ancestor. A nonexistent or fully-inactive post yields an
// empty list, not an error - post existence is the caller's concern.
func BuildTree(db *gorm.DB, postID int) ([]Node, error) {
	var all []models.Comment
	err := db.Where("post_id = ? AND is_active = ?", postID, true).
		Preload("User").
		Order("created asc").
		Find(&all).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[int]*models.Comment, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}

	roots := make([]Node, 0)
	replies := make(map[int][]Node)

	for i := range all {
		c := &all[i]
		node, err := toNode(db, c)
		if err != nil {
			return nil, err
		}

		if c.ParentID == nil {
			roots = append(roots, node)
			continue
		}

		// Walk up to the nearest top-level ancestor. A broken or inactive
		// parent chain drops the comment, matching the parent-scoped fetch.
		root, ok := topLevelAncestor(byID, c)
		if !ok {
			continue
		}
		replies[root] = append(replies[root], node)
	}

	// Replies arrive in created-asc order already; top-level order is
	// newest-first.
	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].Created.After(roots[j].Created)
	})

	for i := range roots {
		if r, ok := replies[roots[i].ID]; ok {
			roots[i].Replies = r
		}
	}

	return roots, nil
}

func topLevelAncestor(byID map[int]*models.Comment, c *models.Comment) (int, bool) {
	seen := make(map[int]bool)
	cur := c
	for cur.ParentID != nil {
		if seen[cur.ID] {
			return 0, false
		}
		seen[cur.ID] = true

		parent, ok := byID[*cur.ParentID]
		if !ok {
			return 0, false
		}
		cur = parent
	}
	return cur.ID, cur.ID != c.ID
}

func toNode(db *gorm.DB, c *models.Comment) (Node, error) {
	var likes int64
	err := db.Model(&models.CommentLike{}).
		Where("comment_id = ? AND is_like = ?", c.ID, true).
		Count(&likes).Error
	if err != nil {
		return Node{}, err
	}

	return Node{
		ID:         c.ID,
		Comment:    c.Comment,
		IsActive:   c.IsActive,
		UserID:     c.UserID,
		PostID:     c.PostID,
		ParentID:   c.ParentID,
		Created:    c.Created,
		Updated:    c.Updated,
		User:       c.User.Summary(),
		Replies:    []Node{},
		LikesCount: likes,
	}, nil
}
