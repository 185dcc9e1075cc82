// Package commenttree turns the flat comment list of a post into the two-level
// shape the UI renders: top-level comments, each carrying every reply of its
// thread in SubComments.
package commenttree

import (
	"errors"
	"reflect"

	"github.com/BloggingApp/blog-gateway/internal/model"
	"go.uber.org/zap"
)

var (
	errSelfReference = errors.New("comment replies to itself")
	errCycle         = errors.New("comment parent chain is cyclic")
	errDangling      = errors.New("comment parent is not in the list")
)

// Build keeps the backend order among comments sharing a top-level ancestor.
// Replies to replies are flattened into the top-level comment's SubComments.
// Comments whose parent chain is broken or cyclic are skipped and logged.
func Build(flat []model.Comment, logger *zap.Logger) []model.Comment {
	if logger == nil {
		logger = zap.NewNop()
	}

	comments := Flatten(flat)

	index := make(map[string]int, len(comments))
	for i, c := range comments {
		if first, exists := index[c.ID]; exists {
			if sameComment(comments[first], c) {
				logger.Sugar().Debugf("comment(%s) listed both nested and flat, keeping first occurrence", c.ID)
			} else {
				logger.Sugar().Warnf("duplicate comment(%s) in post(%s), keeping first occurrence", c.ID, c.PostID)
			}
			continue
		}
		index[c.ID] = i
	}

	roots := make([]model.Comment, 0, len(comments))
	rootPos := make(map[string]int)
	for i, c := range comments {
		if index[c.ID] != i || !c.IsTopLevel() {
			continue
		}
		c.SubComments = nil
		rootPos[c.ID] = len(roots)
		roots = append(roots, c)
	}

	for i, c := range comments {
		if index[c.ID] != i || c.IsTopLevel() {
			continue
		}

		rootID, err := topLevelAncestor(c, comments, index)
		if err != nil {
			logger.Sugar().Warnf("skipping comment(%s) with parent(%s): %s", c.ID, c.ParentID(), err.Error())
			continue
		}

		c.SubComments = nil
		pos := rootPos[rootID]
		roots[pos].SubComments = append(roots[pos].SubComments, c)
	}

	return roots
}

func topLevelAncestor(c model.Comment, comments []model.Comment, index map[string]int) (string, error) {
	visited := map[string]struct{}{c.ID: {}}
	current := c
	for {
		parentID := current.ParentID()
		if parentID == current.ID {
			return "", errSelfReference
		}
		if _, seen := visited[parentID]; seen {
			return "", errCycle
		}

		pos, ok := index[parentID]
		if !ok {
			return "", errDangling
		}

		parent := comments[pos]
		if parent.IsTopLevel() {
			return parent.ID, nil
		}

		visited[parentID] = struct{}{}
		current = parent
	}
}

// Flatten expands comments that arrive with embedded SubComments into a flat
// pre-order list. A nested comment without a parent id inherits its
// container's id.
func Flatten(comments []model.Comment) []model.Comment {
	flat := make([]model.Comment, 0, len(comments))
	var walk func(c model.Comment)
	walk = func(c model.Comment) {
		children := c.SubComments
		c.SubComments = nil
		flat = append(flat, c)
		for _, child := range children {
			if child.IsTopLevel() {
				parentID := c.ID
				child.ParentCommentID = &parentID
			}
			walk(child)
		}
	}
	for _, c := range comments {
		walk(c)
	}
	return flat
}

// Insert places one freshly created comment into an already built tree. It
// returns false, and the tree unchanged, when the comment is already present
// or its parent cannot be found among the tree's comments.
func Insert(tree []model.Comment, c model.Comment) ([]model.Comment, bool) {
	if contains(tree, c.ID) {
		return tree, false
	}

	c.SubComments = nil

	if c.IsTopLevel() {
		out := make([]model.Comment, len(tree), len(tree)+1)
		copy(out, tree)
		return append(out, c), true
	}

	parentID := c.ParentID()
	for i, root := range tree {
		if root.ID != parentID && !hasReply(root, parentID) {
			continue
		}

		out := make([]model.Comment, len(tree))
		copy(out, tree)

		replies := make([]model.Comment, len(root.SubComments), len(root.SubComments)+1)
		copy(replies, root.SubComments)
		out[i].SubComments = append(replies, c)
		return out, true
	}

	return tree, false
}

// Count returns the number of comments in the tree, replies included.
func Count(tree []model.Comment) int {
	n := len(tree)
	for _, root := range tree {
		n += len(root.SubComments)
	}
	return n
}

func contains(tree []model.Comment, id string) bool {
	for _, root := range tree {
		if root.ID == id || hasReply(root, id) {
			return true
		}
	}
	return false
}

func hasReply(root model.Comment, id string) bool {
	for _, reply := range root.SubComments {
		if reply.ID == id {
			return true
		}
	}
	return false
}

// sameComment compares two copies of a comment, ignoring their nested replies.
func sameComment(a, b model.Comment) bool {
	a.SubComments, b.SubComments = nil, nil
	return reflect.DeepEqual(a, b)
}
