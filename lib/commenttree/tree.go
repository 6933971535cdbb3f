// Package commenttree rebuilds the reply structure of a flat comment map.
package commenttree

import (
	"sort"

	"tabun-api/lib/models"
)

type Node struct {
	Comment  *models.Comment
	Children []*Node
}

// Build returns the comments as a forest with every level ordered by id.
// A comment whose parent is not in the map is an orphan: it is placed at
// the root and its id is listed in orphans. Comments that only lead back
// to each other through their parents are treated as orphans too, so
// every comment ends up in the forest exactly once.
func Build(comments map[int]*models.Comment) (forest []*Node, orphans []int) {
	nodes := make(map[int]*Node, len(comments))
	ids := make([]int, 0, len(comments))
	for id, c := range comments {
		if c == nil {
			continue
		}
		nodes[id] = &Node{Comment: c}
		ids = append(ids, id)
	}
	sort.Ints(ids)

	children := map[int][]int{}
	var roots []int
	for _, id := range ids {
		parent := comments[id].ParentID
		if parent == id {
			parent = 0
		}
		_, known := nodes[parent]
		switch {
		case parent == 0:
			roots = append(roots, id)
		case !known:
			roots = append(roots, id)
			orphans = append(orphans, id)
		default:
			children[parent] = append(children[parent], id)
		}
	}

	placed := make(map[int]bool, len(ids))
	var attach func(id int) *Node
	attach = func(id int) *Node {
		placed[id] = true
		n := nodes[id]
		for _, child := range children[id] {
			if placed[child] {
				continue
			}
			n.Children = append(n.Children, attach(child))
		}
		return n
	}
	for _, id := range roots {
		forest = append(forest, attach(id))
	}

	// anything left over sits on a parent cycle
	for _, id := range ids {
		if placed[id] {
			continue
		}
		forest = append(forest, attach(id))
		orphans = append(orphans, id)
	}

	sort.Slice(forest, func(i, j int) bool {
		return forest[i].Comment.CommentID < forest[j].Comment.CommentID
	})
	sort.Ints(orphans)
	return forest, orphans
}

// Walk visits every node depth first, passing its depth starting at 0.
func Walk(forest []*Node, visit func(n *Node, depth int)) {
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			visit(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(forest, 0)
}
