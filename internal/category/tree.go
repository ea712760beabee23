// Package category builds display forests and descendant closures over the
// flat parent-pointer category rows. Codes are derived data: they are
// recomputed on every call and never persisted, so inserting or deleting a
// category silently renumbers its siblings.
package category

import (
	"sort"
	"strconv"
	"strings"

	"fintrack/internal/models"
)

// Node is one category annotated with its render position.
type Node struct {
	Category models.Category `json:"category"`
	Code     string          `json:"code"`
	Depth    int             `json:"depth"`
	Children []*Node         `json:"children,omitempty"`
}

// BuildForest groups same-type categories by parent, sorts each sibling
// group case-insensitively by name, and assigns 1-based dotted codes
// ("2.1.3"). Traversal is iterative over the parent index, so pathological
// parent chains cannot blow the stack.
func BuildForest(categories []models.Category, kind models.CategoryType) []*Node {
	filtered := make(map[string]models.Category)
	for _, c := range categories {
		if c.Type == kind {
			filtered[c.ID] = c
		}
	}

	children := make(map[string][]models.Category)
	var roots []models.Category
	for _, c := range filtered {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		if _, ok := filtered[*c.ParentID]; !ok {
			// Orphaned parent pointer: render at top level rather than drop.
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}
	sortSiblings(roots)
	for _, group := range children {
		sortSiblings(group)
	}

	forest := make([]*Node, 0, len(roots))
	var stack []*Node
	for i, root := range roots {
		node := &Node{Category: root, Code: itoa(i + 1)}
		forest = append(forest, node)
		stack = append(stack, node)
	}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for i, child := range children[current.Category.ID] {
			childNode := &Node{
				Category: child,
				Code:     current.Code + "." + itoa(i+1),
				Depth:    current.Depth + 1,
			}
			current.Children = append(current.Children, childNode)
			stack = append(stack, childNode)
		}
	}
	return forest
}

// Flatten returns the forest in display order, parents before children.
func Flatten(forest []*Node) []*Node {
	var out []*Node
	stack := make([]*Node, 0, len(forest))
	for i := len(forest) - 1; i >= 0; i-- {
		stack = append(stack, forest[i])
	}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, node)
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, node.Children[i])
		}
	}
	return out
}

// ExcludedDescendants returns rootID plus every transitive descendant.
// This closure is the sole cycle-prevention mechanism: a category's new
// parent must not be a member, otherwise the category would become its own
// ancestor.
func ExcludedDescendants(categories []models.Category, rootID string) []string {
	children := make(map[string][]string)
	for _, c := range categories {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}
	excluded := []string{rootID}
	seen := map[string]bool{rootID: true}
	queue := []string{rootID}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			if seen[child] {
				continue
			}
			seen[child] = true
			excluded = append(excluded, child)
			queue = append(queue, child)
		}
	}
	return excluded
}

func sortSiblings(group []models.Category) {
	sort.SliceStable(group, func(i, j int) bool {
		left := strings.ToLower(group[i].Name)
		right := strings.ToLower(group[j].Name)
		if left == right {
			return group[i].ID < group[j].ID
		}
		return left < right
	})
}

func itoa(value int) string {
	return strconv.Itoa(value)
}
