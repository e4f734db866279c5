package gee

import "strings"

// node 是路由 trie 的节点。part 为 :xxx 或 *xxx 时是模糊匹配；
// 只有路由终点节点的 pattern 非空。
type node struct {
	pattern  string
	part     string
	children []*node
	isWild   bool
}

// 第一个匹配成功的子节点，用于插入
func (n *node) matchChild(part string) *node {
	for _, child := range n.children {
		if child.part == part {
			return child
		}
	}
	return nil
}

// 所有匹配成功的子节点，用于查找；精确匹配排在模糊匹配之前，
// 保证静态路由优先于 :param / *filepath。
func (n *node) matchChildren(part string) []*node {
	nodes := make([]*node, 0)
	for _, child := range n.children {
		if child.part == part {
			nodes = append(nodes, child)
		}
	}
	for _, child := range n.children {
		if child.isWild {
			nodes = append(nodes, child)
		}
	}
	return nodes
}

func (n *node) insert(pattern string, parts []string, height int) {
	if len(parts) == height {
		n.pattern = pattern
		return
	}
	part := parts[height]
	child := n.matchChild(part)
	if child == nil {
		child = &node{
			part:   part,
			isWild: part[0] == ':' || part[0] == '*',
		}
		n.children = append(n.children, child)
	}
	child.insert(pattern, parts, height+1)
}

func (n *node) search(parts []string, height int) *node {
	if len(parts) == height || strings.HasPrefix(n.part, "*") {
		if n.pattern == "" {
			return nil
		}
		return n
	}

	part := parts[height]
	for _, child := range n.matchChildren(part) {
		if result := child.search(parts, height+1); result != nil {
			return result
		}
	}
	return nil
}
