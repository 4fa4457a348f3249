package xmldoc

// walk visits descendants of n in document order. ancestors holds the chain
// from n's first child level down to the visited node's parent.
func (n *Node) walk(visit func(node *Node, ancestors []*Node) bool) {
	var rec func(parent *Node, ancestors []*Node) bool
	rec = func(parent *Node, ancestors []*Node) bool {
		ancestors = append(ancestors, parent)
		for _, child := range parent.Children {
			if !visit(child, ancestors) {
				return false
			}
			if !rec(child, ancestors) {
				return false
			}
		}
		return true
	}
	rec(n, nil)
}

// matchesPath reports whether node and its direct ancestors are named
// path[len-1], path[len-2] and so on.
func matchesPath(node *Node, ancestors []*Node, path []string) bool {
	if node.Name != path[len(path)-1] {
		return false
	}
	for i := len(path) - 2; i >= 0; i-- {
		idx := len(ancestors) - (len(path) - 1 - i)
		if idx < 0 || ancestors[idx].Name != path[i] {
			return false
		}
	}
	return true
}

// FindAllPath returns every descendant reached through a chain of direct
// children named path, in document order.
func (n *Node) FindAllPath(path ...string) []*Node {
	if len(path) == 0 {
		return nil
	}
	var found []*Node
	n.walk(func(node *Node, ancestors []*Node) bool {
		if matchesPath(node, ancestors, path) {
			found = append(found, node)
		}
		return true
	})
	return found
}

// FindPath returns the first match of FindAllPath, or nil.
func (n *Node) FindPath(path ...string) *Node {
	if len(path) == 0 {
		return nil
	}
	var found *Node
	n.walk(func(node *Node, ancestors []*Node) bool {
		if matchesPath(node, ancestors, path) {
			found = node
			return false
		}
		return true
	})
	return found
}

// ChildPairs returns every child element that sits directly under a parent
// element, anywhere below n.
func (n *Node) ChildPairs(parent, child string) []*Node {
	return n.FindAllPath(parent, child)
}

// Find returns the first descendant named name, or nil.
func (n *Node) Find(name string) *Node {
	return n.FindPath(name)
}

func (n *Node) Has(name string) bool {
	return n.Find(name) != nil
}

// ChildText returns the text of the first descendant named name and whether
// it exists.
func (n *Node) ChildText(name string) (string, bool) {
	found := n.Find(name)
	if found == nil {
		return "", false
	}
	return found.Text(), true
}

// PathText is ChildText for a FindPath chain.
func (n *Node) PathText(path ...string) (string, bool) {
	found := n.FindPath(path...)
	if found == nil {
		return "", false
	}
	return found.Text(), true
}
