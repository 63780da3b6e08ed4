package resolve

// Kind classifies a trace node.
type Kind string

// Trace node kinds, root first.
const (
	KindDescriptor   Kind = "descriptor"
	KindManufacturer Kind = "manufacturer"
	KindModels       Kind = "models"
	KindDevice       Kind = "device"
	KindInstall      Kind = "install"
	KindFileList     Kind = "filelist"
	KindFile         Kind = "file"
)

// Node is one step of a recorded walk. Children appear in walk order.
//
// Methods are nil-safe so the walker can record unconditionally; with
// tracing disabled every node is nil.
type Node struct {
	Kind     Kind    `json:"kind"`
	Name     string  `json:"name"`
	Detail   string  `json:"detail,omitempty"`
	Missing  bool    `json:"missing,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

func (n *Node) add(kind Kind, name, detail string) *Node {
	if n == nil {
		return nil
	}
	child := &Node{Kind: kind, Name: name, Detail: detail}
	n.Children = append(n.Children, child)
	return child
}

func (n *Node) missing() {
	if n != nil {
		n.Missing = true
	}
}

// Walk calls fn for n and every descendant, depth-first, with the depth of
// each node (0 for n). It is a no-op on a nil node.
func (n *Node) Walk(fn func(node *Node, depth int)) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int), depth int) {
	if n == nil {
		return
	}
	fn(n, depth)
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}
