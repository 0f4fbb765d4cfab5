package models

import "fmt"

// TreeNodeType represents the type of tree node
type TreeNodeType string

const (
	TreeNodeTypeRoot   TreeNodeType = "root"
	TreeNodeTypeSchema TreeNodeType = "schema"
	TreeNodeTypeTable  TreeNodeType = "table"
	TreeNodeTypeColumn TreeNodeType = "column"
)

// TreeNode represents a node in the navigation tree.
// The tree is a render snapshot: expansion is owned by the navigator and copied into Expanded.
type TreeNode struct {
	ID       string       // Unique identifier (e.g., "schema:public", "table:public.users")
	Type     TreeNodeType // Type of node
	Label    string       // Display text
	Parent   *TreeNode    // Parent node (nil for root)
	Children []*TreeNode  // Child nodes
	Expanded bool         // Whether node is expanded
	Favorite bool         // Whether the table is a favourite
	Metadata interface{}  // TableRef for tables, Column for columns
}

// NewTreeNode creates a new tree node
func NewTreeNode(id string, nodeType TreeNodeType, label string) *TreeNode {
	return &TreeNode{
		ID:       id,
		Type:     nodeType,
		Label:    label,
		Children: make([]*TreeNode, 0),
	}
}

// AddChild adds a child node to this node
func (n *TreeNode) AddChild(child *TreeNode) {
	child.Parent = n
	n.Children = append(n.Children, child)
}

// CanExpand reports whether the node has an expansion state.
// Columns are leaves.
func (n *TreeNode) CanExpand() bool {
	return n.Type == TreeNodeTypeSchema || n.Type == TreeNodeTypeTable
}

// Flatten returns a flat list of visible nodes for rendering
func (n *TreeNode) Flatten() []*TreeNode {
	return n.flattenHelper(true)
}

func (n *TreeNode) flattenHelper(visible bool) []*TreeNode {
	result := make([]*TreeNode, 0)

	// The root is just a container
	if n.Type != TreeNodeTypeRoot && visible {
		result = append(result, n)
	}

	if n.Expanded || n.Type == TreeNodeTypeRoot {
		for _, child := range n.Children {
			childVisible := visible && (n.Type == TreeNodeTypeRoot || n.Expanded)
			result = append(result, child.flattenHelper(childVisible)...)
		}
	}

	return result
}

// FindByID finds a node by ID in the tree (depth-first search)
func (n *TreeNode) FindByID(id string) *TreeNode {
	if n.ID == id {
		return n
	}

	for _, child := range n.Children {
		if found := child.FindByID(id); found != nil {
			return found
		}
	}

	return nil
}

// GetPath returns the labels from the first level below root to this node
func (n *TreeNode) GetPath() []string {
	path := make([]string, 0)
	current := n

	for current != nil {
		if current.Type != TreeNodeTypeRoot {
			path = append([]string{current.Label}, path...)
		}
		current = current.Parent
	}

	return path
}

// GetDepth returns the depth of this node in the tree (root = 0)
func (n *TreeNode) GetDepth() int {
	depth := 0
	current := n.Parent

	for current != nil {
		depth++
		current = current.Parent
	}

	return depth
}

// IsAncestorOf checks if this node is an ancestor of the given node
func (n *TreeNode) IsAncestorOf(other *TreeNode) bool {
	current := other.Parent

	for current != nil {
		if current == n {
			return true
		}
		current = current.Parent
	}

	return false
}

// NewStructureRoot creates the invisible root of a schema tree
func NewStructureRoot() *TreeNode {
	root := NewTreeNode("root", TreeNodeTypeRoot, "Schemas")
	root.Expanded = true
	return root
}

// SchemaNodeID returns the node ID of a schema
func SchemaNodeID(schema string) string {
	return fmt.Sprintf("schema:%s", schema)
}

// TableNodeID returns the node ID of a table
func TableNodeID(ref TableRef) string {
	return fmt.Sprintf("table:%s.%s", ref.Schema, ref.Table)
}

// BuildSchemaNode creates a schema node without children
func BuildSchemaNode(schemaName string) *TreeNode {
	return NewTreeNode(SchemaNodeID(schemaName), TreeNodeTypeSchema, schemaName)
}

// BuildTableNode creates a table node with its column nodes attached
func BuildTableNode(schemaName string, table Table) *TreeNode {
	ref := TableRef{Schema: schemaName, Table: table.Name}
	node := NewTreeNode(TableNodeID(ref), TreeNodeTypeTable, table.Name)
	node.Metadata = ref

	for _, col := range BuildColumnNodes(ref, table.Columns) {
		node.AddChild(col)
	}
	return node
}

// BuildColumnNodes creates column nodes for a table
func BuildColumnNodes(ref TableRef, columns []Column) []*TreeNode {
	nodes := make([]*TreeNode, 0, len(columns))

	for _, col := range columns {
		label := fmt.Sprintf("%s (%s)", col.Name, col.DataType)

		node := NewTreeNode(
			fmt.Sprintf("column:%s.%s.%s", ref.Schema, ref.Table, col.Name),
			TreeNodeTypeColumn,
			label,
		)
		node.Metadata = col
		nodes = append(nodes, node)
	}

	return nodes
}

// GetSchemaFromNode returns the schema name for any node in a schema or below
func GetSchemaFromNode(node *TreeNode) string {
	current := node
	for current != nil {
		if current.Type == TreeNodeTypeSchema {
			return current.Label
		}
		current = current.Parent
	}

	return ""
}

// TableRefFromNode returns the table a table or column node belongs to
func TableRefFromNode(node *TreeNode) (TableRef, bool) {
	current := node
	for current != nil {
		if current.Type == TreeNodeTypeTable {
			if ref, ok := current.Metadata.(TableRef); ok {
				return ref, true
			}
			return TableRef{Schema: GetSchemaFromNode(current), Table: current.Label}, true
		}
		current = current.Parent
	}
	return TableRef{}, false
}
