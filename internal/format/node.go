// Package format turns JSON values into display nodes.
package format

// Node is a display-ready representation of a JSON value. The set of node
// types is closed: Text, CodeBlock, Table, Group, List and PlanBoard.
type Node interface {
	// NodeType names the node for markup and JSON output.
	NodeType() string
	node()
}

// Text is a scalar. Null is set for JSON null, which is shown differently
// from an empty string.
type Text struct {
	Value string `json:"value"`
	Null  bool   `json:"null,omitempty"`
}

// CodeBlock is literal code with an optional language.
type CodeBlock struct {
	Language string `json:"language,omitempty"`
	Content  string `json:"content"`
}

// Table holds rows of scalar cells. Every row has one cell per column.
type Table struct {
	Columns []string `json:"columns"`
	Rows    [][]Node `json:"rows"`
}

// Field is one key of a Group.
type Field struct {
	Key   string `json:"key"`
	Value Node   `json:"value"`
}

// Group is a key/value group in source key order.
type Group struct {
	Fields []Field `json:"fields"`
}

// List is an ordered sequence of nodes.
type List struct {
	Items []Node `json:"items"`
}

// PlanStep is one step of a plan.
type PlanStep struct {
	Status string  `json:"status"`
	Text   string  `json:"text"`
	Extra  []Field `json:"extra,omitempty"`
}

// PlanBoard is an ordered plan. Extra carries sibling fields of the plan
// object that are not part of the plan itself.
type PlanBoard struct {
	Explanation string     `json:"explanation,omitempty"`
	Steps       []PlanStep `json:"steps"`
	Extra       []Field    `json:"extra,omitempty"`
}

func (Text) NodeType() string      { return "text" }
func (CodeBlock) NodeType() string { return "code" }
func (Table) NodeType() string     { return "table" }
func (Group) NodeType() string     { return "group" }
func (List) NodeType() string      { return "list" }
func (PlanBoard) NodeType() string { return "plan" }

func (Text) node()      {}
func (CodeBlock) node() {}
func (Table) node()     {}
func (Group) node()     {}
func (List) node()      {}
func (PlanBoard) node() {}

// Leaves counts the leaves of a node tree: texts, code blocks, table cells,
// plan statuses, plan texts, step metadata and a non-empty plan explanation.
func Leaves(n Node) int {
	switch n := n.(type) {
	case Text, CodeBlock:
		return 1
	case Table:
		c := 0
		for _, row := range n.Rows {
			for _, cell := range row {
				c += Leaves(cell)
			}
		}
		return c
	case Group:
		return fieldLeaves(n.Fields)
	case List:
		c := 0
		for _, item := range n.Items {
			c += Leaves(item)
		}
		return c
	case PlanBoard:
		c := 2*len(n.Steps) + fieldLeaves(n.Extra)
		for _, s := range n.Steps {
			c += fieldLeaves(s.Extra)
		}
		if n.Explanation != "" {
			c++
		}
		return c
	}
	return 0
}

func fieldLeaves(fields []Field) int {
	c := 0
	for _, f := range fields {
		c += Leaves(f.Value)
	}
	return c
}
