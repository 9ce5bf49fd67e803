package format

import "encoding/json"

// Nodes marshal with a "type" member so clients can tell the variants apart.

func (n Text) MarshalJSON() ([]byte, error) {
	type plain Text
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{n.NodeType(), plain(n)})
}

func (n CodeBlock) MarshalJSON() ([]byte, error) {
	type plain CodeBlock
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{n.NodeType(), plain(n)})
}

func (n Table) MarshalJSON() ([]byte, error) {
	type plain Table
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{n.NodeType(), plain(n)})
}

func (n Group) MarshalJSON() ([]byte, error) {
	type plain Group
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{n.NodeType(), plain(n)})
}

func (n List) MarshalJSON() ([]byte, error) {
	type plain List
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{n.NodeType(), plain(n)})
}

func (n PlanBoard) MarshalJSON() ([]byte, error) {
	type plain PlanBoard
	return json.Marshal(struct {
		Type string `json:"type"`
		plain
	}{n.NodeType(), plain(n)})
}
