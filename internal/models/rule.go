package models

// Rule is a coding rule that profiles activate and issues are raised against.
type Rule struct {
	Key              string `db:"rule_key" json:"key"`
	Name             string `db:"name" json:"name"`
	Language         string `db:"language" json:"language"`
	CharacteristicID *int64 `db:"characteristic_id" json:"-"`
}

// Characteristic is a node of the technical debt model. Sub-characteristics have a parent.
type Characteristic struct {
	ID       int64  `db:"id" json:"id"`
	Key      string `db:"kee" json:"key"`
	Name     string `db:"name" json:"name"`
	ParentID *int64 `db:"parent_id" json:"-"`
}
