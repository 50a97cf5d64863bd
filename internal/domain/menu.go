package domain

// MenuGroup menu_groups table.
type MenuGroup struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	SortOrder int    `json:"sort_order" db:"sort_order"`
}

// MenuItem menu_items table. Empty Roles means visible to every role.
type MenuItem struct {
	ID        string   `json:"id" db:"id"`
	GroupID   string   `json:"group_id" db:"group_id"`
	ParentID  *string  `json:"parent_id" db:"parent_id"`
	Label     string   `json:"label" db:"label"`
	Path      *string  `json:"path,omitempty" db:"path"`
	Icon      *string  `json:"icon,omitempty" db:"icon"`
	SortOrder int      `json:"sort_order" db:"sort_order"`
	Roles     []string `json:"roles" db:"roles"`
	IsActive  bool     `json:"is_active" db:"is_active"`
}

// VisibleTo reports whether role may see the item.
func (m MenuItem) VisibleTo(role Role) bool {
	if !m.IsActive {
		return false
	}
	if len(m.Roles) == 0 || role == RoleAdmin {
		return true
	}
	for _, r := range m.Roles {
		if Role(r) == role {
			return true
		}
	}
	return false
}

// MenuItemNode item with nested children.
type MenuItemNode struct {
	MenuItem
	Children []*MenuItemNode `json:"children"`
}

// MenuGroupNode group with its top-level items.
type MenuGroupNode struct {
	MenuGroup
	Items []*MenuItemNode `json:"items"`
}
