package authz

const (
	RoleMenuAdmin  = "menu-admin"
	RoleMenuViewer = "menu-viewer"
	RoleAnonymous  = "anonymous"
)

const (
	ActionRead  = "read"
	ActionAdmin = "admin"
)

const DomainGlobal = "global"

const (
	ObjectMenuMenus = "menu.menus"
	ObjectMenuItems = "menu.items"
	ObjectMenuTree  = "menu.tree"
)
