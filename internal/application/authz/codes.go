package authz

// Códigos de permiso consultados por las rutas HTTP.
const (
	PermProductsRead     = "caisse.products.read"
	PermProductsWrite    = "caisse.products.write"
	PermStockRead        = "caisse.stock.read"
	PermStockWrite       = "caisse.stock.write"
	PermSalesRead        = "caisse.sales.read"
	PermSalesCreate      = "caisse.sales.create"
	PermSalesCancel      = "caisse.sales.cancel"
	PermSessionsOpen     = "caisse.sessions.open"
	PermSessionsOperate  = "caisse.sessions.operate"
	PermSessionsValidate = "caisse.sessions.validate"
	PermSessionsRead     = "caisse.sessions.read"
	PermAccountsRead     = "caisse.accounts.read"
	PermAccountsAdjust   = "caisse.accounts.adjust"
)
