package repository

// Repositories agrupa los puertos atados a una misma transacción de base de datos.
type Repositories struct {
	Products  ProductRepository
	Movements StockMovementRepository
	Sales     SaleRepository
	Sessions  CashSessionRepository
	Accounts  MemberAccountRepository
}
