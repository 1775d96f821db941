// Package testutil provee una implementación en memoria de los puertos de persistencia y un
// TxRunner con snapshot/rollback para los tests de la capa de aplicación.
//
// Las transacciones se serializan con un candado global que reemplaza a los bloqueos de fila:
// cada Run trabaja sobre una copia del estado confirmado y la publica solo si fn devuelve nil.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/Caisse-api/internal/domain/entity"
	"github.com/jhoicas/Caisse-api/internal/domain/repository"
)

type state struct {
	products  map[string]entity.Product
	movements []entity.StockMovement
	sales     map[string]entity.SaleTransaction
	saleOrder []string
	lines     []entity.SaleLine
	sessions  map[string]entity.CashSession
	accounts  map[string]entity.MemberAccount // por ID
	entries   []entity.AccountEntry
	users     map[string]entity.User
	roles     map[string][]string
	overrides []entity.PermissionOverride
}

func newState() *state {
	return &state{
		products: map[string]entity.Product{},
		sales:    map[string]entity.SaleTransaction{},
		sessions: map[string]entity.CashSession{},
		accounts: map[string]entity.MemberAccount{},
		users:    map[string]entity.User{},
		roles:    map[string][]string{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = v
	}
	c.movements = append(c.movements, s.movements...)
	for k, v := range s.sales {
		c.sales[k] = v
	}
	c.saleOrder = append(c.saleOrder, s.saleOrder...)
	c.lines = append(c.lines, s.lines...)
	for k, v := range s.sessions {
		c.sessions[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	c.entries = append(c.entries, s.entries...)
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.roles {
		c.roles[k] = append([]string(nil), v...)
	}
	c.overrides = append(c.overrides, s.overrides...)
	return c
}

// Store base de datos en memoria.
type Store struct {
	txMu   sync.Mutex // serializa transacciones (equivale a los bloqueos de fila)
	dataMu sync.Mutex // protege data
	data   *state

	faultMu sync.Mutex
	faults  map[string]error

	statsMu   sync.Mutex
	commits   int
	rollbacks int
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: newState(), faults: map[string]error{}}
}

// FailOn hace que la próxima llamada a op (por ejemplo "Sales.CreateLine") devuelva err.
func (s *Store) FailOn(op string, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.faults[op] = err
}

func (s *Store) fault(op string) error {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	if err, ok := s.faults[op]; ok {
		delete(s.faults, op)
		return err
	}
	return nil
}

// Stats devuelve el número de transacciones confirmadas y revertidas.
func (s *Store) Stats() (commits, rollbacks int) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return s.commits, s.rollbacks
}

// Repositories devuelve repositorios sin transacción que operan sobre el estado confirmado.
func (s *Store) Repositories() repository.Repositories {
	return s.bind(nil)
}

// Users devuelve el repositorio de usuarios y permisos.
func (s *Store) Users() *UserRepo {
	return &UserRepo{base{store: s}}
}

func (s *Store) bind(tx *state) repository.Repositories {
	b := base{store: s, tx: tx}
	return repository.Repositories{
		Products:  &ProductRepo{b},
		Movements: &MovementRepo{b},
		Sales:     &SaleRepo{b},
		Sessions:  &SessionRepo{b},
		Accounts:  &AccountRepo{b},
	}
}

// Run implementa ports.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	s.dataMu.Lock()
	work := s.data.clone()
	s.dataMu.Unlock()

	if err := fn(s.bind(work)); err != nil {
		s.count(false)
		return err
	}
	if err := ctx.Err(); err != nil {
		s.count(false)
		return fmt.Errorf("commit transaction: %w", err)
	}
	s.dataMu.Lock()
	s.data = work
	s.dataMu.Unlock()
	s.count(true)
	return nil
}

func (s *Store) count(committed bool) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	if committed {
		s.commits++
	} else {
		s.rollbacks++
	}
}

type base struct {
	store *Store
	tx    *state
}

// with ejecuta fn sobre la copia de la transacción o, sin transacción, sobre el estado confirmado.
func (b base) with(op string, fn func(st *state) error) error {
	if err := b.store.fault(op); err != nil {
		return err
	}
	if b.tx != nil {
		return fn(b.tx)
	}
	b.store.dataMu.Lock()
	defer b.store.dataMu.Unlock()
	return fn(b.store.data)
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
