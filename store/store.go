package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"online-store/assembly"
	models "online-store/model"
)

// ErrNotFound is returned when a product or cart id does not exist.
var ErrNotFound = errors.New("not found")

// ErrProductInUse is returned when deleting a product still referenced by
// cart items.
var ErrProductInUse = errors.New("product is referenced by cart items")

// foreign_key_violation
const pqForeignKeyViolation = "23503"

const productColumns = `id, name, description, price, stock, image_url, category, created_at, updated_at`

const (
	countProductsSQL = `SELECT COUNT(*) FROM products`
	listProductsSQL  = `SELECT ` + productColumns + ` FROM products ORDER BY id LIMIT $1 OFFSET $2`
	getProductSQL    = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	insertProductSQL = `INSERT INTO products (name, description, price, stock, image_url, category) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	updateProductSQL = `UPDATE products SET name = $1, description = $2, price = $3, stock = $4, image_url = $5, category = $6, updated_at = now() WHERE id = $7 RETURNING updated_at`
	deleteProductSQL = `DELETE FROM products WHERE id = $1`

	cartColumns        = `id, created_at, updated_at, total, status`
	countCartsSQL      = `SELECT COUNT(*) FROM carts`
	listCartsSQL       = `SELECT ` + cartColumns + ` FROM carts ORDER BY id LIMIT $1 OFFSET $2`
	getCartSQL         = `SELECT ` + cartColumns + ` FROM carts WHERE id = $1`
	cartExistsSQL      = `SELECT id FROM carts WHERE id = $1`
	insertCartSQL      = `INSERT INTO carts (status) VALUES ($1) RETURNING ` + cartColumns
	setCartTotalSQL    = `UPDATE carts SET total = $1 WHERE id = $2`
	updateCartSQL      = `UPDATE carts SET total = $1, status = COALESCE($2, status), updated_at = now() WHERE id = $3 RETURNING ` + cartColumns
	deleteCartSQL      = `DELETE FROM carts WHERE id = $1`
	deleteCartItemsSQL = `DELETE FROM cart_items WHERE cart_id = $1`
	insertCartItemSQL  = `INSERT INTO cart_items (cart_id, product_id, quantity, unit_price, subtotal) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	listCartItemsSQL   = `SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity, ci.unit_price, ci.subtotal,
		p.id, p.name, p.description, p.price, p.stock, p.image_url, p.category, p.created_at, p.updated_at
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = ANY($1)
		ORDER BY ci.cart_id, ci.id`
)

// ProductRow mirrors a products row, nullable columns included.
type ProductRow struct {
	ID          int64
	Name        string
	Description sql.NullString
	Price       float64
	Stock       int
	ImageURL    sql.NullString
	Category    sql.NullString
	CreatedAt   time.Time
	UpdatedAt   sql.NullTime
}

func (r *ProductRow) dest() []any {
	return []any{&r.ID, &r.Name, &r.Description, &r.Price, &r.Stock, &r.ImageURL, &r.Category, &r.CreatedAt, &r.UpdatedAt}
}

func (r ProductRow) Product() models.Product {
	return models.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: nullString(r.Description),
		Price:       r.Price,
		Stock:       r.Stock,
		ImageURL:    nullString(r.ImageURL),
		Category:    nullString(r.Category),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   nullTime(r.UpdatedAt),
	}
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

type scanner interface {
	Scan(dest ...any) error
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PoolConfig sizes the connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresStore is a Store backed by Postgres. It holds no per-request
// state; every write runs in its own transaction.
type PostgresStore struct {
	DB *sql.DB
}

func NewPostgresStore(ctx context.Context, dsn string, pool PoolConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{DB: db}, nil
}

func (s *PostgresStore) Close() error { return s.DB.Close() }

// withTx runs fn in a transaction, committing when fn succeeds and rolling
// back on any error.
func (s *PostgresStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// --- products ---

func (s *PostgresStore) ListProducts(ctx context.Context, skip, limit int) ([]models.Product, int, error) {
	var total int
	if err := s.DB.QueryRowContext(ctx, countProductsSQL).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, listProductsSQL, limit, skip)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := []models.Product{}
	for rows.Next() {
		var r ProductRow
		if err := rows.Scan(r.dest()...); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, r.Product())
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	return out, total, nil
}

func (s *PostgresStore) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	p, ok, err := lookupProduct(ctx, s.DB, id)
	if err != nil {
		return models.Product{}, err
	}
	if !ok {
		return models.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return p, nil
}

// CreateProduct inserts p and returns it with its generated id and
// creation time. p.ID and the timestamps are ignored.
func (s *PostgresStore) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	err := s.DB.QueryRowContext(ctx, insertProductSQL,
		p.Name, p.Description, p.Price, p.Stock, p.ImageURL, p.Category,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return models.Product{}, fmt.Errorf("insert product: %w", err)
	}
	p.UpdatedAt = nil
	return p, nil
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, id int64, patch models.ProductPatch) (models.Product, error) {
	var p models.Product
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		cur, ok, err := lookupProduct(ctx, tx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		p = cur
		if patch.Empty() {
			return nil
		}

		patch.Apply(&p)
		var updatedAt time.Time
		err = tx.QueryRowContext(ctx, updateProductSQL,
			p.Name, p.Description, p.Price, p.Stock, p.ImageURL, p.Category, id,
		).Scan(&updatedAt)
		if err != nil {
			return fmt.Errorf("update product %d: %w", id, err)
		}
		p.UpdatedAt = &updatedAt
		return nil
	})
	if err != nil {
		return models.Product{}, err
	}
	return p, nil
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, deleteProductSQL, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return fmt.Errorf("delete product %d: %w", id, ErrProductInUse)
		}
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	ra, _ := res.RowsAffected()
	if ra == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

// --- carts ---

func scanCart(row scanner) (models.Cart, error) {
	var (
		c         models.Cart
		updatedAt sql.NullTime
		status    string
	)
	if err := row.Scan(&c.ID, &c.CreatedAt, &updatedAt, &c.Total, &status); err != nil {
		return models.Cart{}, err
	}
	c.UpdatedAt = nullTime(updatedAt)
	c.Status = models.CartStatus(status)
	c.Items = []models.CartItem{}
	return c, nil
}

// loadItems fetches the items of the given carts joined with their
// products in a single query, keyed by cart id.
func loadItems(ctx context.Context, q querier, cartIDs []int64) (map[int64][]models.CartItem, error) {
	out := make(map[int64][]models.CartItem, len(cartIDs))
	if len(cartIDs) == 0 {
		return out, nil
	}

	rows, err := q.QueryContext(ctx, listCartItemsSQL, pq.Array(cartIDs))
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it models.CartItem
			pr ProductRow
		)
		dest := append([]any{&it.ID, &it.CartID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.Subtotal}, pr.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		it.Product = pr.Product()
		out[it.CartID] = append(out[it.CartID], it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListCarts(ctx context.Context, skip, limit int) ([]models.Cart, int, error) {
	var total int
	if err := s.DB.QueryRowContext(ctx, countCartsSQL).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count carts: %w", err)
	}

	rows, err := s.DB.QueryContext(ctx, listCartsSQL, limit, skip)
	if err != nil {
		return nil, 0, fmt.Errorf("list carts: %w", err)
	}
	carts := []models.Cart{}
	for rows.Next() {
		c, err := scanCart(rows)
		if err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("scan cart: %w", err)
		}
		carts = append(carts, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list carts: %w", err)
	}

	ids := make([]int64, len(carts))
	for i, c := range carts {
		ids[i] = c.ID
	}
	items, err := loadItems(ctx, s.DB, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range carts {
		if its, ok := items[carts[i].ID]; ok {
			carts[i].Items = its
		}
	}
	return carts, total, nil
}

func (s *PostgresStore) GetCart(ctx context.Context, id int64) (models.Cart, error) {
	c, err := scanCart(s.DB.QueryRowContext(ctx, getCartSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Cart{}, fmt.Errorf("cart %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return models.Cart{}, fmt.Errorf("get cart %d: %w", id, err)
	}

	items, err := loadItems(ctx, s.DB, []int64{id})
	if err != nil {
		return models.Cart{}, err
	}
	if its, ok := items[id]; ok {
		c.Items = its
	}
	return c, nil
}

// CreateCart inserts a cart, assembles the requested items against the
// catalog and persists them with the resulting total. Nothing is persisted
// when any step fails.
func (s *PostgresStore) CreateCart(ctx context.Context, reqs []models.ItemRequest) (models.Cart, error) {
	var cart models.Cart
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		c, err := scanCart(tx.QueryRowContext(ctx, insertCartSQL, string(models.CartActive)))
		if err != nil {
			return fmt.Errorf("insert cart: %w", err)
		}

		res, err := assembly.Assemble(ctx, txCatalog{q: tx}, reqs)
		if err != nil {
			return err
		}
		if c.Items, err = insertItems(ctx, tx, c.ID, res.Items); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, setCartTotalSQL, res.Total, c.ID); err != nil {
			return fmt.Errorf("set cart %d total: %w", c.ID, err)
		}
		c.Total = res.Total
		cart = c
		return nil
	})
	if err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

// UpdateCart replaces every item of the cart with a freshly assembled set
// and recomputes the total. A nil status leaves the status unchanged.
func (s *PostgresStore) UpdateCart(ctx context.Context, id int64, reqs []models.ItemRequest, status *models.CartStatus) (models.Cart, error) {
	var cart models.Cart
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var found int64
		err := tx.QueryRowContext(ctx, cartExistsSQL, id).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("cart %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("get cart %d: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx, deleteCartItemsSQL, id); err != nil {
			return fmt.Errorf("clear cart %d items: %w", id, err)
		}
		res, err := assembly.Assemble(ctx, txCatalog{q: tx}, reqs)
		if err != nil {
			return err
		}
		items, err := insertItems(ctx, tx, id, res.Items)
		if err != nil {
			return err
		}

		var newStatus any
		if status != nil {
			newStatus = string(*status)
		}
		c, err := scanCart(tx.QueryRowContext(ctx, updateCartSQL, res.Total, newStatus, id))
		if err != nil {
			return fmt.Errorf("update cart %d: %w", id, err)
		}
		c.Items = items
		cart = c
		return nil
	})
	if err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

func insertItems(ctx context.Context, tx *sql.Tx, cartID int64, items []models.CartItem) ([]models.CartItem, error) {
	out := make([]models.CartItem, len(items))
	for i, it := range items {
		it.CartID = cartID
		err := tx.QueryRowContext(ctx, insertCartItemSQL,
			cartID, it.ProductID, it.Quantity, it.UnitPrice, it.Subtotal,
		).Scan(&it.ID)
		if err != nil {
			return nil, fmt.Errorf("insert cart item for product %d: %w", it.ProductID, err)
		}
		out[i] = it
	}
	return out, nil
}

// DeleteCart removes the cart; its items go with it through the
// ON DELETE CASCADE foreign key.
func (s *PostgresStore) DeleteCart(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, deleteCartSQL, id)
	if err != nil {
		return fmt.Errorf("delete cart %d: %w", id, err)
	}
	ra, _ := res.RowsAffected()
	if ra == 0 {
		return fmt.Errorf("cart %d: %w", id, ErrNotFound)
	}
	return nil
}
