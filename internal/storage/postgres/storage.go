package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/yinshi/foodcourt/internal/domain/errors"
	"github.com/yinshi/foodcourt/internal/domain/model"
	"github.com/yinshi/foodcourt/internal/domain/repository"
)

const uniqueViolationCode = "23505"

// serialConflictRetries bounds the create-vs-create race on a fresh date row.
const serialConflictRetries = 3

// pgxPool is the subset of pgxpool.Pool used by repositories; tests substitute
// a pgxmock pool through it.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

type userRepository struct {
	storage *Storage
}

type catalogRepository struct {
	storage *Storage
}

type cartRepository struct {
	storage *Storage
}

type serialRepository struct {
	storage *Storage
}

type orderRepository struct {
	storage *Storage
}

type tradeRepository struct {
	storage *Storage
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository {
	return &userRepository{storage: s}
}

func (s *Storage) Catalog() repository.CatalogRepository {
	return &catalogRepository{storage: s}
}

func (s *Storage) Carts() repository.CartRepository {
	return &cartRepository{storage: s}
}

func (s *Storage) Serials() repository.SerialRepository {
	return &serialRepository{storage: s}
}

func (s *Storage) Orders() repository.OrderRepository {
	return &orderRepository{storage: s}
}

func (s *Storage) Trades() repository.TradeRepository {
	return &tradeRepository{storage: s}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS dishes (
            id SERIAL PRIMARY KEY,
            title TEXT NOT NULL,
            subtitle TEXT NOT NULL DEFAULT '',
            size INT NOT NULL DEFAULT 10,
            price TEXT NOT NULL,
            business_id BIGINT NOT NULL,
            business_name TEXT NOT NULL,
            food_court_id BIGINT NOT NULL,
            food_court_name TEXT NOT NULL,
            is_recommend BOOLEAN NOT NULL DEFAULT FALSE,
            status INT NOT NULL DEFAULT 1,
            created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (title, business_id, size)
        )`,
		`CREATE TABLE IF NOT EXISTS cart_items (
            id SERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL,
            dish_id BIGINT NOT NULL,
            quantity INT NOT NULL,
            status INT NOT NULL DEFAULT 1,
            created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (user_id, dish_id)
        )`,
		`CREATE TABLE IF NOT EXISTS serial_numbers (
            scope TEXT NOT NULL,
            date DATE NOT NULL,
            serial INT NOT NULL,
            created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (scope, date)
        )`,
		`CREATE TABLE IF NOT EXISTS pay_orders (
            id SERIAL PRIMARY KEY,
            orders_id TEXT UNIQUE NOT NULL,
            user_id BIGINT NOT NULL,
            food_court_id BIGINT NOT NULL,
            food_court_name TEXT NOT NULL,
            dishes_detail JSONB NOT NULL,
            total_amount TEXT NOT NULL,
            member_discount TEXT NOT NULL DEFAULT '0',
            other_discount TEXT NOT NULL DEFAULT '0',
            payable TEXT NOT NULL,
            payment_status INT NOT NULL DEFAULT 0,
            payment_mode INT NOT NULL DEFAULT 0,
            orders_type INT NOT NULL DEFAULT 1,
            created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            expires TIMESTAMPTZ NOT NULL,
            extend TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS consume_orders (
            id SERIAL PRIMARY KEY,
            orders_id TEXT UNIQUE NOT NULL,
            master_orders_id TEXT NOT NULL,
            user_id BIGINT NOT NULL,
            business_id BIGINT NOT NULL,
            business_name TEXT NOT NULL,
            food_court_id BIGINT NOT NULL,
            food_court_name TEXT NOT NULL,
            dishes_detail JSONB NOT NULL,
            total_amount TEXT NOT NULL,
            member_discount TEXT NOT NULL DEFAULT '0',
            other_discount TEXT NOT NULL DEFAULT '0',
            payable TEXT NOT NULL,
            payment_status INT NOT NULL DEFAULT 0,
            payment_mode INT NOT NULL DEFAULT 0,
            orders_type INT NOT NULL DEFAULT 1,
            created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            expires TIMESTAMPTZ NOT NULL,
            extend TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE TABLE IF NOT EXISTS trade_records (
            id SERIAL PRIMARY KEY,
            serial_number TEXT NOT NULL,
            orders_id TEXT NOT NULL,
            user_id BIGINT NOT NULL,
            total_amount TEXT NOT NULL,
            member_discount TEXT NOT NULL DEFAULT '0',
            other_discount TEXT NOT NULL DEFAULT '0',
            payment TEXT NOT NULL,
            payment_result TEXT NOT NULL,
            payment_mode INT NOT NULL DEFAULT 0,
            out_orders_id TEXT NOT NULL DEFAULT '',
            created TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            extend TEXT NOT NULL DEFAULT ''
        )`,
		`CREATE INDEX IF NOT EXISTS idx_pay_orders_user ON pay_orders(user_id, created DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_pay_orders_expiry ON pay_orders(expires) WHERE payment_status = 0`,
		`CREATE INDEX IF NOT EXISTS idx_consume_orders_master ON consume_orders(master_orders_id)`,
		`CREATE INDEX IF NOT EXISTS idx_trade_records_orders ON trade_records(orders_id, created DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_cart_items_user ON cart_items(user_id, updated DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// --- UserRepository implementation ---

func (r *userRepository) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	const query = `INSERT INTO users (login, password_hash) VALUES ($1, $2) RETURNING id, created_at`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, login, passwordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	u.Login = login
	u.PasswordHash = passwordHash
	return &u, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	const query = `SELECT id, login, password_hash, created_at FROM users WHERE login=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, login).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	const query = `SELECT id, login, password_hash, created_at FROM users WHERE id=$1`
	var u model.User
	err := r.storage.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Login, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// --- CatalogRepository implementation ---

func (r *catalogRepository) GetActive(ctx context.Context, dishID int64) (*model.Dish, error) {
	const query = `SELECT id, title, subtitle, size, price, business_id, business_name,
                          food_court_id, food_court_name, is_recommend, status, created, updated
                   FROM dishes WHERE id=$1 AND status=1`
	var d model.Dish
	err := r.storage.pool.QueryRow(ctx, query, dishID).Scan(
		&d.ID, &d.Title, &d.Subtitle, &d.Size, &d.Price, &d.BusinessID, &d.BusinessName,
		&d.FoodCourtID, &d.FoodCourtName, &d.IsRecommend, &d.Status, &d.Created, &d.Updated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// --- CartRepository implementation ---

func (r *cartRepository) Upsert(ctx context.Context, userID, dishID int64, quantity int) (*model.CartItem, error) {
	const query = `INSERT INTO cart_items (user_id, dish_id, quantity, status)
                   VALUES ($1, $2, $3, 1)
                   ON CONFLICT (user_id, dish_id) DO UPDATE
                   SET quantity = CASE WHEN cart_items.status = 1
                                       THEN cart_items.quantity + EXCLUDED.quantity
                                       ELSE EXCLUDED.quantity END,
                       status = 1,
                       updated = NOW()
                   RETURNING id, quantity, status, created, updated`
	item := model.CartItem{UserID: userID, DishID: dishID}
	err := r.storage.pool.QueryRow(ctx, query, userID, dishID, quantity).Scan(
		&item.ID, &item.Quantity, &item.Status, &item.Created, &item.Updated,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) ListActive(ctx context.Context, userID int64) ([]model.CartItem, error) {
	const query = `SELECT id, user_id, dish_id, quantity, status, created, updated
                   FROM cart_items WHERE user_id=$1 AND status=1 ORDER BY updated DESC`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.CartItem
	for rows.Next() {
		var item model.CartItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.DishID, &item.Quantity, &item.Status, &item.Created, &item.Updated); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, userID, dishID int64, quantity int) error {
	const query = `UPDATE cart_items SET quantity=$3, updated=NOW()
                   WHERE user_id=$1 AND dish_id=$2 AND status=1`
	tag, err := r.storage.pool.Exec(ctx, query, userID, dishID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *cartRepository) Remove(ctx context.Context, userID, dishID int64) error {
	const query = `UPDATE cart_items SET status=2, updated=NOW()
                   WHERE user_id=$1 AND dish_id=$2 AND status=1`
	tag, err := r.storage.pool.Exec(ctx, query, userID, dishID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// --- SerialRepository implementation ---

// Next issues the next per-date sequence number for scope. The counter row is
// read under FOR UPDATE so concurrent callers for the same date queue behind
// the incrementing writer. A missing row is created with serial 1; losing that
// insert race surfaces as a unique violation on the composite key and the
// whole transaction is retried against the now-existing row.
func (r *serialRepository) Next(ctx context.Context, scope string, date time.Time) (int, error) {
	day := date.UTC().Truncate(24 * time.Hour)

	var lastErr error
	for attempt := 0; attempt < serialConflictRetries; attempt++ {
		serial, err := r.nextOnce(ctx, scope, day)
		if err == nil {
			return serial, nil
		}
		if !isUniqueViolation(err) {
			return 0, err
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 5 * time.Millisecond):
		}
	}

	r.storage.logger.Error("serial counter contention exhausted retries",
		slog.String("scope", scope), slog.String("error", lastErr.Error()))
	return 0, domainErrors.ErrConflict
}

func (r *serialRepository) nextOnce(ctx context.Context, scope string, day time.Time) (int, error) {
	var serial int
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const selectQuery = `SELECT serial FROM serial_numbers WHERE scope=$1 AND date=$2 FOR UPDATE`
		var current int
		err := tx.QueryRow(ctx, selectQuery, scope, day).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			const insertQuery = `INSERT INTO serial_numbers (scope, date, serial) VALUES ($1, $2, 1)`
			if _, err := tx.Exec(ctx, insertQuery, scope, day); err != nil {
				return err
			}
			serial = 1
			return nil
		}
		if err != nil {
			return err
		}

		serial = current + 1
		const updateQuery = `UPDATE serial_numbers SET serial=$3, updated=NOW() WHERE scope=$1 AND date=$2`
		if _, err := tx.Exec(ctx, updateQuery, scope, day, serial); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return serial, nil
}

// --- OrderRepository implementation ---

const payOrderColumns = `id, orders_id, user_id, food_court_id, food_court_name, dishes_detail,
                         total_amount, member_discount, other_discount, payable,
                         payment_status, payment_mode, orders_type, created, updated, expires, extend`

func scanPayOrder(row pgx.Row) (*model.PayOrder, error) {
	var o model.PayOrder
	var detail []byte
	err := row.Scan(
		&o.ID, &o.OrdersID, &o.UserID, &o.FoodCourtID, &o.FoodCourtName, &detail,
		&o.TotalAmount, &o.MemberDiscount, &o.OtherDiscount, &o.Payable,
		&o.PaymentStatus, &o.PaymentMode, &o.OrdersType, &o.Created, &o.Updated, &o.Expires, &o.Extend,
	)
	if err != nil {
		return nil, err
	}
	if len(detail) > 0 {
		if err := json.Unmarshal(detail, &o.DishesDetail); err != nil {
			return nil, fmt.Errorf("decode dishes detail: %w", err)
		}
	}
	return &o, nil
}

func (r *orderRepository) CreateMaster(ctx context.Context, master *model.PayOrder, subs []model.ConsumeOrder) error {
	masterDetail, err := json.Marshal(master.DishesDetail)
	if err != nil {
		return fmt.Errorf("encode dishes detail: %w", err)
	}

	return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const insertMaster = `INSERT INTO pay_orders
            (orders_id, user_id, food_court_id, food_court_name, dishes_detail,
             total_amount, member_discount, other_discount, payable,
             payment_status, payment_mode, orders_type, created, updated, expires, extend)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13, $14, $15)
            RETURNING id`
		err := tx.QueryRow(ctx, insertMaster,
			master.OrdersID, master.UserID, master.FoodCourtID, master.FoodCourtName, masterDetail,
			master.TotalAmount, master.MemberDiscount, master.OtherDiscount, master.Payable,
			master.PaymentStatus, master.PaymentMode, master.OrdersType,
			master.Created, master.Expires, master.Extend,
		).Scan(&master.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return domainErrors.ErrAlreadyExists
			}
			return err
		}

		const insertSub = `INSERT INTO consume_orders
            (orders_id, master_orders_id, user_id, business_id, business_name,
             food_court_id, food_court_name, dishes_detail,
             total_amount, member_discount, other_discount, payable,
             payment_status, payment_mode, orders_type, created, updated, expires, extend)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16, $17, $18)
            RETURNING id`
		for i := range subs {
			sub := &subs[i]
			subDetail, err := json.Marshal(sub.DishesDetail)
			if err != nil {
				return fmt.Errorf("encode sub dishes detail: %w", err)
			}
			err = tx.QueryRow(ctx, insertSub,
				sub.OrdersID, sub.MasterOrdersID, sub.UserID, sub.BusinessID, sub.BusinessName,
				sub.FoodCourtID, sub.FoodCourtName, subDetail,
				sub.TotalAmount, sub.MemberDiscount, sub.OtherDiscount, sub.Payable,
				sub.PaymentStatus, sub.PaymentMode, sub.OrdersType,
				sub.Created, sub.Expires, sub.Extend,
			).Scan(&sub.ID)
			if err != nil {
				if isUniqueViolation(err) {
					return domainErrors.ErrAlreadyExists
				}
				return err
			}
		}
		return nil
	})
}

func (r *orderRepository) GetMaster(ctx context.Context, ordersID string) (*model.PayOrder, error) {
	query := `SELECT ` + payOrderColumns + ` FROM pay_orders WHERE orders_id=$1`
	order, err := scanPayOrder(r.storage.pool.QueryRow(ctx, query, ordersID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID int64) ([]model.PayOrder, error) {
	query := `SELECT ` + payOrderColumns + ` FROM pay_orders WHERE user_id=$1 ORDER BY orders_id DESC`
	rows, err := r.storage.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.PayOrder
	for rows.Next() {
		order, err := scanPayOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) ListSubOrders(ctx context.Context, masterOrdersID string) ([]model.ConsumeOrder, error) {
	const query = `SELECT id, orders_id, master_orders_id, user_id, business_id, business_name,
                          food_court_id, food_court_name, dishes_detail,
                          total_amount, member_discount, other_discount, payable,
                          payment_status, payment_mode, orders_type, created, updated, expires, extend
                   FROM consume_orders WHERE master_orders_id=$1 ORDER BY business_id`
	rows, err := r.storage.pool.Query(ctx, query, masterOrdersID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.ConsumeOrder
	for rows.Next() {
		var o model.ConsumeOrder
		var detail []byte
		err := rows.Scan(
			&o.ID, &o.OrdersID, &o.MasterOrdersID, &o.UserID, &o.BusinessID, &o.BusinessName,
			&o.FoodCourtID, &o.FoodCourtName, &detail,
			&o.TotalAmount, &o.MemberDiscount, &o.OtherDiscount, &o.Payable,
			&o.PaymentStatus, &o.PaymentMode, &o.OrdersType, &o.Created, &o.Updated, &o.Expires, &o.Extend,
		)
		if err != nil {
			return nil, err
		}
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &o.DishesDetail); err != nil {
				return nil, fmt.Errorf("decode sub dishes detail: %w", err)
			}
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Settle performs the at-most-once payment transition. The master row is read
// under FOR UPDATE so racing callbacks serialize; only a stored UNPAID order
// may move, everything else reports ErrAlreadySettled. A stale unpaid order is
// rewritten to expired inside the same critical section instead of settling.
func (r *orderRepository) Settle(ctx context.Context, ordersID string, status model.PaymentStatus, mode model.PaymentMode) (*model.PayOrder, error) {
	return r.settle(ctx, ordersID, status, mode, false)
}

// SettleLate applies a payment the gateway confirmed after the local expiry
// cutoff. The expiry guard is skipped; everything else matches Settle, so a
// racing callback or sweep still loses with ErrAlreadySettled.
func (r *orderRepository) SettleLate(ctx context.Context, ordersID string, mode model.PaymentMode) (*model.PayOrder, error) {
	return r.settle(ctx, ordersID, model.PaymentStatusPaid, mode, true)
}

func (r *orderRepository) settle(ctx context.Context, ordersID string, status model.PaymentStatus, mode model.PaymentMode, allowOverdue bool) (*model.PayOrder, error) {
	var settled *model.PayOrder
	var rejected error
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		query := `SELECT ` + payOrderColumns + ` FROM pay_orders WHERE orders_id=$1 FOR UPDATE`
		order, err := scanPayOrder(tx.QueryRow(ctx, query, ordersID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}

		if order.PaymentStatus != model.PaymentStatusUnpaid {
			rejected = domainErrors.ErrAlreadySettled
			return nil
		}

		// A stale unpaid order is rewritten to expired; the rejection must
		// not roll back that write, so it travels outside the closure error.
		if !allowOverdue && !time.Now().Before(order.Expires) {
			if err := expireTx(ctx, tx, ordersID); err != nil {
				return err
			}
			rejected = domainErrors.ErrAlreadySettled
			return nil
		}

		const updateMaster = `UPDATE pay_orders SET payment_status=$2, payment_mode=$3, updated=NOW()
                              WHERE orders_id=$1`
		if _, err := tx.Exec(ctx, updateMaster, ordersID, status, mode); err != nil {
			return err
		}

		subStatus := model.PaymentStatusAwaitingFulfillment
		if status == model.PaymentStatusFailed {
			subStatus = model.PaymentStatusFailed
		}
		const updateSubs = `UPDATE consume_orders SET payment_status=$2, payment_mode=$3, updated=NOW()
                            WHERE master_orders_id=$1 AND payment_status=0`
		if _, err := tx.Exec(ctx, updateSubs, ordersID, subStatus, mode); err != nil {
			return err
		}

		order.PaymentStatus = status
		order.PaymentMode = mode
		settled = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	if rejected != nil {
		return nil, rejected
	}
	return settled, nil
}

func (r *orderRepository) ListOverdue(ctx context.Context, limit int) ([]model.PayOrder, error) {
	query := `SELECT ` + payOrderColumns + ` FROM pay_orders
              WHERE payment_status=0 AND expires <= NOW()
              ORDER BY expires LIMIT $1`
	rows, err := r.storage.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.PayOrder
	for rows.Next() {
		order, err := scanPayOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) ExpireOverdue(ctx context.Context, ordersID string) (bool, error) {
	expired := false
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		const updateMaster = `UPDATE pay_orders SET payment_status=400, updated=NOW()
                              WHERE orders_id=$1 AND payment_status=0 AND expires <= NOW()`
		tag, err := tx.Exec(ctx, updateMaster, ordersID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			// Settled or already swept by a concurrent caller.
			return nil
		}
		const updateSubs = `UPDATE consume_orders SET payment_status=400, updated=NOW()
                            WHERE master_orders_id=$1 AND payment_status=0`
		if _, err := tx.Exec(ctx, updateSubs, ordersID); err != nil {
			return err
		}
		expired = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return expired, nil
}

func expireTx(ctx context.Context, tx pgx.Tx, ordersID string) error {
	const updateMaster = `UPDATE pay_orders SET payment_status=400, updated=NOW() WHERE orders_id=$1`
	if _, err := tx.Exec(ctx, updateMaster, ordersID); err != nil {
		return err
	}
	const updateSubs = `UPDATE consume_orders SET payment_status=400, updated=NOW()
                        WHERE master_orders_id=$1 AND payment_status=0`
	if _, err := tx.Exec(ctx, updateSubs, ordersID); err != nil {
		return err
	}
	return nil
}

// --- TradeRepository implementation ---

func (r *tradeRepository) Record(ctx context.Context, record *model.TradeRecord) error {
	const query = `INSERT INTO trade_records
        (serial_number, orders_id, user_id, total_amount, member_discount, other_discount,
         payment, payment_result, payment_mode, out_orders_id, extend)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING id, created`
	return r.storage.pool.QueryRow(ctx, query,
		record.SerialNumber, record.OrdersID, record.UserID,
		record.TotalAmount, record.MemberDiscount, record.OtherDiscount,
		record.Payment, record.PaymentResult, record.PaymentMode,
		record.OutOrdersID, record.Extend,
	).Scan(&record.ID, &record.Created)
}

func (r *tradeRepository) ListByOrder(ctx context.Context, ordersID string) ([]model.TradeRecord, error) {
	const query = `SELECT id, serial_number, orders_id, user_id, total_amount, member_discount,
                          other_discount, payment, payment_result, payment_mode, out_orders_id, created, extend
                   FROM trade_records WHERE orders_id=$1 ORDER BY created DESC`
	rows, err := r.storage.pool.Query(ctx, query, ordersID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.TradeRecord
	for rows.Next() {
		var rec model.TradeRecord
		err := rows.Scan(
			&rec.ID, &rec.SerialNumber, &rec.OrdersID, &rec.UserID, &rec.TotalAmount,
			&rec.MemberDiscount, &rec.OtherDiscount, &rec.Payment, &rec.PaymentResult,
			&rec.PaymentMode, &rec.OutOrdersID, &rec.Created, &rec.Extend,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
