package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	_ "github.com/lib/pq"

	"github.com/bepro/network-deployer/pkg/logger"
)

// Token flags are TEXT holding strconv.FormatBool output so the same schema runs on postgres and
// on the in-memory ramsql driver.
const (
	schemaDeployedNetworks = `
		CREATE TABLE IF NOT EXISTS deployed_networks (
			chain_id       BIGINT PRIMARY KEY,
			chain_name     TEXT,
			network        TEXT,
			registry       TEXT
		);`
	schemaDeployedTokens = `
		CREATE TABLE IF NOT EXISTS deployed_tokens (
			chain_id       BIGINT,
			role           TEXT,
			name           TEXT,
			symbol         TEXT,
			address        TEXT,
			transactional  TEXT,
			reward         TEXT
		);`

	queryDeleteNetwork = `DELETE FROM deployed_networks WHERE chain_id = $1`
	queryDeleteTokens  = `DELETE FROM deployed_tokens WHERE chain_id = $1`
	queryInsertNetwork = `
		INSERT INTO deployed_networks (chain_id, chain_name, network, registry)
		VALUES ($1, $2, $3, $4)`
	queryInsertToken = `
		INSERT INTO deployed_tokens (chain_id, role, name, symbol, address, transactional, reward)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	querySelectNetwork = `
		SELECT chain_name, network, registry FROM deployed_networks WHERE chain_id = $1`
	querySelectTokens = `
		SELECT role, name, symbol, address, transactional, reward FROM deployed_tokens WHERE chain_id = $1`
)

var _ Persister = (*SQLPersister)(nil)

// SQLPersister writes results to the settings database. Each Persist replaces the rows of the
// result's chain in a single transaction.
type SQLPersister struct {
	db   *sql.DB
	lggr logger.Logger
}

// NewSQLPersister returns a persister over db. Migrate must be called before the first Persist.
func NewSQLPersister(db *sql.DB, lggr logger.Logger) *SQLPersister {
	return &SQLPersister{db: db, lggr: lggr}
}

// OpenPostgres opens the postgres database at dsn with lib/pq, checks the connection and creates
// the tables.
func OpenPostgres(ctx context.Context, dsn string, lggr logger.Logger) (*SQLPersister, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach settings database: %w", err)
	}

	p := NewSQLPersister(db, lggr)
	if err := p.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return p, nil
}

// Migrate creates the result tables when they do not exist.
func (p *SQLPersister) Migrate(ctx context.Context) error {
	for _, stmt := range []string{schemaDeployedNetworks, schemaDeployedTokens} {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create settings schema: %w", err)
		}
	}

	return nil
}

// Close closes the database.
func (p *SQLPersister) Close() error {
	return p.db.Close()
}

// Persist implements Persister.
func (p *SQLPersister) Persist(ctx context.Context, result Result) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return newPersistError(result, err)
	}

	if err := writeResult(ctx, tx, result); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			p.lggr.Errorw("Failed to roll back settings transaction", "error", rerr)
		}

		return newPersistError(result, err)
	}

	if err := tx.Commit(); err != nil {
		return newPersistError(result, err)
	}

	p.lggr.Infow("Persisted deployment settings",
		"chain", result.ChainName, "network", result.Network.Hex(), "registry", result.Registry.Hex())

	return nil
}

func writeResult(ctx context.Context, tx *sql.Tx, r Result) error {
	chainID := int64(r.ChainID) //nolint:gosec // chain IDs fit in int64

	for _, q := range []string{queryDeleteNetwork, queryDeleteTokens} {
		if _, err := tx.ExecContext(ctx, q, chainID); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, queryInsertNetwork,
		chainID, r.ChainName, r.Network.Hex(), r.Registry.Hex(),
	); err != nil {
		return err
	}

	for _, t := range r.Tokens() {
		if _, err := tx.ExecContext(ctx, queryInsertToken,
			chainID, string(t.Role), t.Name, t.Symbol, t.Address.Hex(),
			strconv.FormatBool(t.IsTransactional), strconv.FormatBool(t.IsReward),
		); err != nil {
			return err
		}
	}

	return nil
}

// Load reads back the result stored for chainID. ErrNoResult is returned when none is stored.
func (p *SQLPersister) Load(ctx context.Context, chainID uint64) (Result, error) {
	id := int64(chainID) //nolint:gosec // chain IDs fit in int64
	r := Result{ChainID: chainID}

	var network, registry string
	err := p.db.QueryRowContext(ctx, querySelectNetwork, id).Scan(&r.ChainName, &network, &registry)
	if errors.Is(err, sql.ErrNoRows) {
		return Result{}, fmt.Errorf("chain %d: %w", chainID, ErrNoResult)
	}
	if err != nil {
		return Result{}, err
	}
	r.Network = common.HexToAddress(network)
	r.Registry = common.HexToAddress(registry)

	rows, err := p.db.QueryContext(ctx, querySelectTokens, id)
	if err != nil {
		return Result{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var role, name, symbol, address, transactional, reward string
		if err := rows.Scan(&role, &name, &symbol, &address, &transactional, &reward); err != nil {
			return Result{}, err
		}

		info := TokenInfo{Name: name, Symbol: symbol, Address: common.HexToAddress(address)}
		if info.IsTransactional, err = strconv.ParseBool(transactional); err != nil {
			return Result{}, fmt.Errorf("token %s transactional flag: %w", address, err)
		}
		if info.IsReward, err = strconv.ParseBool(reward); err != nil {
			return Result{}, fmt.Errorf("token %s reward flag: %w", address, err)
		}
		switch Role(role) {
		case RolePayment:
			r.Payment = info
		case RoleGovernance:
			r.Governance = &info
		case RoleReward:
			r.Reward = &info
		case RoleBounty:
			r.Bounty = BountyInfo{Name: name, Symbol: symbol, Address: info.Address}
		}
	}

	return r, rows.Err()
}
