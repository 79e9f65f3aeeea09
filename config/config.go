// Package config loads the per-chain deployment environment: deployment constants and the
// settings database connection.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"net"
	"net/url"
	"os"
	"slices"

	"github.com/spf13/viper"
)

// Env is the content of one chain's env file. Keys are the lower cased env variable names.
//
// WARNING: This data type contains sensitive fields and should not be logged.
type Env struct {
	LockAmountForNetworkCreation string `mapstructure:"deploy_lock_amount_for_network_creation"`
	LockFeePercentage            string `mapstructure:"deploy_lock_fee_percentage"`
	CloseBountyFee               string `mapstructure:"deploy_close_bounty_fee"`
	TokensCapAmount              string `mapstructure:"deploy_tokens_cap_amount"`
	DraftTime                    string `mapstructure:"deploy_draft_time"`
	DisputableTime               string `mapstructure:"deploy_disputable_time"`
	CouncilAmount                string `mapstructure:"deploy_council_amount"`

	DBUsername string `mapstructure:"next_db_username"` // Secret
	DBPassword string `mapstructure:"next_db_password"` // Secret
	DBDatabase string `mapstructure:"next_db_database"`
	DBHost     string `mapstructure:"next_db_host"`
	DBPort     string `mapstructure:"next_db_port"`
}

// envBindings maps each config key to the environment variables that can provide it.
var envBindings = map[string][]string{
	"deploy_lock_amount_for_network_creation": {"DEPLOY_LOCK_AMOUNT_FOR_NETWORK_CREATION"},
	"deploy_lock_fee_percentage":              {"DEPLOY_LOCK_FEE_PERCENTAGE"},
	"deploy_close_bounty_fee":                 {"DEPLOY_CLOSE_BOUNTY_FEE"},
	"deploy_tokens_cap_amount":                {"DEPLOY_TOKENS_CAP_AMOUNT"},
	"deploy_draft_time":                       {"DEPLOY_DRAFT_TIME"},
	"deploy_disputable_time":                  {"DEPLOY_DISPUTABLE_TIME"},
	"deploy_council_amount":                   {"DEPLOY_COUNCIL_AMOUNT"},
	"next_db_username":                        {"NEXT_DB_USERNAME"},
	"next_db_password":                        {"NEXT_DB_PASSWORD"},
	"next_db_database":                        {"NEXT_DB_DATABASE"},
	"next_db_host":                            {"NEXT_DB_HOST"},
	"next_db_port":                            {"NEXT_DB_PORT"},
}

// Load loads the env file at filePath, falling back to environment variables if the file does
// not exist or filePath is empty. Environment variables that are set override the file.
func Load(filePath string) (*Env, error) {
	v := viper.New()
	v.SetConfigType("env")

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if filePath != "" {
		if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
			v.SetConfigFile(filePath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read env file %s: %w", filePath, err)
			}
		}
	}

	cfg := &Env{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode env: %w", err)
	}

	return cfg, nil
}

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(slices.Clone(envs), 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}

// DeployConstants are the parsed deployment constants of a chain. Token amounts are kept in
// whole tokens until the token decimals are known.
type DeployConstants struct {
	LockAmount    Amount
	CouncilAmount Amount
	// TokensCap is only required when test tokens are deployed.
	TokensCap Amount

	LockFeePercentage *big.Int
	CloseBountyFee    *big.Int
	// DraftTime and DisputableTime are in seconds.
	DraftTime      *big.Int
	DisputableTime *big.Int
}

// DeployConstants validates and parses the DEPLOY_* values.
func (e *Env) DeployConstants() (DeployConstants, error) {
	var errs []error

	amount := func(name, value string) Amount {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
			return ""
		}
		a := Amount(value)
		if _, err := a.Units(0); err != nil && !errors.Is(err, errFractionalUnits) {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}

		return a
	}
	integer := func(name, value string) *big.Int {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
			return nil
		}
		n, ok := new(big.Int).SetString(value, 10)
		if !ok || n.Sign() < 0 {
			errs = append(errs, fmt.Errorf("%s: %q is not a non-negative integer", name, value))
			return nil
		}

		return n
	}

	c := DeployConstants{
		LockAmount:        amount("DEPLOY_LOCK_AMOUNT_FOR_NETWORK_CREATION", e.LockAmountForNetworkCreation),
		CouncilAmount:     amount("DEPLOY_COUNCIL_AMOUNT", e.CouncilAmount),
		LockFeePercentage: integer("DEPLOY_LOCK_FEE_PERCENTAGE", e.LockFeePercentage),
		CloseBountyFee:    integer("DEPLOY_CLOSE_BOUNTY_FEE", e.CloseBountyFee),
		DraftTime:         integer("DEPLOY_DRAFT_TIME", e.DraftTime),
		DisputableTime:    integer("DEPLOY_DISPUTABLE_TIME", e.DisputableTime),
	}
	if e.TokensCapAmount != "" {
		c.TokensCap = amount("DEPLOY_TOKENS_CAP_AMOUNT", e.TokensCapAmount)
	}

	if err := errors.Join(errs...); err != nil {
		return DeployConstants{}, fmt.Errorf("invalid deploy constants: %w", err)
	}

	return c, nil
}

const (
	defaultDBHost = "localhost"
	defaultDBPort = "54320"
)

// DatabaseURL returns the postgres connection URL of the settings database. TLS is required
// when a host is set explicitly.
func (e *Env) DatabaseURL() (string, error) {
	if e.DBDatabase == "" {
		return "", errors.New("NEXT_DB_DATABASE is required")
	}

	host, sslmode := e.DBHost, "require"
	if host == "" {
		host, sslmode = defaultDBHost, "disable"
	}
	port := e.DBPort
	if port == "" {
		port = defaultDBPort
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(host, port),
		Path:     "/" + e.DBDatabase,
		RawQuery: url.Values{"sslmode": {sslmode}}.Encode(),
	}
	if e.DBUsername != "" {
		u.User = url.UserPassword(e.DBUsername, e.DBPassword)
	}

	return u.String(), nil
}
