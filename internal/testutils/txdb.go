package testutils

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
)

// errNoQueries is returned if anything tries to run SQL on a NoopTxDB.
var errNoQueries = errors.New("testutils: NoopTxDB does not execute queries")

// NewNoopTxDB returns a *sql.DB whose transactions begin, commit and roll
// back without doing anything. It satisfies store.TxBeginner for services
// wired to in-memory stores, which ignore the *sql.Tx they are handed.
func NewNoopTxDB() *sql.DB {
	return sql.OpenDB(noopConnector{})
}

type noopConnector struct{}

func (noopConnector) Connect(context.Context) (driver.Conn, error) { return noopConn{}, nil }
func (noopConnector) Driver() driver.Driver                        { return noopDriver{} }

type noopDriver struct{}

func (noopDriver) Open(string) (driver.Conn, error) { return noopConn{}, nil }

type noopConn struct{}

func (noopConn) Prepare(string) (driver.Stmt, error) { return nil, errNoQueries }
func (noopConn) Close() error                        { return nil }
func (noopConn) Begin() (driver.Tx, error)           { return noopTx{}, nil }

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }
