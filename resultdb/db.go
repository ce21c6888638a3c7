// Package resultdb stores computed descriptors in a SQL Server table.
package resultdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	"github.com/google/uuid"

	"github.com/RoanBrand/AlloyCalc/config"
	"github.com/RoanBrand/AlloyCalc/descriptor"
	"github.com/RoanBrand/AlloyCalc/log"
)

// Table columns, in insert order.
var columns = []string{
	"BatchID", "DateTimeStamp", "Elements", "MolarRatios",
	"Enthalpy", "StdEnthalpy", "Delta", "Omega", "Entropy",
	"Tm", "StdTm", "X", "StdX", "VEC", "StdVEC", "Density", "Price",
}

// Row is one stored result. Rows of the same batch run share a BatchID.
type Row struct {
	BatchID   uuid.UUID
	TimeStamp time.Time
	Input     descriptor.Input
	Result    descriptor.Result
}

// NewRows returns the rows of the successful batch results under a new
// batch id. Failed inputs are not stored.
func NewRows(results []descriptor.BatchResult, now time.Time) []Row {
	id := uuid.New()
	rows := make([]Row, 0, len(results))
	for _, br := range results {
		if br.Err != nil {
			continue
		}
		rows = append(rows, Row{BatchID: id, TimeStamp: now, Input: br.Input, Result: br.Result})
	}
	return rows
}

type DB struct {
	table      string
	db         *sql.DB
	connString string
	debug      bool
}

// Setup prepares the connection to the configured result database. A failed
// first connection is logged and retried on insert.
func Setup(conf *config.Config) *DB {
	c := &conf.ResultDatabase

	rdb := &DB{
		table:      c.Table,
		connString: fmt.Sprintf("server=%s;user id=%s;password=%s;database=%s", c.Address, c.User, c.Password, c.Database),
		debug:      conf.DebugMode,
	}

	if err := rdb.openDB(); err != nil {
		log.Println(err)
	}

	return rdb
}

func (rdb *DB) Stop() error {
	if rdb.db == nil {
		return nil
	}

	if err := rdb.db.Close(); err != nil {
		return fmt.Errorf("failed closing result DB: %w", err)
	}

	return nil
}

func (rdb *DB) openDB() error {
	db, err := sql.Open("mssql", rdb.connString)
	if err != nil {
		return fmt.Errorf("failed opening result DB: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed pinging after opening result DB: %w", err)
	}

	rdb.db = db
	return nil
}

// InsertResults inserts rows in a single transaction. Nothing is stored if
// any insert fails.
func (rdb *DB) InsertResults(ctx context.Context, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	if rdb.db == nil {
		if err := rdb.openDB(); err != nil {
			return err
		}
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	q := insertQuery(rdb.table)
	if rdb.debug {
		log.Debug("result DB query", "query", q, "rows", len(rows))
	}

	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("error preparing insert statement: %w", err)
	}
	defer stmt.Close()

	for i := range rows {
		if _, err = stmt.ExecContext(ctx, rows[i].args()...); err != nil {
			tx.Rollback()
			return fmt.Errorf("error inserting %s: %w", strings.Join(rows[i].Input.Symbols, "-"), err)
		}
	}

	if err = tx.Commit(); err != nil {
		tx.Rollback()
		return err
	}

	return nil
}

func insertQuery(table string) string {
	qry := strings.Builder{}
	qry.WriteString(`INSERT INTO "`)
	qry.WriteString(table)
	qry.WriteString(`" (`)
	for i, c := range columns {
		if i > 0 {
			qry.WriteString(", ")
		}
		qry.WriteByte('"')
		qry.WriteString(c)
		qry.WriteByte('"')
	}
	qry.WriteString(") VALUES (")
	for i := range columns {
		if i > 0 {
			qry.WriteString(", ")
		}
		fmt.Fprintf(&qry, "@p%d", i+1)
	}
	qry.WriteString(");")
	return qry.String()
}

func (r *Row) args() []interface{} {
	res := &r.Result

	ratios := make([]string, len(r.Input.Amounts))
	for i, a := range r.Input.Amounts {
		ratios[i] = fmt.Sprint(a)
	}

	var price sql.NullFloat64
	price.Float64, price.Valid = res.Price.Value()

	return []interface{}{
		r.BatchID.String(),
		// DB column is DATETIME, with no timezone
		r.TimeStamp.Format("2006-01-02 15:04:05"),
		strings.Join(r.Input.Symbols, "-"),
		strings.Join(ratios, "-"),
		res.MixingEnthalpy,
		res.EnthalpySpread,
		res.SizeMismatch,
		res.Omega,
		res.MixingEntropy,
		res.MeanMeltingPoint,
		res.MeltingPointSpread,
		res.MeanElectronegativity,
		res.ElectronegativitySpread,
		res.MeanVEC,
		res.VECSpread,
		res.Density,
		price,
	}
}
