package socios

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository loads counterparty reference records.
type Repository interface {
	ListMinas(ctx context.Context) ([]Mina, error)
	ListCompradores(ctx context.Context) ([]Comprador, error)
	ListVolqueteros(ctx context.Context) ([]Volquetero, error)
	ListTerceros(ctx context.Context) ([]Tercero, error)
	ListCuentas(ctx context.Context) ([]Cuenta, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

// NewRepository builds a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) ListMinas(ctx context.Context) ([]Mina, error) {
	rows, err := r.db.Query(ctx, `SELECT id, nombre, created_at FROM minas ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("socios: list minas: %w", err)
	}
	defer rows.Close()

	var out []Mina
	for rows.Next() {
		var m Mina
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&m.ID, &m.Nombre, &createdAt); err != nil {
			return nil, err
		}
		m.CreatedAt = createdAt.Time
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repository) ListCompradores(ctx context.Context) ([]Comprador, error) {
	rows, err := r.db.Query(ctx, `SELECT id, nombre, created_at FROM compradores ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("socios: list compradores: %w", err)
	}
	defer rows.Close()

	var out []Comprador
	for rows.Next() {
		var c Comprador
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&c.ID, &c.Nombre, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt = createdAt.Time
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) ListVolqueteros(ctx context.Context) ([]Volquetero, error) {
	rows, err := r.db.Query(ctx, `SELECT id, nombre, placa, created_at FROM volqueteros ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("socios: list volqueteros: %w", err)
	}
	defer rows.Close()

	var out []Volquetero
	for rows.Next() {
		var v Volquetero
		var placa pgtype.Text
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&v.ID, &v.Nombre, &placa, &createdAt); err != nil {
			return nil, err
		}
		if placa.Valid {
			val := placa.String
			v.Placa = &val
		}
		v.CreatedAt = createdAt.Time
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *repository) ListTerceros(ctx context.Context) ([]Tercero, error) {
	rows, err := r.db.Query(ctx, `SELECT id, nombre, created_at FROM terceros ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("socios: list terceros: %w", err)
	}
	defer rows.Close()

	var out []Tercero
	for rows.Next() {
		var t Tercero
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&t.ID, &t.Nombre, &createdAt); err != nil {
			return nil, err
		}
		t.CreatedAt = createdAt.Time
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) ListCuentas(ctx context.Context) ([]Cuenta, error) {
	rows, err := r.db.Query(ctx, `SELECT id, nombre, codigo, slugs_legados, created_at FROM rodmar_cuentas ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("socios: list cuentas: %w", err)
	}
	defer rows.Close()

	var out []Cuenta
	for rows.Next() {
		var c Cuenta
		var createdAt pgtype.Timestamptz
		if err := rows.Scan(&c.ID, &c.Nombre, &c.Codigo, &c.SlugsLegados, &createdAt); err != nil {
			return nil, err
		}
		c.CreatedAt = createdAt.Time
		out = append(out, c)
	}
	return out, rows.Err()
}
