package transacciones

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rodmar-transportes/rodmar-backend/internal/platform/db"
	"github.com/rodmar-transportes/rodmar-backend/internal/socios"
)

var ErrNotFound = errors.New("transaccion not found")

// Repository persists transactions.
type Repository interface {
	Get(ctx context.Context, id int64) (*Transaccion, error)
	List(ctx context.Context, req ListTransaccionesRequest) ([]Transaccion, int, error)
	ListAll(ctx context.Context, filter BalanceFilter) ([]Transaccion, error)
	CountHidden(ctx context.Context, req ListTransaccionesRequest) (int, error)
	Create(ctx context.Context, t Transaccion) (int64, error)
	Update(ctx context.Context, t Transaccion) error
	Delete(ctx context.Context, id int64) error
	SetOculto(ctx context.Context, id int64, oculto bool) error
	RestoreScope(ctx context.Context, socio *Parte, cuentaRefs []string) (int64, error)
	InTx(ctx context.Context, fn func(Repository) error) error
}

// BalanceFilter selects the transactions feeding one balance computation.
// Hidden rows are always included; pending exclusion happens in the balance
// math, not here, so the integrity job sees everything.
type BalanceFilter struct {
	Socio      *Parte
	CuentaRefs []string
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository builds a pgx-backed transaction repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

const transaccionColumns = `id, origen_tipo, origen_id, destino_tipo, destino_id, monto, fecha,
	metodo_pago, concepto, comprobante, comentario, oculto, estado, created_at, updated_at`

// InTx runs fn against a repository bound to one transaction, so a
// read-modify-write like completing a pending request cannot interleave
// with a concurrent edit of the same row.
func (r *repository) InTx(ctx context.Context, fn func(Repository) error) error {
	if r.pool == nil {
		return fn(r)
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(&repository{db: tx, pool: r.pool})
	})
}

func (r *repository) Get(ctx context.Context, id int64) (*Transaccion, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM transacciones WHERE id = $1`, transaccionColumns), id)
	t, err := scanTransaccion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("transacciones: get: %w", err)
	}
	return t, nil
}

func (r *repository) List(ctx context.Context, req ListTransaccionesRequest) ([]Transaccion, int, error) {
	where, args := matchConditions(req.Socio, req.CuentaRefs)

	if req.Estado != nil {
		args = append(args, string(*req.Estado))
		where = append(where, fmt.Sprintf("estado = $%d", len(args)))
	}
	if !req.IncludeHidden {
		where = append(where, "oculto = FALSE")
	}

	whereClause := buildWhere(where)

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM transacciones "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("transacciones: count: %w", err)
	}

	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM transacciones %s ORDER BY fecha DESC, id DESC LIMIT $%d OFFSET $%d`,
		transaccionColumns, whereClause, len(args)+1, len(args)+2)
	args = append(args, perPage, pageOffset(req.Page, perPage))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("transacciones: list: %w", err)
	}
	defer rows.Close()

	var out []Transaccion
	for rows.Next() {
		t, err := scanTransaccion(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *t)
	}
	return out, total, rows.Err()
}

func (r *repository) ListAll(ctx context.Context, filter BalanceFilter) ([]Transaccion, error) {
	where, args := matchConditions(filter.Socio, filter.CuentaRefs)
	query := fmt.Sprintf(`SELECT %s FROM transacciones %s ORDER BY id`, transaccionColumns, buildWhere(where))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("transacciones: list all: %w", err)
	}
	defer rows.Close()

	var out []Transaccion
	for rows.Next() {
		t, err := scanTransaccion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *repository) CountHidden(ctx context.Context, req ListTransaccionesRequest) (int, error) {
	where, args := matchConditions(req.Socio, req.CuentaRefs)
	where = append(where, "oculto = TRUE")

	var hidden int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM transacciones "+buildWhere(where), args...).Scan(&hidden); err != nil {
		return 0, fmt.Errorf("transacciones: count hidden: %w", err)
	}
	return hidden, nil
}

func (r *repository) Create(ctx context.Context, t Transaccion) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO transacciones (origen_tipo, origen_id, destino_tipo, destino_id, monto, fecha,
			metodo_pago, concepto, comprobante, comentario, oculto, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
		RETURNING id`,
		string(t.Origen.Tipo), NormalizaID(t.Origen.ID), string(t.Destino.Tipo), NormalizaID(t.Destino.ID),
		db.Numeric(t.Monto), t.Fecha, t.MetodoPago, t.Concepto, t.Comprobante, t.Comentario,
		t.Oculto, string(t.Estado),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("transacciones: create: %w", err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, t Transaccion) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE transacciones SET origen_tipo = $2, origen_id = $3, destino_tipo = $4, destino_id = $5,
			monto = $6, fecha = $7, metodo_pago = $8, concepto = $9, comprobante = $10,
			comentario = $11, estado = $12, updated_at = NOW()
		WHERE id = $1`,
		t.ID, string(t.Origen.Tipo), NormalizaID(t.Origen.ID), string(t.Destino.Tipo), NormalizaID(t.Destino.ID),
		db.Numeric(t.Monto), t.Fecha, t.MetodoPago, t.Concepto, t.Comprobante, t.Comentario, string(t.Estado),
	)
	if err != nil {
		return fmt.Errorf("transacciones: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM transacciones WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("transacciones: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetOculto(ctx context.Context, id int64, oculto bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE transacciones SET oculto = $2, updated_at = NOW() WHERE id = $1`, id, oculto)
	if err != nil {
		return fmt.Errorf("transacciones: set oculto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) RestoreScope(ctx context.Context, socio *Parte, cuentaRefs []string) (int64, error) {
	where, args := matchConditions(socio, cuentaRefs)
	where = append(where, "oculto = TRUE")

	tag, err := r.db.Exec(ctx, "UPDATE transacciones SET oculto = FALSE, updated_at = NOW() "+buildWhere(where), args...)
	if err != nil {
		return 0, fmt.Errorf("transacciones: restore scope: %w", err)
	}
	return tag.RowsAffected(), nil
}

// matchConditions builds the origen-or-destino predicate for a counterparty
// or a cuenta reference set. Stored ids are normalised at write time, so the
// parameters are normalised the same way before comparison.
func matchConditions(socio *Parte, cuentaRefs []string) ([]string, []interface{}) {
	var where []string
	var args []interface{}
	if socio != nil {
		args = append(args, string(socio.Tipo))
		tipoArg := len(args)
		args = append(args, NormalizaID(socio.ID))
		idArg := len(args)
		where = append(where, fmt.Sprintf(
			"((origen_tipo = $%d AND origen_id = $%d) OR (destino_tipo = $%d AND destino_id = $%d))",
			tipoArg, idArg, tipoArg, idArg))
	}
	if len(cuentaRefs) > 0 {
		normalised := make([]string, 0, len(cuentaRefs))
		for _, ref := range cuentaRefs {
			normalised = append(normalised, NormalizaID(ref))
		}
		args = append(args, normalised)
		refArg := len(args)
		// banco rows address the same cuenta records under an older type name.
		where = append(where, fmt.Sprintf(
			"((origen_tipo IN ('cuenta', 'banco') AND origen_id = ANY($%d)) OR (destino_tipo IN ('cuenta', 'banco') AND destino_id = ANY($%d)))",
			refArg, refArg))
	}
	return where, args
}

func buildWhere(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	clause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		clause += " AND " + conditions[i]
	}
	return clause
}

func pageOffset(page, perPage int) int {
	if page <= 1 {
		return 0
	}
	return (page - 1) * perPage
}

type rowScanner interface {
	Scan(dest ...any) error
}

// partyType tolerates unknown stored types instead of failing the scan;
// rendering falls back to Desconocido labels for them.
func partyType(s string) socios.PartyType {
	if t, err := socios.ParsePartyType(s); err == nil {
		return t
	}
	return socios.PartyType(s)
}

func scanTransaccion(row rowScanner) (*Transaccion, error) {
	var t Transaccion
	var origenTipo, destinoTipo string
	var monto pgtype.Numeric
	var comprobante, comentario pgtype.Text
	var estado string
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&t.ID, &origenTipo, &t.Origen.ID, &destinoTipo, &t.Destino.ID, &monto, &t.Fecha,
		&t.MetodoPago, &t.Concepto, &comprobante, &comentario, &t.Oculto, &estado,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.Origen.Tipo = partyType(origenTipo)
	t.Destino.Tipo = partyType(destinoTipo)
	t.Monto = db.Decimal(monto)
	if comprobante.Valid {
		val := comprobante.String
		t.Comprobante = &val
	}
	if comentario.Valid {
		val := comentario.String
		t.Comentario = &val
	}
	t.Estado = Estado(estado)
	t.CreatedAt = createdAt.Time
	t.UpdatedAt = updatedAt.Time
	return &t, nil
}
