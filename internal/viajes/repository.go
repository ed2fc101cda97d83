package viajes

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rodmar-transportes/rodmar-backend/internal/platform/db"
)

var ErrNotFound = errors.New("viaje not found")

// Repository persists trips.
type Repository interface {
	Get(ctx context.Context, id int64) (*Viaje, error)
	List(ctx context.Context, req ListViajesRequest) ([]Viaje, int, error)
	ListAll(ctx context.Context, filter BalanceFilter) ([]Viaje, error)
	CountHidden(ctx context.Context, req ListViajesRequest) (int, error)
	Create(ctx context.Context, v Viaje) (int64, error)
	Update(ctx context.Context, v Viaje) error
	SetOculto(ctx context.Context, id int64, oculto bool) error
	RestoreScope(ctx context.Context, req RestaurarRequest) (int64, error)
}

// BalanceFilter narrows the full trip set for balance computation. Hidden
// trips are always included here: balances stay stable regardless of what
// the hide/show toggle displays.
type BalanceFilter struct {
	MinaID       *int64
	CompradorID  *int64
	VolqueteroID *int64
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

// NewRepository builds a pgx-backed trip repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

const viajeColumns = `id, fecha_cargue, fecha_descargue, conductor, placa, tipo_vehiculo,
	mina_id, comprador_id, volquetero_id, peso, precio_compra, precio_venta, precio_flete,
	total_compra, total_venta, total_flete, monto_consignar, ganancia, paga_flete,
	comprobante, oculto, estado, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id int64) (*Viaje, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM viajes WHERE id = $1`, viajeColumns), id)
	v, err := scanViaje(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("viajes: get: %w", err)
	}
	return v, nil
}

func (r *repository) List(ctx context.Context, req ListViajesRequest) ([]Viaje, int, error) {
	where, args := listConditions(req.MinaID, req.CompradorID, req.VolqueteroID)
	argPos := len(args) + 1

	if req.Estado != nil {
		where = append(where, fmt.Sprintf("estado = $%d", argPos))
		args = append(args, string(*req.Estado))
		argPos++
	}
	if !req.IncludeHidden {
		where = append(where, "oculto = FALSE")
	}

	whereClause := buildWhere(where)

	var total int
	countQuery := "SELECT COUNT(*) FROM viajes " + whereClause
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("viajes: count: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM viajes %s ORDER BY fecha_cargue DESC, id DESC LIMIT $%d OFFSET $%d`,
		viajeColumns, whereClause, argPos, argPos+1)
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	args = append(args, perPage, pageOffset(req.Page, perPage))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("viajes: list: %w", err)
	}
	defer rows.Close()

	var out []Viaje
	for rows.Next() {
		v, err := scanViaje(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *v)
	}
	return out, total, rows.Err()
}

func (r *repository) ListAll(ctx context.Context, filter BalanceFilter) ([]Viaje, error) {
	where, args := listConditions(filter.MinaID, filter.CompradorID, filter.VolqueteroID)
	query := fmt.Sprintf(`SELECT %s FROM viajes %s ORDER BY id`, viajeColumns, buildWhere(where))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("viajes: list all: %w", err)
	}
	defer rows.Close()

	var out []Viaje
	for rows.Next() {
		v, err := scanViaje(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func (r *repository) CountHidden(ctx context.Context, req ListViajesRequest) (int, error) {
	where, args := listConditions(req.MinaID, req.CompradorID, req.VolqueteroID)
	where = append(where, "oculto = TRUE")

	var hidden int
	query := "SELECT COUNT(*) FROM viajes " + buildWhere(where)
	if err := r.db.QueryRow(ctx, query, args...).Scan(&hidden); err != nil {
		return 0, fmt.Errorf("viajes: count hidden: %w", err)
	}
	return hidden, nil
}

func (r *repository) Create(ctx context.Context, v Viaje) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO viajes (fecha_cargue, fecha_descargue, conductor, placa, tipo_vehiculo,
			mina_id, comprador_id, volquetero_id, peso, precio_compra, precio_venta, precio_flete,
			total_compra, total_venta, total_flete, monto_consignar, ganancia, paga_flete,
			comprobante, oculto, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, NOW(), NOW())
		RETURNING id`,
		v.FechaCargue, v.FechaDescargue, v.Conductor, v.Placa, v.TipoVehiculo,
		v.MinaID, v.CompradorID, v.VolqueteroID,
		db.Numeric(v.Peso), db.Numeric(v.PrecioCompra), db.Numeric(v.PrecioVenta), db.Numeric(v.PrecioFlete),
		db.Numeric(v.TotalCompra), db.Numeric(v.TotalVenta), db.Numeric(v.TotalFlete),
		db.Numeric(v.MontoConsignar), db.Numeric(v.Ganancia), string(v.PagaFlete),
		v.Comprobante, v.Oculto, string(v.Estado),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("viajes: create: %w", err)
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, v Viaje) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE viajes SET fecha_cargue = $2, fecha_descargue = $3, conductor = $4, placa = $5,
			tipo_vehiculo = $6, mina_id = $7, comprador_id = $8, volquetero_id = $9, peso = $10,
			precio_compra = $11, precio_venta = $12, precio_flete = $13, total_compra = $14,
			total_venta = $15, total_flete = $16, monto_consignar = $17, ganancia = $18,
			paga_flete = $19, comprobante = $20, estado = $21, updated_at = NOW()
		WHERE id = $1`,
		v.ID, v.FechaCargue, v.FechaDescargue, v.Conductor, v.Placa, v.TipoVehiculo,
		v.MinaID, v.CompradorID, v.VolqueteroID, db.Numeric(v.Peso),
		db.Numeric(v.PrecioCompra), db.Numeric(v.PrecioVenta), db.Numeric(v.PrecioFlete),
		db.Numeric(v.TotalCompra), db.Numeric(v.TotalVenta), db.Numeric(v.TotalFlete),
		db.Numeric(v.MontoConsignar), db.Numeric(v.Ganancia), string(v.PagaFlete),
		v.Comprobante, string(v.Estado),
	)
	if err != nil {
		return fmt.Errorf("viajes: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetOculto(ctx context.Context, id int64, oculto bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE viajes SET oculto = $2, updated_at = NOW() WHERE id = $1`, id, oculto)
	if err != nil {
		return fmt.Errorf("viajes: set oculto: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) RestoreScope(ctx context.Context, req RestaurarRequest) (int64, error) {
	where, args := listConditions(req.MinaID, req.CompradorID, req.VolqueteroID)
	where = append(where, "oculto = TRUE")

	query := "UPDATE viajes SET oculto = FALSE, updated_at = NOW() " + buildWhere(where)
	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("viajes: restore scope: %w", err)
	}
	return tag.RowsAffected(), nil
}

func listConditions(minaID, compradorID, volqueteroID *int64) ([]string, []interface{}) {
	var where []string
	var args []interface{}
	if minaID != nil {
		args = append(args, *minaID)
		where = append(where, fmt.Sprintf("mina_id = $%d", len(args)))
	}
	if compradorID != nil {
		args = append(args, *compradorID)
		where = append(where, fmt.Sprintf("comprador_id = $%d", len(args)))
	}
	if volqueteroID != nil {
		args = append(args, *volqueteroID)
		where = append(where, fmt.Sprintf("volquetero_id = $%d", len(args)))
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

func scanViaje(row rowScanner) (*Viaje, error) {
	var v Viaje
	var fechaDescargue pgtype.Timestamptz
	var comprobante pgtype.Text
	var peso, precioCompra, precioVenta, precioFlete pgtype.Numeric
	var totalCompra, totalVenta, totalFlete, montoConsignar, ganancia pgtype.Numeric
	var pagaFlete, estado string
	var createdAt, updatedAt pgtype.Timestamptz

	err := row.Scan(
		&v.ID, &v.FechaCargue, &fechaDescargue, &v.Conductor, &v.Placa, &v.TipoVehiculo,
		&v.MinaID, &v.CompradorID, &v.VolqueteroID, &peso, &precioCompra, &precioVenta, &precioFlete,
		&totalCompra, &totalVenta, &totalFlete, &montoConsignar, &ganancia, &pagaFlete,
		&comprobante, &v.Oculto, &estado, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if fechaDescargue.Valid {
		t := fechaDescargue.Time
		v.FechaDescargue = &t
	}
	if comprobante.Valid {
		val := comprobante.String
		v.Comprobante = &val
	}
	v.Peso = db.Decimal(peso)
	v.PrecioCompra = db.Decimal(precioCompra)
	v.PrecioVenta = db.Decimal(precioVenta)
	v.PrecioFlete = db.Decimal(precioFlete)
	v.TotalCompra = db.Decimal(totalCompra)
	v.TotalVenta = db.Decimal(totalVenta)
	v.TotalFlete = db.Decimal(totalFlete)
	v.MontoConsignar = db.Decimal(montoConsignar)
	v.Ganancia = db.Decimal(ganancia)
	v.PagaFlete = PagaFlete(pagaFlete)
	v.Estado = Estado(estado)
	v.CreatedAt = createdAt.Time
	v.UpdatedAt = updatedAt.Time
	return &v, nil
}
