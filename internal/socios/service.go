package socios

import (
	"context"
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Service serves the reference lists the UI uses for filter population and
// label resolution. Lists come back sorted with Spanish collation so accented
// names interleave correctly.
type Service struct {
	repo Repository
	coll *collate.Collator
}

// NewService builds the reference Service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		coll: collate.New(language.Spanish, collate.IgnoreCase),
	}
}

func (s *Service) ListMinas(ctx context.Context) ([]Mina, error) {
	minas, err := s.repo.ListMinas(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(minas, func(i, j int) bool {
		return s.coll.CompareString(minas[i].Nombre, minas[j].Nombre) < 0
	})
	return minas, nil
}

func (s *Service) ListCompradores(ctx context.Context) ([]Comprador, error) {
	compradores, err := s.repo.ListCompradores(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(compradores, func(i, j int) bool {
		return s.coll.CompareString(compradores[i].Nombre, compradores[j].Nombre) < 0
	})
	return compradores, nil
}

func (s *Service) ListVolqueteros(ctx context.Context) ([]Volquetero, error) {
	volqueteros, err := s.repo.ListVolqueteros(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(volqueteros, func(i, j int) bool {
		return s.coll.CompareString(volqueteros[i].Nombre, volqueteros[j].Nombre) < 0
	})
	return volqueteros, nil
}

func (s *Service) ListTerceros(ctx context.Context) ([]Tercero, error) {
	terceros, err := s.repo.ListTerceros(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(terceros, func(i, j int) bool {
		return s.coll.CompareString(terceros[i].Nombre, terceros[j].Nombre) < 0
	})
	return terceros, nil
}

func (s *Service) ListCuentas(ctx context.Context) ([]Cuenta, error) {
	cuentas, err := s.repo.ListCuentas(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(cuentas, func(i, j int) bool {
		return s.coll.CompareString(cuentas[i].Nombre, cuentas[j].Nombre) < 0
	})
	return cuentas, nil
}

// Directory loads every reference list and indexes it for label resolution.
func (s *Service) Directory(ctx context.Context) (*Directory, error) {
	minas, err := s.repo.ListMinas(ctx)
	if err != nil {
		return nil, fmt.Errorf("socios: directory minas: %w", err)
	}
	compradores, err := s.repo.ListCompradores(ctx)
	if err != nil {
		return nil, fmt.Errorf("socios: directory compradores: %w", err)
	}
	volqueteros, err := s.repo.ListVolqueteros(ctx)
	if err != nil {
		return nil, fmt.Errorf("socios: directory volqueteros: %w", err)
	}
	terceros, err := s.repo.ListTerceros(ctx)
	if err != nil {
		return nil, fmt.Errorf("socios: directory terceros: %w", err)
	}
	cuentas, err := s.repo.ListCuentas(ctx)
	if err != nil {
		return nil, fmt.Errorf("socios: directory cuentas: %w", err)
	}
	return NewDirectory(minas, compradores, volqueteros, terceros, cuentas), nil
}
