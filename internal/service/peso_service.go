package service

import (
	"context"
	"sort"
	"time"

	"gestaogado/internal/dto"
	"gestaogado/internal/infra"
	"gestaogado/internal/model"
	"gestaogado/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// PesoService owns the weight history and keeps Boi.Peso equal to the
// chronologically latest record. Every change runs in a transaction holding
// the animal's row lock, so concurrent weighings of one animal serialize.
type PesoService interface {
	Registrar(ctx context.Context, boiID uuid.UUID, req dto.RegistrarPesoRequest) (*dto.PesagemResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarPesoRequest) (*dto.PesagemResponse, error)
	Excluir(ctx context.Context, id uuid.UUID) (*dto.PesagemResponse, error)
	Listar(ctx context.Context, boiID uuid.UUID) ([]dto.PesoResponse, error)
	ListarPorLote(ctx context.Context, loteID uuid.UUID) ([]dto.PesoResponse, error)
}

type pesoService struct {
	repo     repository.PesoRepository
	boiRepo  repository.BoiRepository
	loteRepo repository.LoteRepository
	cache    *infra.Cache
	now      func() time.Time
}

func NewPesoService(
	repo repository.PesoRepository,
	boiRepo repository.BoiRepository,
	loteRepo repository.LoteRepository,
	cache *infra.Cache,
) PesoService {
	return &pesoService{repo: repo, boiRepo: boiRepo, loteRepo: loteRepo, cache: cache, now: time.Now}
}

func (s *pesoService) Registrar(ctx context.Context, boiID uuid.UUID, req dto.RegistrarPesoRequest) (*dto.PesagemResponse, error) {
	if !req.Peso.IsPositive() {
		return nil, falha(ErrDadosInvalidos, "peso deve ser maior que zero")
	}
	data, err := parseInstante(req.DataPesagem, s.now())
	if err != nil {
		return nil, err
	}

	var registro *model.PesoHistorico
	var boi *model.Boi
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		boi, err = s.boiRepo.LockByID(ctx, tx, boiID)
		if err != nil {
			return naoEncontrado(err, "boi nao encontrado")
		}
		if err := pesavel(boi); err != nil {
			return err
		}
		registro = &model.PesoHistorico{BoiID: boi.ID, LoteID: boi.LoteID, Peso: req.Peso, DataPesagem: data}
		if err := s.repo.Create(ctx, tx, registro); err != nil {
			return err
		}
		return s.recalcular(ctx, tx, boi)
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("boi_id", boi.ID.String()).Str("peso", req.Peso.String()).Str("peso_atual", boi.Peso.String()).Msg("pesagem registrada")
	return s.resultado(ctx, boi, registro), nil
}

func (s *pesoService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarPesoRequest) (*dto.PesagemResponse, error) {
	atual, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, naoEncontrado(err, "registro de peso nao encontrado")
	}
	if req.Peso != nil && !req.Peso.IsPositive() {
		return nil, falha(ErrDadosInvalidos, "peso deve ser maior que zero")
	}
	var novaData *time.Time
	if req.DataPesagem != nil {
		d, err := parseInstante(*req.DataPesagem, s.now())
		if err != nil {
			return nil, err
		}
		novaData = &d
	}

	var registro *model.PesoHistorico
	var boi *model.Boi
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		boi, err = s.boiRepo.LockByID(ctx, tx, atual.BoiID)
		if err != nil {
			return naoEncontrado(err, "boi nao encontrado")
		}
		// re-read under the lock; another request may have touched it
		registro, err = s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return naoEncontrado(err, "registro de peso nao encontrado")
		}
		if req.Peso != nil {
			registro.Peso = *req.Peso
		}
		if novaData != nil {
			registro.DataPesagem = *novaData
		}
		if err := s.repo.Update(ctx, tx, registro); err != nil {
			return err
		}
		return s.recalcular(ctx, tx, boi)
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.resultado(ctx, boi, registro), nil
}

// Excluir removes one record. If it was the last one the animal keeps its
// last known weight.
func (s *pesoService) Excluir(ctx context.Context, id uuid.UUID) (*dto.PesagemResponse, error) {
	atual, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, naoEncontrado(err, "registro de peso nao encontrado")
	}

	var boi *model.Boi
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		boi, err = s.boiRepo.LockByID(ctx, tx, atual.BoiID)
		if err != nil {
			return naoEncontrado(err, "boi nao encontrado")
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.recalcular(ctx, tx, boi)
	})
	if txErr != nil {
		return nil, txErr
	}
	return s.resultado(ctx, boi, nil), nil
}

func (s *pesoService) Listar(ctx context.Context, boiID uuid.UUID) ([]dto.PesoResponse, error) {
	if _, err := s.boiRepo.FindByID(ctx, boiID); err != nil {
		return nil, naoEncontrado(err, "boi nao encontrado")
	}
	pesos, err := s.repo.ListByBoi(ctx, nil, boiID)
	if err != nil {
		return nil, err
	}
	ordenarPesosDesc(pesos)
	return pesosToResponse(pesos), nil
}

func (s *pesoService) ListarPorLote(ctx context.Context, loteID uuid.UUID) ([]dto.PesoResponse, error) {
	if _, err := s.loteRepo.FindByID(ctx, loteID); err != nil {
		return nil, naoEncontrado(err, "lote nao encontrado")
	}
	pesos, err := s.repo.ListByLote(ctx, loteID)
	if err != nil {
		return nil, err
	}
	ordenarPesosDesc(pesos)
	return pesosToResponse(pesos), nil
}

// recalcular rewrites boi.Peso from the latest record. Must run under the
// animal's row lock. With no history left the weight is left as is.
func (s *pesoService) recalcular(ctx context.Context, tx *gorm.DB, boi *model.Boi) error {
	pesos, err := s.repo.ListByBoi(ctx, tx, boi.ID)
	if err != nil {
		return err
	}
	ultimo := pesoMaisRecente(pesos)
	if ultimo == nil || ultimo.Peso.Equal(boi.Peso) {
		return nil
	}
	boi.Peso = ultimo.Peso
	return s.boiRepo.Update(ctx, tx, boi)
}

func (s *pesoService) resultado(ctx context.Context, boi *model.Boi, registro *model.PesoHistorico) *dto.PesagemResponse {
	s.cache.Invalidate(ctx, cachePrefixRelatorio)
	resp := &dto.PesagemResponse{BoiID: boi.ID.String(), PesoAtual: boi.Peso}
	if registro != nil {
		r := pesoToResponse(registro)
		resp.Registro = &r
	}
	return resp
}

// pesavel rejects weighings of dead or sold animals.
func pesavel(b *model.Boi) error {
	switch b.Status {
	case model.BoiMorto:
		return falha(ErrConflito, "boi morto nao pode ser pesado")
	case model.BoiVendido:
		return falha(ErrLoteJaVendido, "boi ja vendido nao pode ser pesado")
	}
	return nil
}

// pesoMaisRecente picks the record with the latest DataPesagem, ties broken by
// CreatedAt. Input order does not matter.
func pesoMaisRecente(pesos []model.PesoHistorico) *model.PesoHistorico {
	var best *model.PesoHistorico
	for i := range pesos {
		p := &pesos[i]
		if best == nil || maisRecente(p, best) {
			best = p
		}
	}
	return best
}

func maisRecente(a, b *model.PesoHistorico) bool {
	if !a.DataPesagem.Equal(b.DataPesagem) {
		return a.DataPesagem.After(b.DataPesagem)
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func ordenarPesosDesc(pesos []model.PesoHistorico) {
	sort.SliceStable(pesos, func(i, j int) bool { return maisRecente(&pesos[i], &pesos[j]) })
}

func pesosToResponse(pesos []model.PesoHistorico) []dto.PesoResponse {
	out := make([]dto.PesoResponse, len(pesos))
	for i := range pesos {
		out[i] = pesoToResponse(&pesos[i])
	}
	return out
}

func pesoToResponse(p *model.PesoHistorico) dto.PesoResponse {
	return dto.PesoResponse{
		ID:          p.ID.String(),
		BoiID:       p.BoiID.String(),
		LoteID:      p.LoteID.String(),
		Peso:        p.Peso,
		DataPesagem: formatInstante(p.DataPesagem),
		CreatedAt:   formatInstante(p.CreatedAt),
	}
}
