package service

import (
	"context"
	"time"

	"gestaogado/internal/dto"
	"gestaogado/internal/infra"
	"gestaogado/internal/model"
	"gestaogado/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type BoiService interface {
	Criar(ctx context.Context, req dto.CriarBoiRequest) (*dto.BoiResponse, error)
	Obter(ctx context.Context, id uuid.UUID) (*dto.BoiResponse, error)
	ListarPorLote(ctx context.Context, loteID uuid.UUID) ([]dto.BoiResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarBoiRequest) (*dto.BoiResponse, error)
	DefinirAlerta(ctx context.Context, id uuid.UUID, req dto.AlertaRequest) (*dto.BoiResponse, error)
	Excluir(ctx context.Context, id uuid.UUID) error
}

type boiService struct {
	repo     repository.BoiRepository
	loteRepo repository.LoteRepository
	pesoRepo repository.PesoRepository
	cache    *infra.Cache
}

func NewBoiService(
	repo repository.BoiRepository,
	loteRepo repository.LoteRepository,
	pesoRepo repository.PesoRepository,
	cache *infra.Cache,
) BoiService {
	return &boiService{repo: repo, loteRepo: loteRepo, pesoRepo: pesoRepo, cache: cache}
}

// Criar adds an animal to an unsold lote together with its first weighing.
func (s *boiService) Criar(ctx context.Context, req dto.CriarBoiRequest) (*dto.BoiResponse, error) {
	loteID, err := uuid.Parse(req.LoteID)
	if err != nil {
		return nil, falha(ErrDadosInvalidos, "lote_id invalido")
	}
	data, err := parseInstante(req.DataPesagem, time.Now())
	if err != nil {
		return nil, err
	}

	boi := &model.Boi{LoteID: loteID, Brinco: vazioParaNil(req.Brinco), Peso: req.Peso, Status: model.BoiAtivo}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		lote, err := s.loteRepo.LockByID(ctx, tx, loteID)
		if err != nil {
			return naoEncontrado(err, "lote nao encontrado")
		}
		if lote.Vendido() {
			return falha(ErrLoteJaVendido, "lote "+lote.Codigo+" ja foi vendido")
		}
		if err := s.repo.Create(ctx, tx, boi); err != nil {
			return err
		}
		return s.pesoRepo.Create(ctx, tx, &model.PesoHistorico{
			BoiID: boi.ID, LoteID: loteID, Peso: req.Peso, DataPesagem: data,
		})
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("boi_id", boi.ID.String()).Str("lote_id", loteID.String()).Msg("boi criado")
	s.cache.Invalidate(ctx, cachePrefixRelatorio)
	resp := boiToResponse(boi)
	return &resp, nil
}

func (s *boiService) Obter(ctx context.Context, id uuid.UUID) (*dto.BoiResponse, error) {
	boi, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, naoEncontrado(err, "boi nao encontrado")
	}
	resp := boiToResponse(boi)
	return &resp, nil
}

func (s *boiService) ListarPorLote(ctx context.Context, loteID uuid.UUID) ([]dto.BoiResponse, error) {
	if _, err := s.loteRepo.FindByID(ctx, loteID); err != nil {
		return nil, naoEncontrado(err, "lote nao encontrado")
	}
	bois, err := s.repo.ListByLote(ctx, loteID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BoiResponse, len(bois))
	for i := range bois {
		out[i] = boiToResponse(&bois[i])
	}
	return out, nil
}

// Atualizar edits tag, alert and status, and may move the animal to another
// unsold lote. Sold animals, and any animal of a sold lote, only accept tag
// and alert changes.
func (s *boiService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarBoiRequest) (*dto.BoiResponse, error) {
	var boi *model.Boi
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		var err error
		boi, err = s.repo.LockByID(ctx, tx, id)
		if err != nil {
			return naoEncontrado(err, "boi nao encontrado")
		}
		origem, err := s.loteRepo.LockByID(ctx, tx, boi.LoteID)
		if err != nil {
			return naoEncontrado(err, "lote nao encontrado")
		}
		vendido := boi.Status == model.BoiVendido || origem.Vendido()

		if req.Status != nil && *req.Status != boi.Status {
			if vendido {
				return falha(ErrConflito, "boi vendido nao pode mudar de status")
			}
			boi.Status = *req.Status
		}
		if req.LoteID != nil {
			destino, err := uuid.Parse(*req.LoteID)
			if err != nil {
				return falha(ErrDadosInvalidos, "lote_id invalido")
			}
			if destino != boi.LoteID {
				if vendido {
					return falha(ErrConflito, "boi vendido nao pode mudar de lote")
				}
				lote, err := s.loteRepo.LockByID(ctx, tx, destino)
				if err != nil {
					return naoEncontrado(err, "lote de destino nao encontrado")
				}
				if lote.Vendido() {
					return falha(ErrLoteJaVendido, "lote "+lote.Codigo+" ja foi vendido")
				}
				boi.LoteID = destino
				if err := s.pesoRepo.MoveBoi(ctx, tx, boi.ID, destino); err != nil {
					return err
				}
			}
		}
		if req.Brinco != nil {
			boi.Brinco = vazioParaNil(req.Brinco)
		}
		if req.Alerta != nil {
			boi.Alerta = vazioParaNil(req.Alerta)
		}
		return s.repo.Update(ctx, tx, boi)
	})
	if txErr != nil {
		return nil, txErr
	}
	s.cache.Invalidate(ctx, cachePrefixRelatorio)
	resp := boiToResponse(boi)
	return &resp, nil
}

// DefinirAlerta sets the field note on an animal; empty clears it.
func (s *boiService) DefinirAlerta(ctx context.Context, id uuid.UUID, req dto.AlertaRequest) (*dto.BoiResponse, error) {
	boi, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, naoEncontrado(err, "boi nao encontrado")
	}
	boi.Alerta = vazioParaNil(req.Alerta)
	if err := s.repo.Update(ctx, nil, boi); err != nil {
		return nil, err
	}
	if boi.Alerta != nil {
		log.Info().Str("boi_id", boi.ID.String()).Str("alerta", *boi.Alerta).Msg("alerta registrado")
	}
	s.cache.Invalidate(ctx, cachePrefixRelatorio)
	resp := boiToResponse(boi)
	return &resp, nil
}

// Excluir hard-deletes the animal; its weight history cascades.
func (s *boiService) Excluir(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return naoEncontrado(err, "boi nao encontrado")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cachePrefixRelatorio)
	return nil
}

func boiToResponse(b *model.Boi) dto.BoiResponse {
	return dto.BoiResponse{
		ID:        b.ID.String(),
		LoteID:    b.LoteID.String(),
		Brinco:    b.Brinco,
		Peso:      b.Peso,
		Status:    b.Status,
		Alerta:    b.Alerta,
		CreatedAt: formatInstante(b.CreatedAt),
	}
}
