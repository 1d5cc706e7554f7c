package service

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"gestaogado/internal/dto"
	"gestaogado/internal/infra"
	"gestaogado/internal/model"
	"gestaogado/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type LoteService interface {
	Criar(ctx context.Context, req dto.CriarLoteRequest) (*dto.LoteResponse, error)
	Obter(ctx context.Context, id uuid.UUID) (*dto.LoteResponse, error)
	Listar(ctx context.Context, filter dto.LoteFilter) ([]dto.LoteResponse, error)
	Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarLoteRequest) (*dto.LoteResponse, error)
	RegistrarVacinacao(ctx context.Context, id uuid.UUID, req dto.VacinacaoRequest) (*dto.LoteResponse, error)
	Excluir(ctx context.Context, id uuid.UUID) error
}

type loteService struct {
	repo       repository.LoteRepository
	boiRepo    repository.BoiRepository
	pesoRepo   repository.PesoRepository
	vendaRepo  repository.VendaRepository
	configRepo repository.ConfiguracaoRepository
	cache      *infra.Cache
}

func NewLoteService(
	repo repository.LoteRepository,
	boiRepo repository.BoiRepository,
	pesoRepo repository.PesoRepository,
	vendaRepo repository.VendaRepository,
	configRepo repository.ConfiguracaoRepository,
	cache *infra.Cache,
) LoteService {
	return &loteService{
		repo:       repo,
		boiRepo:    boiRepo,
		pesoRepo:   pesoRepo,
		vendaRepo:  vendaRepo,
		configRepo: configRepo,
		cache:      cache,
	}
}

// Criar stores the lote, its initial animals and one weighing per animal dated
// at the arrival day, all in one transaction.
func (s *loteService) Criar(ctx context.Context, req dto.CriarLoteRequest) (*dto.LoteResponse, error) {
	chegada, err := parseData(req.DataChegada)
	if err != nil {
		return nil, err
	}
	codigo := strings.TrimSpace(req.Codigo)
	if err := s.codigoLivre(ctx, codigo, uuid.Nil); err != nil {
		return nil, err
	}

	lote := &model.Lote{
		Codigo:           codigo,
		DataChegada:      chegada,
		Custo:            req.Custo,
		GastoAlimentacao: req.GastoAlimentacao,
		Observacao:       req.Observacao,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.Create(ctx, tx, lote); err != nil {
			return err
		}
		for _, nb := range req.Bois {
			boi := &model.Boi{LoteID: lote.ID, Brinco: nb.Brinco, Peso: nb.Peso, Status: model.BoiAtivo}
			if err := s.boiRepo.Create(ctx, tx, boi); err != nil {
				return err
			}
			registro := &model.PesoHistorico{BoiID: boi.ID, LoteID: lote.ID, Peso: nb.Peso, DataPesagem: chegada}
			if err := s.pesoRepo.Create(ctx, tx, registro); err != nil {
				return err
			}
			lote.Bois = append(lote.Bois, *boi)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().Str("lote_id", lote.ID.String()).Str("codigo", lote.Codigo).Int("bois", len(lote.Bois)).Msg("lote criado")
	s.cache.Invalidate(ctx, cachePrefixRelatorio)
	resp := resumoLote(lote, pesoMedioVenda(ctx, s.configRepo))
	return &resp, nil
}

func (s *loteService) Obter(ctx context.Context, id uuid.UUID) (*dto.LoteResponse, error) {
	lote, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, naoEncontrado(err, "lote nao encontrado")
	}
	resp := resumoLote(lote, pesoMedioVenda(ctx, s.configRepo))
	return &resp, nil
}

func (s *loteService) Listar(ctx context.Context, filter dto.LoteFilter) ([]dto.LoteResponse, error) {
	q := repository.LoteQuery{Busca: strings.TrimSpace(filter.Busca)}
	switch filter.Status {
	case "vendido":
		v := true
		q.Vendido = &v
	case "disponivel":
		v := false
		q.Vendido = &v
	}
	lotes, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	limiar := pesoMedioVenda(ctx, s.configRepo)
	out := make([]dto.LoteResponse, len(lotes))
	for i := range lotes {
		out[i] = resumoLote(&lotes[i], limiar)
	}
	return out, nil
}

func (s *loteService) Atualizar(ctx context.Context, id uuid.UUID, req dto.AtualizarLoteRequest) (*dto.LoteResponse, error) {
	lote, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, naoEncontrado(err, "lote nao encontrado")
	}
	if req.Codigo != nil {
		codigo := strings.TrimSpace(*req.Codigo)
		if err := s.codigoLivre(ctx, codigo, lote.ID); err != nil {
			return nil, err
		}
		lote.Codigo = codigo
	}
	if req.DataChegada != nil {
		chegada, err := parseData(*req.DataChegada)
		if err != nil {
			return nil, err
		}
		lote.DataChegada = chegada
	}
	if req.Custo != nil {
		if req.Custo.IsNegative() {
			return nil, falha(ErrDadosInvalidos, "custo nao pode ser negativo")
		}
		lote.Custo = *req.Custo
	}
	if req.GastoAlimentacao != nil {
		if req.GastoAlimentacao.IsNegative() {
			return nil, falha(ErrDadosInvalidos, "gasto_alimentacao nao pode ser negativo")
		}
		lote.GastoAlimentacao = *req.GastoAlimentacao
	}
	if req.Observacao != nil {
		lote.Observacao = vazioParaNil(req.Observacao)
	}
	if err := s.repo.Update(ctx, nil, lote); err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, cachePrefixRelatorio)
	resp := resumoLote(lote, pesoMedioVenda(ctx, s.configRepo))
	return &resp, nil
}

// RegistrarVacinacao marks the lote vaccinated; an empty date means today.
func (s *loteService) RegistrarVacinacao(ctx context.Context, id uuid.UUID, req dto.VacinacaoRequest) (*dto.LoteResponse, error) {
	lote, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, naoEncontrado(err, "lote nao encontrado")
	}
	data, err := parseDataOpcional(req.Data, time.Now())
	if err != nil {
		return nil, err
	}
	if data.Before(lote.DataChegada) {
		return nil, falha(ErrDadosInvalidos, "data de vacinacao anterior a chegada do lote")
	}
	lote.Vacinado = true
	lote.DataVacinacao = &data
	if err := s.repo.Update(ctx, nil, lote); err != nil {
		return nil, err
	}
	log.Info().Str("lote_id", lote.ID.String()).Str("data", formatData(data)).Msg("vacinacao registrada")
	s.cache.Invalidate(ctx, cachePrefixRelatorio)
	resp := resumoLote(lote, pesoMedioVenda(ctx, s.configRepo))
	return &resp, nil
}

// Excluir refuses lotes with an active sale; animals, weights and cancelled
// sales go with the lote through the ON DELETE CASCADE foreign keys.
func (s *loteService) Excluir(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return naoEncontrado(err, "lote nao encontrado")
	}
	if _, err := s.vendaRepo.FindAtivaByLote(ctx, nil, id); err == nil {
		return falha(ErrLoteJaVendido, "lote possui venda ativa e nao pode ser excluido")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	canceladas, err := s.vendaRepo.List(ctx, repository.VendaQuery{LoteID: &id, Estado: model.VendaCancelada})
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	for _, v := range canceladas {
		if v.PDFPath == nil {
			continue
		}
		if err := os.Remove(*v.PDFPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("venda_id", v.ID.String()).Msg("pdf da venda nao removido")
		}
	}
	log.Info().Str("lote_id", id.String()).Int("vendas_canceladas", len(canceladas)).Msg("lote excluido")
	s.cache.Invalidate(ctx, cachePrefixRelatorio)
	return nil
}

// codigoLivre fails with ErrConflito when another lote already uses codigo.
func (s *loteService) codigoLivre(ctx context.Context, codigo string, self uuid.UUID) error {
	if codigo == "" {
		return falha(ErrDadosInvalidos, "codigo obrigatorio")
	}
	existente, err := s.repo.FindByCodigo(ctx, codigo)
	if err == nil && existente.ID != self {
		return falha(ErrConflito, "ja existe um lote com o codigo "+codigo)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// ── Aggregates ───────────────────────────────────────────────────────────────

// agregadoBois holds the head count and weights of the animals still counted
// in a lote. Dead animals are left out.
type agregadoBois struct {
	Quantidade int
	PesoTotal  decimal.Decimal
	PesoMedio  decimal.Decimal
}

func agregarBois(bois []model.Boi) agregadoBois {
	a := agregadoBois{PesoTotal: decimal.Zero, PesoMedio: decimal.Zero}
	for _, b := range bois {
		if b.Status == model.BoiMorto {
			continue
		}
		a.Quantidade++
		a.PesoTotal = a.PesoTotal.Add(b.Peso)
	}
	if a.Quantidade > 0 {
		a.PesoMedio = a.PesoTotal.Div(decimal.NewFromInt(int64(a.Quantidade))).Round(2)
	}
	return a
}

// resumoLote maps a lote with its Bois loaded to the API shape, computing the
// aggregates on the fly.
func resumoLote(l *model.Lote, limiarVenda decimal.Decimal) dto.LoteResponse {
	a := agregarBois(l.Bois)
	return dto.LoteResponse{
		ID:               l.ID.String(),
		Codigo:           l.Codigo,
		DataChegada:      formatData(l.DataChegada),
		Custo:            l.Custo,
		GastoAlimentacao: l.GastoAlimentacao,
		Vacinado:         l.Vacinado,
		DataVacinacao:    formatDataPtr(l.DataVacinacao),
		DataVenda:        formatDataPtr(l.DataVenda),
		Vendido:          l.Vendido(),
		Observacao:       l.Observacao,
		QuantidadeBois:   a.Quantidade,
		PesoTotal:        a.PesoTotal,
		PesoMedio:        a.PesoMedio,
		ProntoParaVenda:  !l.Vendido() && a.Quantidade > 0 && a.PesoMedio.GreaterThanOrEqual(limiarVenda),
		CreatedAt:        formatInstante(l.CreatedAt),
	}
}

func vazioParaNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
