package service

import (
	"context"
	"errors"
	"os"

	"gestaogado/internal/dto"
	"gestaogado/internal/infra"
	"gestaogado/internal/model"
	"gestaogado/internal/repository"
	"gestaogado/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type VendaService interface {
	Registrar(ctx context.Context, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error)
	Cancelar(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error)
	Obter(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error)
	Listar(ctx context.Context, filter dto.VendaFilter) ([]dto.VendaResponse, error)
	// CaminhoPDF returns the stored report file of the sale.
	CaminhoPDF(ctx context.Context, id uuid.UUID) (string, error)
}

type vendaService struct {
	repo        repository.VendaRepository
	loteRepo    repository.LoteRepository
	boiRepo     repository.BoiRepository
	usuarioRepo repository.UsuarioRepository
	jobs        JobDispatcher
	cache       *infra.Cache
}

func NewVendaService(
	repo repository.VendaRepository,
	loteRepo repository.LoteRepository,
	boiRepo repository.BoiRepository,
	usuarioRepo repository.UsuarioRepository,
	jobs JobDispatcher,
	cache *infra.Cache,
) VendaService {
	return &vendaService{
		repo:        repo,
		loteRepo:    loteRepo,
		boiRepo:     boiRepo,
		usuarioRepo: usuarioRepo,
		jobs:        jobs,
		cache:       cache,
	}
}

// ── Registrar ────────────────────────────────────────────────────────────────
// One transaction, lote row locked:
//   1. reject when the lote is already sold
//   2. create the venda
//   3. stamp lote.data_venda
//   4. live animals become "vendido"
// After commit the PDF report job is queued.

func (s *vendaService) Registrar(ctx context.Context, req dto.RegistrarVendaRequest) (*dto.VendaResponse, error) {
	loteID, err := uuid.Parse(req.LoteID)
	if err != nil {
		return nil, falha(ErrDadosInvalidos, "lote_id invalido")
	}
	dataVenda, err := parseData(req.DataVenda)
	if err != nil {
		return nil, err
	}
	if !req.Valor.IsPositive() {
		return nil, falha(ErrDadosInvalidos, "valor deve ser maior que zero")
	}

	venda := &model.Venda{
		LoteID:     loteID,
		DataVenda:  dataVenda,
		Valor:      req.Valor,
		Estado:     model.VendaAtiva,
		Observacao: vazioParaNil(req.Observacao),
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		lote, err := s.loteRepo.LockByID(ctx, tx, loteID)
		if err != nil {
			return naoEncontrado(err, "lote nao encontrado")
		}
		if lote.Vendido() {
			return falha(ErrLoteJaVendido, "lote "+lote.Codigo+" ja foi vendido")
		}
		if _, err := s.repo.FindAtivaByLote(ctx, tx, loteID); err == nil {
			return falha(ErrLoteJaVendido, "lote "+lote.Codigo+" ja possui venda ativa")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if dataVenda.Before(lote.DataChegada) {
			return falha(ErrDadosInvalidos, "data da venda anterior a chegada do lote")
		}

		if err := s.repo.Create(ctx, tx, venda); err != nil {
			return err
		}
		lote.DataVenda = &dataVenda
		if err := s.loteRepo.Update(ctx, tx, lote); err != nil {
			return err
		}
		return s.boiRepo.MarcarVendidos(ctx, tx, loteID)
	})
	if txErr != nil {
		return nil, txErr
	}
	s.cache.Invalidate(ctx, cachePrefixRelatorio)

	full, err := s.repo.FindByID(ctx, venda.ID)
	if err != nil {
		return nil, err
	}
	log.Info().Str("venda_id", full.ID.String()).Str("lote_id", loteID.String()).Str("valor", full.Valor.String()).Msg("venda registrada")

	s.enfileirarRelatorio(ctx, full)
	resp := vendaToResponse(full)
	return &resp, nil
}

// Cancelar reopens the lote: data_venda cleared, sold animals back to their
// status before the sale.
func (s *vendaService) Cancelar(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error) {
	venda, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, naoEncontrado(err, "venda nao encontrada")
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		lote, err := s.loteRepo.LockByID(ctx, tx, venda.LoteID)
		if err != nil {
			return naoEncontrado(err, "lote nao encontrado")
		}
		ativa, err := s.repo.FindAtivaByLote(ctx, tx, venda.LoteID)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && ativa.ID != venda.ID) {
			return falha(ErrConflito, "venda ja cancelada")
		}
		if err != nil {
			return err
		}
		ativa.Estado = model.VendaCancelada
		if err := s.repo.Update(ctx, tx, ativa); err != nil {
			return err
		}
		lote.DataVenda = nil
		if err := s.loteRepo.Update(ctx, tx, lote); err != nil {
			return err
		}
		return s.boiRepo.RestaurarVendidos(ctx, tx, lote.ID)
	})
	if txErr != nil {
		return nil, txErr
	}
	s.cache.Invalidate(ctx, cachePrefixRelatorio)
	log.Info().Str("venda_id", id.String()).Str("lote_id", venda.LoteID.String()).Msg("venda cancelada")

	full, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := vendaToResponse(full)
	return &resp, nil
}

func (s *vendaService) Obter(ctx context.Context, id uuid.UUID) (*dto.VendaResponse, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, naoEncontrado(err, "venda nao encontrada")
	}
	resp := vendaToResponse(v)
	return &resp, nil
}

func (s *vendaService) Listar(ctx context.Context, filter dto.VendaFilter) ([]dto.VendaResponse, error) {
	q, err := vendaQuery(filter.Inicio, filter.Fim)
	if err != nil {
		return nil, err
	}
	if filter.LoteID != "" {
		id, err := uuid.Parse(filter.LoteID)
		if err != nil {
			return nil, falha(ErrDadosInvalidos, "lote_id invalido")
		}
		q.LoteID = &id
	}
	if filter.Estado != "todas" {
		q.Estado = filter.Estado
	}
	vendas, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	out := make([]dto.VendaResponse, len(vendas))
	for i := range vendas {
		out[i] = vendaToResponse(&vendas[i])
	}
	return out, nil
}

func (s *vendaService) CaminhoPDF(ctx context.Context, id uuid.UUID) (string, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", naoEncontrado(err, "venda nao encontrada")
	}
	if v.PDFPath == nil {
		return "", falha(ErrNaoEncontrado, "relatorio da venda ainda nao foi gerado")
	}
	if _, err := os.Stat(*v.PDFPath); err != nil {
		return "", falha(ErrNaoEncontrado, "arquivo do relatorio nao encontrado")
	}
	return *v.PDFPath, nil
}

func (s *vendaService) enfileirarRelatorio(ctx context.Context, v *model.Venda) {
	if s.jobs == nil {
		return
	}
	var emails []string
	if s.usuarioRepo != nil {
		admins, err := s.usuarioRepo.ListAdmins(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("venda: failed to list admins for report mail")
		}
		for _, a := range admins {
			emails = append(emails, a.Email)
		}
	}
	payload := worker.RelatorioVendaJobPayload{Report: montarRelatorio(v), Destinatarios: emails}
	if err := s.jobs.EnqueueRelatorioVenda(ctx, payload); err != nil {
		log.Warn().Err(err).Str("venda_id", v.ID.String()).Msg("venda: failed to enqueue report job")
	}
}

// vendaQuery parses an optional inclusive date range.
func vendaQuery(inicio, fim string) (repository.VendaQuery, error) {
	var q repository.VendaQuery
	if inicio != "" {
		t, err := parseData(inicio)
		if err != nil {
			return q, err
		}
		q.Inicio = &t
	}
	if fim != "" {
		t, err := parseData(fim)
		if err != nil {
			return q, err
		}
		q.Fim = &t
	}
	if q.Inicio != nil && q.Fim != nil && q.Fim.Before(*q.Inicio) {
		return q, falha(ErrDadosInvalidos, "fim anterior ao inicio")
	}
	return q, nil
}

// ── Profit ───────────────────────────────────────────────────────────────────

var cem = decimal.NewFromInt(100)

// calcularLucro returns lucro = valor - (custo + gasto) and the margin as a
// percentage of valor, both rounded to cents. A zero valor yields margin 0.
func calcularLucro(valor, custo, gasto decimal.Decimal) (lucro, margem decimal.Decimal) {
	lucro = valor.Sub(custo.Add(gasto))
	margem = decimal.Zero
	if !valor.IsZero() {
		margem = lucro.Div(valor).Mul(cem).Round(2)
	}
	return lucro.Round(2), margem
}

func vendaToResponse(v *model.Venda) dto.VendaResponse {
	resp := dto.VendaResponse{
		ID:            v.ID.String(),
		LoteID:        v.LoteID.String(),
		DataVenda:     formatData(v.DataVenda),
		Valor:         v.Valor,
		Estado:        v.Estado,
		Observacao:    v.Observacao,
		PDFDisponivel: v.PDFPath != nil,
		CreatedAt:     formatInstante(v.CreatedAt),
	}
	custo, gasto := decimal.Zero, decimal.Zero
	if v.Lote != nil {
		resp.CodigoLote = v.Lote.Codigo
		resp.Cabecas = agregarBois(v.Lote.Bois).Quantidade
		custo, gasto = v.Lote.Custo, v.Lote.GastoAlimentacao
	}
	resp.Custo = custo
	resp.GastoAlimentacao = gasto
	resp.Lucro, resp.Margem = calcularLucro(v.Valor, custo, gasto)
	return resp
}

// montarRelatorio flattens a venda with Lote.Bois loaded into the PDF input.
func montarRelatorio(v *model.Venda) infra.VendaReport {
	r := infra.VendaReport{
		VendaID:   v.ID.String(),
		DataVenda: v.DataVenda,
		Valor:     v.Valor,
	}
	if v.Lote == nil {
		r.Lucro, r.Margem = calcularLucro(v.Valor, decimal.Zero, decimal.Zero)
		return r
	}
	a := agregarBois(v.Lote.Bois)
	r.CodigoLote = v.Lote.Codigo
	r.DataChegada = v.Lote.DataChegada
	r.Cabecas = a.Quantidade
	r.PesoTotal = a.PesoTotal
	r.PesoMedio = a.PesoMedio
	r.Custo = v.Lote.Custo
	r.GastoAlimentacao = v.Lote.GastoAlimentacao
	r.Lucro, r.Margem = calcularLucro(v.Valor, v.Lote.Custo, v.Lote.GastoAlimentacao)
	for _, b := range v.Lote.Bois {
		brinco := "-"
		if b.Brinco != nil {
			brinco = *b.Brinco
		}
		r.Bois = append(r.Bois, infra.VendaReportBoi{Brinco: brinco, Peso: b.Peso, Status: b.Status})
	}
	return r
}
