package service

import (
	"context"

	"gestaogado/internal/dto"
	"gestaogado/internal/infra"
	"gestaogado/internal/model"
	"gestaogado/internal/repository"

	"github.com/shopspring/decimal"
)

// Defaults used when the configuracoes table has no row for the key.
var (
	PesoMedioVendaPadrao      = decimal.NewFromInt(450)
	DiasAlertaVacinacaoPadrao = 30
)

type ConfiguracaoService interface {
	Listar(ctx context.Context) ([]dto.ConfiguracaoResponse, error)
	Obter(ctx context.Context, chave string) (*dto.ConfiguracaoResponse, error)
	Atualizar(ctx context.Context, chave string, req dto.AtualizarConfiguracaoRequest) (*dto.ConfiguracaoResponse, error)
}

type configuracaoService struct {
	repo  repository.ConfiguracaoRepository
	cache *infra.Cache
}

func NewConfiguracaoService(repo repository.ConfiguracaoRepository, cache *infra.Cache) ConfiguracaoService {
	return &configuracaoService{repo: repo, cache: cache}
}

func (s *configuracaoService) Listar(ctx context.Context) ([]dto.ConfiguracaoResponse, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ConfiguracaoResponse, len(rows))
	for i := range rows {
		out[i] = configuracaoToResponse(&rows[i])
	}
	return out, nil
}

func (s *configuracaoService) Obter(ctx context.Context, chave string) (*dto.ConfiguracaoResponse, error) {
	c, err := s.repo.Get(ctx, chave)
	if err != nil {
		return nil, naoEncontrado(err, "configuracao nao encontrada")
	}
	resp := configuracaoToResponse(c)
	return &resp, nil
}

// Atualizar upserts the key. Known numeric keys must parse as positive numbers.
func (s *configuracaoService) Atualizar(ctx context.Context, chave string, req dto.AtualizarConfiguracaoRequest) (*dto.ConfiguracaoResponse, error) {
	switch chave {
	case model.ConfigPesoMedioVenda, model.ConfigDiasAlertaVacinacao:
		v, err := decimal.NewFromString(req.Valor)
		if err != nil || !v.IsPositive() {
			return nil, falha(ErrDadosInvalidos, "valor numerico positivo esperado para "+chave)
		}
		if chave == model.ConfigDiasAlertaVacinacao && !v.Equal(v.Truncate(0)) {
			return nil, falha(ErrDadosInvalidos, "dias_alerta_vacinacao deve ser inteiro")
		}
	}
	c := &model.Configuracao{Chave: chave, Valor: req.Valor}
	if err := s.repo.Upsert(ctx, c); err != nil {
		return nil, err
	}
	// peso_medio_venda feeds the dashboard and pronto_para_venda
	s.cache.Invalidate(ctx, cachePrefixRelatorio)
	resp := configuracaoToResponse(c)
	return &resp, nil
}

func configuracaoToResponse(c *model.Configuracao) dto.ConfiguracaoResponse {
	return dto.ConfiguracaoResponse{Chave: c.Chave, Valor: c.Valor, UpdatedAt: formatInstante(c.UpdatedAt)}
}

// pesoMedioVenda reads the sale-ready threshold, falling back to the default
// when the row is missing or malformed.
func pesoMedioVenda(ctx context.Context, repo repository.ConfiguracaoRepository) decimal.Decimal {
	if repo == nil {
		return PesoMedioVendaPadrao
	}
	c, err := repo.Get(ctx, model.ConfigPesoMedioVenda)
	if err != nil {
		return PesoMedioVendaPadrao
	}
	v, err := decimal.NewFromString(c.Valor)
	if err != nil || !v.IsPositive() {
		return PesoMedioVendaPadrao
	}
	return v
}

func diasAlertaVacinacao(ctx context.Context, repo repository.ConfiguracaoRepository) int {
	if repo == nil {
		return DiasAlertaVacinacaoPadrao
	}
	c, err := repo.Get(ctx, model.ConfigDiasAlertaVacinacao)
	if err != nil {
		return DiasAlertaVacinacaoPadrao
	}
	v, err := decimal.NewFromString(c.Valor)
	if err != nil || !v.IsPositive() {
		return DiasAlertaVacinacaoPadrao
	}
	return int(v.IntPart())
}
