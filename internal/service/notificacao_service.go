package service

import (
	"context"
	"fmt"
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

// maxProfundidadeThread bounds the walk from a reply up to its root.
const maxProfundidadeThread = 100

// Remetente identifies who is acting on the notifications.
type Remetente struct {
	ID  uuid.UUID
	Rol string
}

type NotificacaoService interface {
	Enviar(ctx context.Context, de Remetente, req dto.EnviarNotificacaoRequest) ([]dto.NotificacaoResponse, error)
	Responder(ctx context.Context, de Remetente, id uuid.UUID, req dto.ResponderNotificacaoRequest) (*dto.NotificacaoResponse, error)
	ListarRecebidas(ctx context.Context, userID uuid.UUID, filter dto.NotificacaoFilter) ([]dto.NotificacaoResponse, error)
	ListarEnviadas(ctx context.Context, userID uuid.UUID) ([]dto.NotificacaoResponse, error)
	Thread(ctx context.Context, userID, id uuid.UUID) (*dto.ThreadResponse, error)
	MarcarLida(ctx context.Context, userID, id uuid.UUID) (*dto.NotificacaoResponse, error)
	ContarNaoLidas(ctx context.Context, userID uuid.UUID) (*dto.ContagemResponse, error)
	Excluir(ctx context.Context, userID, id uuid.UUID) error
	// LembretesVacinacao sends a system message to every admin for each unsold,
	// unvaccinated lote older than dias_alerta_vacinacao, at most once a day.
	LembretesVacinacao(ctx context.Context, agora time.Time) (int, error)
}

type notificacaoService struct {
	repo        repository.NotificacaoRepository
	usuarioRepo repository.UsuarioRepository
	loteRepo    repository.LoteRepository
	boiRepo     repository.BoiRepository
	configRepo  repository.ConfiguracaoRepository
	jobs        JobDispatcher
	now         func() time.Time
}

func NewNotificacaoService(
	repo repository.NotificacaoRepository,
	usuarioRepo repository.UsuarioRepository,
	loteRepo repository.LoteRepository,
	boiRepo repository.BoiRepository,
	configRepo repository.ConfiguracaoRepository,
	jobs JobDispatcher,
) NotificacaoService {
	return &notificacaoService{
		repo:        repo,
		usuarioRepo: usuarioRepo,
		loteRepo:    loteRepo,
		boiRepo:     boiRepo,
		configRepo:  configRepo,
		jobs:        jobs,
		now:         time.Now,
	}
}

// Enviar delivers a message. A peão may omit the recipient: the message then
// fans out to every active admin, one notification each.
func (s *notificacaoService) Enviar(ctx context.Context, de Remetente, req dto.EnviarNotificacaoRequest) ([]dto.NotificacaoResponse, error) {
	remetente, err := s.usuarioRepo.FindByID(ctx, de.ID)
	if err != nil {
		return nil, naoEncontrado(err, "remetente nao encontrado")
	}
	loteID, boiID, err := s.referencias(ctx, req.LoteID, req.BoiID)
	if err != nil {
		return nil, err
	}

	var destinos []model.Usuario
	if req.DestinatarioID == nil || *req.DestinatarioID == "" {
		if de.Rol != model.RolPeao {
			return nil, falha(ErrDadosInvalidos, "destinatario_id obrigatorio")
		}
		admins, err := s.usuarioRepo.ListAdmins(ctx)
		if err != nil {
			return nil, err
		}
		for _, a := range admins {
			if a.ID != de.ID {
				destinos = append(destinos, a)
			}
		}
		if len(destinos) == 0 {
			return nil, falha(ErrDadosInvalidos, "nenhum administrador ativo para receber a mensagem")
		}
	} else {
		id, err := uuid.Parse(*req.DestinatarioID)
		if err != nil {
			return nil, falha(ErrDadosInvalidos, "destinatario_id invalido")
		}
		if id == de.ID {
			return nil, falha(ErrDadosInvalidos, "nao e possivel enviar mensagem para si mesmo")
		}
		dest, err := s.usuarioRepo.FindByID(ctx, id)
		if err != nil {
			return nil, naoEncontrado(err, "destinatario nao encontrado")
		}
		if !dest.Ativo {
			return nil, falha(ErrDadosInvalidos, "destinatario inativo")
		}
		destinos = append(destinos, *dest)
	}

	out := make([]dto.NotificacaoResponse, 0, len(destinos))
	for i := range destinos {
		n := &model.Notificacao{
			RemetenteID:    &remetente.ID,
			DestinatarioID: destinos[i].ID,
			Mensagem:       req.Mensagem,
			LoteID:         loteID,
			BoiID:          boiID,
		}
		if err := s.criar(ctx, n); err != nil {
			return nil, err
		}
		n.Remetente, n.Destinatario = remetente, &destinos[i]
		out = append(out, notificacaoToResponse(n))
	}
	return out, nil
}

// Responder answers a message. Only its recipient may answer, and the answer
// goes back to the original sender.
func (s *notificacaoService) Responder(ctx context.Context, de Remetente, id uuid.UUID, req dto.ResponderNotificacaoRequest) (*dto.NotificacaoResponse, error) {
	pai, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, naoEncontrado(err, "notificacao nao encontrada")
	}
	if pai.DestinatarioID != de.ID {
		if pai.RemetenteID == nil || *pai.RemetenteID != de.ID {
			return nil, falha(ErrNaoEncontrado, "notificacao nao encontrada")
		}
		return nil, falha(ErrDadosInvalidos, "apenas o destinatario pode responder")
	}
	if pai.RemetenteID == nil {
		return nil, falha(ErrDadosInvalidos, "mensagens do sistema nao aceitam resposta")
	}

	n := &model.Notificacao{
		RemetenteID:    &de.ID,
		DestinatarioID: *pai.RemetenteID,
		Mensagem:       req.Mensagem,
		RespostaDeID:   &pai.ID,
		LoteID:         pai.LoteID,
		BoiID:          pai.BoiID,
	}
	if err := s.criar(ctx, n); err != nil {
		return nil, err
	}
	if !pai.Lida {
		if err := s.repo.MarkRead(ctx, pai.ID, s.now()); err != nil {
			log.Warn().Err(err).Str("notificacao_id", pai.ID.String()).Msg("failed to mark parent read")
		}
	}
	n.Remetente, n.Destinatario = pai.Destinatario, pai.Remetente
	resp := notificacaoToResponse(n)
	return &resp, nil
}

func (s *notificacaoService) ListarRecebidas(ctx context.Context, userID uuid.UUID, filter dto.NotificacaoFilter) ([]dto.NotificacaoResponse, error) {
	var lidas *bool
	switch filter.Lidas {
	case "true":
		v := true
		lidas = &v
	case "false":
		v := false
		lidas = &v
	}
	rows, err := s.repo.ListByDestinatario(ctx, userID, lidas)
	if err != nil {
		return nil, err
	}
	return notificacoesToResponse(rows), nil
}

func (s *notificacaoService) ListarEnviadas(ctx context.Context, userID uuid.UUID) ([]dto.NotificacaoResponse, error) {
	rows, err := s.repo.ListByRemetente(ctx, userID)
	if err != nil {
		return nil, err
	}
	return notificacoesToResponse(rows), nil
}

// Thread returns the root of the conversation containing id and every
// descendant, oldest first.
func (s *notificacaoService) Thread(ctx context.Context, userID, id uuid.UUID) (*dto.ThreadResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil || !participa(n, userID) {
		return nil, naoEncontrado(orNotFound(err), "notificacao nao encontrada")
	}
	related, err := s.repo.ListRelated(ctx, userID)
	if err != nil {
		return nil, err
	}
	raiz, resp := montarThread(related, n)
	return &dto.ThreadResponse{
		Raiz:      notificacaoToResponse(raiz),
		Respostas: notificacoesToResponse(resp),
	}, nil
}

func (s *notificacaoService) MarcarLida(ctx context.Context, userID, id uuid.UUID) (*dto.NotificacaoResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil || n.DestinatarioID != userID {
		return nil, naoEncontrado(orNotFound(err), "notificacao nao encontrada")
	}
	if !n.Lida {
		agora := s.now()
		if err := s.repo.MarkRead(ctx, id, agora); err != nil {
			return nil, err
		}
		n.Lida, n.LidaEm = true, &agora
	}
	resp := notificacaoToResponse(n)
	return &resp, nil
}

func (s *notificacaoService) ContarNaoLidas(ctx context.Context, userID uuid.UUID) (*dto.ContagemResponse, error) {
	c, err := s.repo.CountNaoLidas(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &dto.ContagemResponse{NaoLidas: c}, nil
}

// Excluir hard-deletes the message and every reply below it.
func (s *notificacaoService) Excluir(ctx context.Context, userID, id uuid.UUID) error {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil || !participa(n, userID) {
		return naoEncontrado(orNotFound(err), "notificacao nao encontrada")
	}
	related, err := s.repo.ListRelated(ctx, userID)
	if err != nil {
		return err
	}
	ids := append([]uuid.UUID{n.ID}, descendentes(related, n.ID)...)
	return s.repo.DeleteMany(ctx, ids)
}

func (s *notificacaoService) LembretesVacinacao(ctx context.Context, agora time.Time) (int, error) {
	dias := diasAlertaVacinacao(ctx, s.configRepo)
	hoje := time.Date(agora.Year(), agora.Month(), agora.Day(), 0, 0, 0, 0, time.UTC)
	limite := hoje.AddDate(0, 0, -dias)

	disponivel := false
	lotes, err := s.loteRepo.List(ctx, repository.LoteQuery{Vendido: &disponivel})
	if err != nil {
		return 0, err
	}
	admins, err := s.usuarioRepo.ListAdmins(ctx)
	if err != nil {
		return 0, err
	}

	enviados := 0
	for i := range lotes {
		l := &lotes[i]
		if l.Vacinado || l.Vendido() || l.DataChegada.After(limite) {
			continue
		}
		diasSem := diasEntre(l.DataChegada, hoje)
		msg := fmt.Sprintf("Lote %s esta ha %d dias sem vacinacao registrada.", l.Codigo, diasSem)
		for _, a := range admins {
			ja, err := s.repo.ExistsSistemaDesde(ctx, a.ID, l.ID, hoje)
			if err != nil {
				return enviados, err
			}
			if ja {
				continue
			}
			loteID := l.ID
			n := &model.Notificacao{DestinatarioID: a.ID, Mensagem: msg, LoteID: &loteID}
			if err := s.criar(ctx, n); err != nil {
				return enviados, err
			}
			enviados++
		}
	}
	return enviados, nil
}

// criar persists n and queues the outbound webhook. jobs is nil when no
// webhook is configured.
func (s *notificacaoService) criar(ctx context.Context, n *model.Notificacao) error {
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	if s.jobs == nil {
		return nil
	}
	payload := infra.WebhookPayload{
		Evento:         "notificacao.criada",
		NotificacaoID:  n.ID.String(),
		Mensagem:       n.Mensagem,
		DestinatarioID: n.DestinatarioID.String(),
		RemetenteID:    uuidPtrString(n.RemetenteID),
		LoteID:         uuidPtrString(n.LoteID),
		BoiID:          uuidPtrString(n.BoiID),
		CriadaEm:       formatInstante(n.CreatedAt),
	}
	if err := s.jobs.EnqueueWebhook(ctx, payload); err != nil {
		log.Debug().Err(err).Str("notificacao_id", n.ID.String()).Msg("webhook not queued")
	}
	return nil
}

// referencias validates the optional lote/animal the message points at.
func (s *notificacaoService) referencias(ctx context.Context, loteStr, boiStr *string) (*uuid.UUID, *uuid.UUID, error) {
	var loteID, boiID *uuid.UUID
	if loteStr != nil && *loteStr != "" {
		id, err := uuid.Parse(*loteStr)
		if err != nil {
			return nil, nil, falha(ErrDadosInvalidos, "lote_id invalido")
		}
		if _, err := s.loteRepo.FindByID(ctx, id); err != nil {
			return nil, nil, naoEncontrado(err, "lote nao encontrado")
		}
		loteID = &id
	}
	if boiStr != nil && *boiStr != "" {
		id, err := uuid.Parse(*boiStr)
		if err != nil {
			return nil, nil, falha(ErrDadosInvalidos, "boi_id invalido")
		}
		boi, err := s.boiRepo.FindByID(ctx, id)
		if err != nil {
			return nil, nil, naoEncontrado(err, "boi nao encontrado")
		}
		boiID = &id
		if loteID == nil {
			l := boi.LoteID
			loteID = &l
		}
	}
	return loteID, boiID, nil
}

func participa(n *model.Notificacao, userID uuid.UUID) bool {
	return n.DestinatarioID == userID || (n.RemetenteID != nil && *n.RemetenteID == userID)
}

// montarThread walks from n up to its root inside all, then collects every
// descendant of the root ordered by creation time.
func montarThread(all []model.Notificacao, n *model.Notificacao) (*model.Notificacao, []model.Notificacao) {
	byID := make(map[uuid.UUID]*model.Notificacao, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}
	raiz := n
	for depth := 0; raiz.RespostaDeID != nil && depth < maxProfundidadeThread; depth++ {
		pai, ok := byID[*raiz.RespostaDeID]
		if !ok {
			break
		}
		raiz = pai
	}

	ids := descendentes(all, raiz.ID)
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	var respostas []model.Notificacao
	for i := range all {
		if set[all[i].ID] {
			respostas = append(respostas, all[i])
		}
	}
	sortNotificacoes(respostas)
	return raiz, respostas
}

// descendentes returns the ids of every reply below root, at any depth.
func descendentes(all []model.Notificacao, root uuid.UUID) []uuid.UUID {
	filhos := map[uuid.UUID][]uuid.UUID{}
	for i := range all {
		if p := all[i].RespostaDeID; p != nil {
			filhos[*p] = append(filhos[*p], all[i].ID)
		}
	}
	var out []uuid.UUID
	visto := map[uuid.UUID]bool{root: true}
	fila := []uuid.UUID{root}
	for len(fila) > 0 {
		cur := fila[0]
		fila = fila[1:]
		for _, f := range filhos[cur] {
			if visto[f] {
				continue
			}
			visto[f] = true
			out = append(out, f)
			fila = append(fila, f)
		}
	}
	return out
}

func sortNotificacoes(ns []model.Notificacao) {
	sort.SliceStable(ns, func(i, j int) bool { return ns[i].CreatedAt.Before(ns[j].CreatedAt) })
}

// orNotFound turns "found but not yours" into a plain not-found.
func orNotFound(err error) error {
	if err == nil {
		return gorm.ErrRecordNotFound
	}
	return err
}

func notificacoesToResponse(rows []model.Notificacao) []dto.NotificacaoResponse {
	out := make([]dto.NotificacaoResponse, len(rows))
	for i := range rows {
		out[i] = notificacaoToResponse(&rows[i])
	}
	return out
}

func notificacaoToResponse(n *model.Notificacao) dto.NotificacaoResponse {
	resp := dto.NotificacaoResponse{
		ID:             n.ID.String(),
		RemetenteID:    uuidPtrString(n.RemetenteID),
		DestinatarioID: n.DestinatarioID.String(),
		Mensagem:       n.Mensagem,
		Lida:           n.Lida,
		RespostaDeID:   uuidPtrString(n.RespostaDeID),
		LoteID:         uuidPtrString(n.LoteID),
		BoiID:          uuidPtrString(n.BoiID),
		CreatedAt:      formatInstante(n.CreatedAt),
	}
	if n.RemetenteID == nil {
		resp.RemetenteNome = "Sistema"
	} else if n.Remetente != nil {
		resp.RemetenteNome = n.Remetente.Nome
	}
	if n.Destinatario != nil {
		resp.DestinatarioNome = n.Destinatario.Nome
	}
	if n.LidaEm != nil {
		s := formatInstante(*n.LidaEm)
		resp.LidaEm = &s
	}
	return resp
}

func uuidPtrString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
