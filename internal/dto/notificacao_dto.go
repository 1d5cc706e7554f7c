package dto

type EnviarNotificacaoRequest struct {
	// DestinatarioID may be omitted by a peão: the message then goes to every active admin.
	DestinatarioID *string `json:"destinatario_id" validate:"omitempty,uuid"`
	Mensagem       string  `json:"mensagem"        validate:"required,min=1,max=2000"`
	LoteID         *string `json:"lote_id"         validate:"omitempty,uuid"`
	BoiID          *string `json:"boi_id"          validate:"omitempty,uuid"`
}

type ResponderNotificacaoRequest struct {
	Mensagem string `json:"mensagem" validate:"required,min=1,max=2000"`
}

// NotificacaoFilter is bound from the query string of GET notificacoes.
type NotificacaoFilter struct {
	Lidas string `form:"lidas" validate:"omitempty,oneof=true false"`
}

type NotificacaoResponse struct {
	ID               string  `json:"id"`
	RemetenteID      *string `json:"remetente_id"`
	RemetenteNome    string  `json:"remetente_nome"`
	DestinatarioID   string  `json:"destinatario_id"`
	DestinatarioNome string  `json:"destinatario_nome"`
	Mensagem         string  `json:"mensagem"`
	Lida             bool    `json:"lida"`
	LidaEm           *string `json:"lida_em"`
	RespostaDeID     *string `json:"resposta_de_id"`
	LoteID           *string `json:"lote_id"`
	BoiID            *string `json:"boi_id"`
	CreatedAt        string  `json:"created_at"`
}

type ThreadResponse struct {
	Raiz      NotificacaoResponse   `json:"raiz"`
	Respostas []NotificacaoResponse `json:"respostas"`
}

type ContagemResponse struct {
	NaoLidas int64 `json:"nao_lidas"`
}
