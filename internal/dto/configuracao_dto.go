package dto

type AtualizarConfiguracaoRequest struct {
	Valor string `json:"valor" validate:"required,max=200"`
}

type ConfiguracaoResponse struct {
	Chave     string `json:"chave"`
	Valor     string `json:"valor"`
	UpdatedAt string `json:"updated_at"`
}
