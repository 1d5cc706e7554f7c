package model

import "time"

// Known configuration keys.
const (
	ConfigPesoMedioVenda      = "peso_medio_venda"
	ConfigDiasAlertaVacinacao = "dias_alerta_vacinacao"
)

// Configuracao is a plain key/value setting.
type Configuracao struct {
	Chave     string `gorm:"type:varchar(60);primaryKey"`
	Valor     string `gorm:"not null"`
	UpdatedAt time.Time
}

func (Configuracao) TableName() string { return "configuracoes" }
