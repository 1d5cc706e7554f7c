package model

import (
	"time"

	"github.com/google/uuid"
)

// Notificacao is a message between users. RemetenteID is nil for messages
// generated by the scheduler. RespostaDeID points at the message being answered.
type Notificacao struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RemetenteID    *uuid.UUID `gorm:"type:uuid;index"`
	DestinatarioID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Mensagem       string     `gorm:"type:text;not null"`
	Lida           bool       `gorm:"not null;default:false"`
	LidaEm         *time.Time
	RespostaDeID   *uuid.UUID `gorm:"type:uuid;index"`
	LoteID         *uuid.UUID `gorm:"type:uuid"`
	BoiID          *uuid.UUID `gorm:"type:uuid"`
	CreatedAt      time.Time

	Remetente    *Usuario `gorm:"foreignKey:RemetenteID"`
	Destinatario *Usuario `gorm:"foreignKey:DestinatarioID"`
}

func (Notificacao) TableName() string { return "notificacoes" }
