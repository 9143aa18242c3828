package models

import "time"

/************************************************
/**** MARK: USER STATUS ****/
/************************************************/
const USER_STATUS_AVAILABLE = 0
const USER_STATUS_BLOCKED = 1

// User representa um usuario autenticado via login social do Kakao.
// Não existe cadastro próprio: o registro é criado/atualizado (upsert por
// kakao_id) a cada login bem sucedido.
type User struct {
	ID          int64      `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	KakaoID     int64      `gorm:"column:kakao_id;not null;unique_index" json:"kakao_id" form:"kakao_id"`
	Nickname    string     `gorm:"default:''" json:"nickname" form:"nickname"`
	ConnectedAt *time.Time `gorm:"column:connected_at" json:"connected_at"`
	Status      int        `gorm:"default:0" json:"status"`
	CreatedAt   *time.Time `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}
