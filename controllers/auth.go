package controllers

import (
	"net/http"
	"time"

	dbpkg "haru/db"
	"haru/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

type KakaoLoginRequest struct {
	Code string `json:"code" form:"code"`
}

// KakaoLogin troca o authorization code por um access token no Kakao, busca
// o perfil e faz upsert do usuário por kakao_id (não existe cadastro
// separado). O token devolvido é o próprio access token do Kakao.
func KakaoLogin(c *gin.Context) {
	var req KakaoLoginRequest
	if err := c.Bind(&req); err != nil {
		RespondError(c, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Code == "" {
		RespondError(c, "authorization code not provided", http.StatusBadRequest)
		return
	}

	deps := DepsInstance(c)
	if deps.Kakao == nil {
		RespondError(c, "kakao client não configurado no contexto", http.StatusInternalServerError)
		return
	}

	accessToken, err := deps.Kakao.ExchangeCode(c.Request.Context(), req.Code)
	if err != nil {
		RespondError(c, "failed to get access token: "+err.Error(), http.StatusBadRequest)
		return
	}

	info, err := deps.Kakao.UserInfo(c.Request.Context(), accessToken)
	if err != nil {
		RespondError(c, "failed to fetch user info: "+err.Error(), http.StatusBadRequest)
		return
	}

	db := dbpkg.DBInstance(c)
	if db == nil {
		RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
		return
	}

	user, err := upsertKakaoUser(db, info.ID, info.Nickname)
	if err != nil {
		RespondError(c, err.Error(), http.StatusInternalServerError)
		return
	}

	RespondSuccess(c, gin.H{
		"message":      "Login successful",
		"access_token": accessToken,
		"kakao_id":     user.KakaoID,
		"nickname":     user.Nickname,
	})
}

// upsertKakaoUser cria ou atualiza o usuário pela chave kakao_id, renovando
// nickname e connected_at a cada login.
func upsertKakaoUser(db *gorm.DB, kakaoID int64, nickname string) (models.User, error) {
	now := time.Now()

	var user models.User
	err := db.Where("kakao_id = ?", kakaoID).First(&user).Error
	if err != nil {
		if !gorm.IsRecordNotFoundError(err) {
			return models.User{}, err
		}
		user = models.User{KakaoID: kakaoID, Nickname: nickname, ConnectedAt: &now}
		if err := db.Create(&user).Error; err != nil {
			// corrida no unique index: outro login criou antes, atualiza
			if err2 := db.Where("kakao_id = ?", kakaoID).First(&user).Error; err2 != nil {
				return models.User{}, err
			}
		} else {
			return user, nil
		}
	}

	updates := map[string]any{"connected_at": &now}
	if nickname != "" {
		updates["nickname"] = nickname
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}
