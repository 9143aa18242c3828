package controllers

import (
	"net/http"
	"strings"

	dbpkg "haru/db"
	"haru/models"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
)

const ctxUserKey = "auth_user"

// AuthRequired valida o Bearer token contra o Kakao a cada request (o token
// de sessão é o próprio access token do Kakao) e carrega o usuário para o
// contexto, criando-o se for o primeiro acesso com esse kakao_id.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(strings.ToLower(h), "bearer ") {
			RespondError(c, "unauthorized", http.StatusUnauthorized)
			c.Abort()
			return
		}
		token := strings.TrimSpace(h[len("Bearer "):])

		deps := DepsInstance(c)
		if deps.Kakao == nil {
			RespondError(c, "kakao client não configurado no contexto", http.StatusInternalServerError)
			c.Abort()
			return
		}

		info, err := deps.Kakao.UserInfo(c.Request.Context(), token)
		if err != nil {
			RespondError(c, "invalid or expired token", http.StatusUnauthorized)
			c.Abort()
			return
		}

		db := dbpkg.DBInstance(c)
		if db == nil {
			RespondError(c, "db não configurado no contexto", http.StatusInternalServerError)
			c.Abort()
			return
		}

		// get-or-create: diferente do login, aqui não renovamos connected_at
		user, err := getOrCreateKakaoUser(db, info.ID, info.Nickname)
		if err != nil {
			RespondError(c, err.Error(), http.StatusInternalServerError)
			c.Abort()
			return
		}
		if user.Status == models.USER_STATUS_BLOCKED {
			RespondError(c, "sem acesso ao aplicativo", http.StatusForbidden)
			c.Abort()
			return
		}

		c.Set(ctxUserKey, user)
		c.Next()
	}
}

func getOrCreateKakaoUser(db *gorm.DB, kakaoID int64, nickname string) (models.User, error) {
	var user models.User
	err := db.Where("kakao_id = ?", kakaoID).First(&user).Error
	if err == nil {
		return user, nil
	}
	if !gorm.IsRecordNotFoundError(err) {
		return models.User{}, err
	}

	user = models.User{KakaoID: kakaoID, Nickname: nickname}
	if err := db.Create(&user).Error; err != nil {
		// requests concorrentes do mesmo usuário novo: o outro criou antes
		if err2 := db.Where("kakao_id = ?", kakaoID).First(&user).Error; err2 != nil {
			return models.User{}, err
		}
	}
	return user, nil
}

// GetUserLogged retorna o usuário carregado pelo AuthRequired.
func GetUserLogged(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
