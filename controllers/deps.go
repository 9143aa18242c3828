package controllers

import (
	"haru/tools"
	"haru/workflow"

	"github.com/gin-gonic/gin"
)

const depsKey = "deps"

// Deps agrupa os colaboradores injetados no boot: o orquestrador do diário e
// o cliente Kakao usado pelo login e pelo middleware de autenticação.
type Deps struct {
	Workflow *workflow.Workflow
	Kakao    *tools.KakaoClient
}

// SetDeps segue o mesmo padrão do db.SetDBtoContext: injeta as dependências
// no contexto de cada request.
func SetDeps(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(depsKey, d)
		c.Next()
	}
}

func DepsInstance(c *gin.Context) Deps {
	v, ok := c.Get(depsKey)
	if !ok {
		return Deps{}
	}
	d, _ := v.(Deps)
	return d
}
