package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/swaggo/swag"
)

// SwaggerDoc 输出注册到 swag 的文档 需要导入 docs 包
func SwaggerDoc(c *gin.Context) {
	doc, err := swag.ReadDoc()
	if err != nil {
		log.Error().Msgf("SwaggerDoc err is %s ", err.Error())
		APIResponse(c, WithErr(InternalServerError, err), nil)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
}
