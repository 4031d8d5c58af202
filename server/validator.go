package server

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	trans     ut.Translator
	transOnce sync.Once
)

// initTrans 注册英文翻译 字段名使用 json tag 请求体中的数字解析为 json.Number
func initTrans() {
	transOnce.Do(func() {
		binding.EnableDecoderUseNumber = true
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = fld.Tag.Get("form")
			}
			return name
		})
		enT := en.New()
		trans, _ = ut.New(enT, enT).GetTranslator("en")
		if err := enTranslations.RegisterDefaultTranslations(v, trans); err != nil {
			log.Error().Msgf("RegisterDefaultTranslations err is %s ", err.Error())
		}
	})
}

// translateErr 校验错误转换为可读信息 其他错误 如 JSON 格式错误 原样返回
func translateErr(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || trans == nil {
		return err.Error()
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Translate(trans))
	}
	return strings.Join(msgs, "; ")
}

// HandleValidatorError 请求参数错误 返回 400
func HandleValidatorError(c *gin.Context, err error) {
	log.Info().Msgf("HandleValidatorError err is %s ", err.Error())
	APIResponse(c, WithErr(ErrParam, errors.New(translateErr(err))), nil)
}

// validateStruct 非 http 入口 如 websocket 使用同一套校验
func validateStruct(obj interface{}) error {
	return binding.Validator.ValidateStruct(obj)
}
