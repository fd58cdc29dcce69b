package dto

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

var registerOnce sync.Once

// RegisterValidator 让校验错误使用请求中的字段名(form/json tag)而不是结构体字段名
// 需要在注册路由前调用一次
func RegisterValidator() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})
	})
}

// BindError 绑定/校验错误 → AppError
// 1. 校验失败:422,details逐字段说明
// 2. 请求体过大:413
// 3. 其他格式错误(如skip不是整数、JSON类型不符):422
func BindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]apperrors.FieldDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, apperrors.FieldDetail{
				Field:   fe.Field(),
				Message: fieldMessage(fe),
			})
		}
		return apperrors.ErrInvalidParams.WithDetails(details...)
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperrors.ErrFileTooLarge.WithCause(err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperrors.ErrBindError.WithCause(err).WithDetails(apperrors.FieldDetail{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be of type %s", typeErr.Type),
		})
	}

	return apperrors.ErrBindError.WithCause(err)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "min", "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be between %d and %d characters", book.MinTextLen, book.MaxTextLen)
		}
		if fe.Tag() == "min" {
			return "must be greater than or equal to " + fe.Param()
		}
		return "must be less than or equal to " + fe.Param()
	default:
		return "failed on the '" + fe.Tag() + "' rule"
	}
}
