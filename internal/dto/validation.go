package dto

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Woterous/Management-System/internal/model"
)

var registerOnce sync.Once

// RegisterValidators 在 gin 的校验引擎上注册自定义规则
//   - attendance_status: present | late | leave | absent
//   - rfc3339time: RFC3339 时间字符串
//
// 同时令校验错误中的字段名使用 json/form 标签名
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("gin 校验引擎不是 validator/v10")
			return
		}
		err = registerOn(v)
	})
	return err
}

func registerOn(v *validator.Validate) error {
	v.RegisterTagNameFunc(fieldTagName)
	if err := v.RegisterValidation("attendance_status", validateAttendanceStatus); err != nil {
		return fmt.Errorf("注册 attendance_status 失败: %w", err)
	}
	if err := v.RegisterValidation("rfc3339time", validateRFC3339); err != nil {
		return fmt.Errorf("注册 rfc3339time 失败: %w", err)
	}
	return nil
}

// IsAttendanceStatus 是否为合法考勤状态
func IsAttendanceStatus(s string) bool {
	for _, st := range model.AttendanceStatuses {
		if s == st {
			return true
		}
	}
	return false
}

func validateAttendanceStatus(fl validator.FieldLevel) bool {
	return IsAttendanceStatus(fl.Field().String())
}

func validateRFC3339(fl validator.FieldLevel) bool {
	_, err := time.Parse(time.RFC3339, fl.Field().String())
	return err == nil
}

func fieldTagName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}
