package errors

import (
	"errors"

	"gorm.io/gorm"
)

// ErrDuplicateKey 唯一约束冲突
var ErrDuplicateKey = errors.New("数据已存在")

// postgres unique_violation
const uniqueViolationCode = "23505"

// sqlStateError 兼容驱动原生错误（未开启 TranslateError 时）
type sqlStateError interface {
	SQLState() string
}

// IsDuplicateKey 判断错误是否为唯一约束冲突
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, ErrDuplicateKey) {
		return true
	}
	var se sqlStateError
	if errors.As(err, &se) {
		return se.SQLState() == uniqueViolationCode
	}
	return false
}
