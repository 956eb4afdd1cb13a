package errors

import (
	kerrors "github.com/go-kratos/kratos/v2/errors"
)

// Code 提取错误中的业务错误码，非业务错误返回 0
func Code(err error) int {
	if err == nil {
		return 0
	}
	se := kerrors.FromError(err)
	if se == nil {
		return 0
	}
	return int(se.Code)
}

// IsCode 判断错误是否携带指定的业务错误码
func IsCode(err error, code int) bool {
	return Code(err) == code
}
