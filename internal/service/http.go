package service

import (
	"context"
	"strconv"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// handle 套上服务器中间件链执行业务调用并写回 200 响应
// 手写路由没有生成代码的 handler，这里做同样的事
func handle(ctx khttp.Context, operation string, in interface{}, fn func(ctx context.Context) (interface{}, error)) error {
	khttp.SetOperation(ctx, operation)
	h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		return fn(c)
	})
	out, err := h(ctx, in)
	if err != nil {
		return err
	}
	return ctx.Result(200, out)
}

// pathID 解析路径参数中的数字 id
func pathID(ctx khttp.Context, name string) (uint64, error) {
	raw := ctx.Vars().Get(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, kerrors.BadRequest("INVALID_PARAM", "invalid "+name)
	}
	return id, nil
}
