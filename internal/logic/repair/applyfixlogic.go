// Code scaffolded by goctl. Safe to edit.
// goctl 1.9.2

package repair

import (
	"context"

	"github.com/joeblew999/plat-mailfix/internal/errorx"
	"github.com/joeblew999/plat-mailfix/internal/svc"
	"github.com/joeblew999/plat-mailfix/internal/types"

	"github.com/zeromicro/go-zero/core/logx"
)

type ApplyFixLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewApplyFixLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ApplyFixLogic {
	return &ApplyFixLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ApplyFixLogic) ApplyFix(req *types.FixRequest) (resp *types.FixResponse, err error) {
	html, fix, err := l.svcCtx.Pipeline.ApplyFix(l.ctx, req.Html, toFix(req.Fix))
	if err != nil {
		return nil, errorx.FromService(err)
	}

	return &types.FixResponse{Html: html, Fix: fromFix(fix)}, nil
}
