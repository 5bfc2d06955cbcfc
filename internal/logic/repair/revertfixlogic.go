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

type RevertFixLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRevertFixLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RevertFixLogic {
	return &RevertFixLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RevertFixLogic) RevertFix(req *types.FixRequest) (resp *types.FixResponse, err error) {
	html, fix, err := l.svcCtx.Pipeline.RevertFix(l.ctx, req.Html, toFix(req.Fix))
	if err != nil {
		return nil, errorx.FromService(err)
	}

	return &types.FixResponse{Html: html, Fix: fromFix(fix)}, nil
}
