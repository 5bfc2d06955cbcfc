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

type RemoveProblemLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewRemoveProblemLogic(ctx context.Context, svcCtx *svc.ServiceContext) *RemoveProblemLogic {
	return &RemoveProblemLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *RemoveProblemLogic) RemoveProblem(req *types.RemoveProblemRequest) (resp *types.RemoveProblemResponse, err error) {
	html, err := l.svcCtx.Pipeline.RemoveExcessCloser(l.ctx, req.Html, toProblem(req.Problem))
	if err != nil {
		return nil, errorx.FromService(err)
	}

	return &types.RemoveProblemResponse{Html: html}, nil
}
